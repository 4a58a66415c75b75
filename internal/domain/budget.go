package domain

// Budget es el tope mensual de una categoria. Amount es nil cuando no hay tope definido.
type Budget struct {
	CategoryID   string   `json:"category_id"`
	CategoryName string   `json:"category_name"`
	Amount       *float64 `json:"amount"`
}
