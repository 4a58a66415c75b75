package domain

import (
	"encoding/json"
	"time"
)

// DateLayout es el formato de fecha usado en la API (YYYY-MM-DD).
const DateLayout = "2006-01-02"

type Expense struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	CategoryID    *string   `json:"category_id"`
	CategoryName  *string   `json:"category_name"`
	CategoryColor *string   `json:"category_color"`
	Amount        float64   `json:"amount"`
	Note          string    `json:"note,omitempty"`
	IncurredOn    time.Time `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// IncurredOnDate devuelve la fecha del gasto en formato YYYY-MM-DD.
func (e Expense) IncurredOnDate() string {
	return e.IncurredOn.Format(DateLayout)
}

// ExpenseFilter acota un listado de gastos por rango de fechas inclusivo.
type ExpenseFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// ExpensePatch describe una actualizacion parcial; nil significa "sin cambios".
type ExpensePatch struct {
	Amount        *float64
	IncurredOn    *time.Time
	CategoryID    *string
	ClearCategory bool
	Note          *string
}

// IsEmpty indica si el patch no modifica ningun campo.
func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.IncurredOn == nil && p.CategoryID == nil && !p.ClearCategory && p.Note == nil
}

// MarshalJSON expone incurred_on como fecha YYYY-MM-DD.
func (e Expense) MarshalJSON() ([]byte, error) {
	type alias Expense
	return json.Marshal(struct {
		alias
		IncurredOn string `json:"incurred_on"`
	}{
		alias:      alias(e),
		IncurredOn: e.IncurredOnDate(),
	})
}
