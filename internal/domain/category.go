package domain

import "time"

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultCategories se siembran para cada cuenta nueva.
var DefaultCategories = []Category{
	{Name: "Food & Dining", Color: strPtr("#EF4444")},
	{Name: "Transport", Color: strPtr("#3B82F6")},
	{Name: "Shopping", Color: strPtr("#F59E0B")},
	{Name: "Bills", Color: strPtr("#10B981")},
}

func strPtr(s string) *string {
	return &s
}
