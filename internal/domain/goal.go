package domain

import (
	"encoding/json"
	"time"
)

// Goal es una meta de ahorro mensual medida contra el ingreso restante.
type Goal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Name         string     `json:"name"`
	TargetAmount float64    `json:"target_amount"`
	TargetDate   *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MarshalJSON expone target_date como fecha YYYY-MM-DD o null.
func (g Goal) MarshalJSON() ([]byte, error) {
	type alias Goal
	var targetDate *string
	if g.TargetDate != nil {
		formatted := g.TargetDate.Format(DateLayout)
		targetDate = &formatted
	}
	return json.Marshal(struct {
		alias
		TargetDate *string `json:"target_date"`
	}{
		alias:      alias(g),
		TargetDate: targetDate,
	})
}
