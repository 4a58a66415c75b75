package domain

// CategorySpend resume el gasto de una categoria en el mes frente a su presupuesto.
type CategorySpend struct {
	CategoryID   *string  `json:"category_id"`
	CategoryName string   `json:"category_name"`
	Spent        float64  `json:"spent"`
	Budget       *float64 `json:"budget"`
	UsagePct     *float64 `json:"usage_pct"`
	OverBudget   bool     `json:"over_budget"`
}

// GoalProgress es el avance de una meta con el ingreso restante del mes.
type GoalProgress struct {
	GoalID          string  `json:"goal_id"`
	Name            string  `json:"name"`
	TargetAmount    float64 `json:"target_amount"`
	Remaining       float64 `json:"remaining"`
	OnTrack         bool    `json:"on_track"`
	ToGoal          float64 `json:"to_goal"`
	Cushion         float64 `json:"cushion"`
	GoalPctOfIncome float64 `json:"goal_pct_of_income"`
}

// MonthSummary agrega ingreso, gasto, presupuestos y metas de un mes.
type MonthSummary struct {
	Month         string          `json:"month"`
	Currency      string          `json:"currency"`
	MonthlyIncome float64         `json:"monthly_income"`
	TotalSpent    float64         `json:"total_spent"`
	Leftover      float64         `json:"leftover"`
	UsagePct      float64         `json:"usage_pct"`
	OverBudget    bool            `json:"over_budget"`
	Categories    []CategorySpend `json:"categories"`
	Goals         []GoalProgress  `json:"goals"`
}
