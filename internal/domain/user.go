package domain

import "time"

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	AuthProvider  string    `json:"auth_provider,omitempty"`
	AuthSubject   string    `json:"-"`
	PasswordHash  string    `json:"-"`
	MonthlyIncome float64   `json:"monthly_income"`
	Currency      string    `json:"currency"`
	AvatarPath    string    `json:"avatar_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasPassword indica si el usuario puede autenticarse con contraseña.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// HasProviderLink indica si el usuario tiene una identidad externa vinculada.
func (u User) HasProviderLink() bool {
	return u.AuthProvider != "" && u.AuthSubject != ""
}
