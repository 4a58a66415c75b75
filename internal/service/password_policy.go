package service

import "unicode/utf8"

const (
	MinPasswordLength = 8
	// MaxPasswordBytes es el limite de entrada de bcrypt.
	MaxPasswordBytes = 72
)

// CheckPasswordPolicy aplica la politica de contraseñas de alta y de cambio de contraseña.
func CheckPasswordPolicy(password string) error {
	return checkPasswordPolicy("password", password)
}

func checkPasswordPolicy(field, password string) error {
	verr := &ValidationError{}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		verr.Add(field, "Password must be at least 8 characters")
	}
	if len(password) > MaxPasswordBytes {
		verr.Add(field, "Password must be at most 72 bytes")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		verr.Add(field, "Password must include an uppercase letter")
	}
	if !hasLower {
		verr.Add(field, "Password must include a lowercase letter")
	}
	if !hasDigit {
		verr.Add(field, "Password must include a number")
	}
	if !hasSymbol {
		verr.Add(field, "Password must include a special character")
	}
	return verr.OrNil()
}
