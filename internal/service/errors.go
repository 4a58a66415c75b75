package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrEmailExists             = errors.New("email already registered")
	ErrCategoryExists          = errors.New("category already exists")
	ErrNotFound                = errors.New("not found")
	ErrBadCurrentPassword      = errors.New("current password does not match")
	ErrInvalidTicket           = errors.New("signup ticket invalid or expired")
	ErrOAuthStateInvalid       = errors.New("oauth state invalid")
	ErrOAuthExchangeFailed     = errors.New("oauth code exchange failed")
	ErrOAuthProfileFetchFailed = errors.New("oauth profile fetch failed")
	ErrOAuthNotConfigured      = errors.New("oauth provider not configured")
)

// ValidationError acumula mensajes por campo. errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Merge copia los mensajes de otro ValidationError.
func (e *ValidationError) Merge(err error) {
	var other *ValidationError
	if !errors.As(err, &other) {
		return
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// OrNil devuelve nil si no se registro ningun error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid input: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func fieldError(field, message string) error {
	verr := &ValidationError{}
	verr.Add(field, message)
	return verr
}
