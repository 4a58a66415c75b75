package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate se devuelve cuando una restriccion unica rechaza la escritura.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

// translateWriteErr convierte violaciones de unicidad de Postgres en ErrDuplicate.
func translateWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
