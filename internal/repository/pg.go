package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	invalidTextRepr     = "22P02"
	foreignKeyViolation = "23503"
)

// PgError приводит ошибки pgx к ошибкам репозитория
func PgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return ErrDuplicate
	case invalidTextRepr:
		// id не в формате uuid: такой записи быть не может
		return ErrNotFound
	case foreignKeyViolation:
		return ErrConflict
	}
	return err
}
