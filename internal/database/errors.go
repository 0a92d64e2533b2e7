package database

import (
	"errors"
	"strings"

	. "clinic/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var uniqueColumns = []string{"username", "email"}

// ClassifyError maps driver constraint failures onto the domain errors and
// returns every other error unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &UniquenessViolation{Field: uniqueField(sqliteErr.Error())}
		case sqlite3.ErrConstraintForeignKey:
			return &ReferenceNotFound{}
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &UniquenessViolation{Field: uniqueField(pgErr.ConstraintName + " " + pgErr.Detail)}
		case pgForeignKeyViolation:
			return &ReferenceNotFound{}
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &UniquenessViolation{}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ReferenceNotFound{}
	}

	return err
}

func uniqueField(message string) string {
	message = strings.ToLower(message)
	for _, column := range uniqueColumns {
		if strings.Contains(message, column) {
			return column
		}
	}
	return ""
}
