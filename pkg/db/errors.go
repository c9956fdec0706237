package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
)

const sqliteUniqueFailure = "UNIQUE constraint failed"

// IsUniqueViolation reports whether err is a unique constraint failure from
// Postgres or SQLite. A non-empty constraintName must match the Postgres
// constraint, or appear in the SQLite message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if pkgerrors.IsUniqueViolation(err) {
		if constraintName == "" || errors.Is(err, gorm.ErrDuplicatedKey) {
			return true
		}
		return pkgerrors.Dump(err).PGConstraint == constraintName
	}
	msg := err.Error()
	if !strings.Contains(msg, sqliteUniqueFailure) {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
