package usecase

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a unique constraint violation. If
// constraintName is non-empty and the driver reports one, the names must
// match too. With TranslateError enabled gorm surfaces ErrDuplicatedKey
// regardless of driver, which is accepted as-is since the tables involved
// each carry a single unique natural key.
func isUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" &&
			(constraintName == "" || strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)))
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
