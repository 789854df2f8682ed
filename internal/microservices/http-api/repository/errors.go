package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ErrReferenceMissing is returned when an insert points at a row that no
// longer exists, e.g. a review for a title deleted by a concurrent request.
var ErrReferenceMissing = errors.New("referenced row does not exist")

// UniqueViolation wraps a failed insert/update that hit a unique constraint.
// Constraint is the constraint name from the schema (uq_users_email, ...).
type UniqueViolation struct {
	Constraint string
	Err        error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

func (e *UniqueViolation) Unwrap() error {
	return e.Err
}

// translate maps driver errors onto repository errors. Anything it does not
// recognise is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &UniqueViolation{Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrReferenceMissing, pgErr.ConstraintName)
		}
	}
	return err
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// wildcards in s escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}
