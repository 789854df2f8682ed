package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrUserNotFound              = errors.New("user not found")
	ErrConfirmationCodeIncorrect = errors.New("confirmation code is incorrect")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrInactiveAccount           = errors.New("no active account found with the given credentials")
	ErrInvalidToken              = errors.New("invalid token")
)

// NonFieldErrors is the key for errors that belong to the payload as a whole.
const NonFieldErrors = "non_field_errors"

// ValidationError carries field-scoped messages; it is rendered as the
// response body itself.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func notFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// lookupErr turns gorm's not-found into a resource-scoped ErrNotFound.
func lookupErr(resource string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repository.ErrReferenceMissing) {
		return notFound(resource)
	}
	return err
}

// uniqueMessages maps schema constraint names onto the field they guard.
var uniqueMessages = map[string]struct{ field, msg string }{
	"uq_users_username":       {"username", "A user with that username already exists."},
	"uq_users_email":          {"email", "A user with that email already exists."},
	"uq_categories_slug":      {"slug", "category with this slug already exists."},
	"uq_genres_slug":          {"slug", "genre with this slug already exists."},
	"uq_genre_title":          {"genre", "Duplicate genre for this title."},
	"uq_reviews_title_author": {NonFieldErrors, msgAlreadyReviewed},
}

// constraintErr converts a unique violation into a ValidationError and
// passes every other error through.
func constraintErr(err error) error {
	var uv *repository.UniqueViolation
	if !errors.As(err, &uv) {
		return err
	}
	if m, ok := uniqueMessages[uv.Constraint]; ok {
		return NewValidationError(m.field, m.msg)
	}
	return NewValidationError(NonFieldErrors, "The value violates a uniqueness rule.")
}
