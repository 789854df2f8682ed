package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"

	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// respondError is the single place where service errors become HTTP
// responses. Unknown errors are logged through c.Error and hidden.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrUserNotFound):
		detail(c, http.StatusNotFound, "Incorrect username.")
	case errors.Is(err, service.ErrNotFound):
		detail(c, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrConfirmationCodeIncorrect):
		detail(c, http.StatusBadRequest, "Confirmation code is incorrect.")
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInactiveAccount),
		errors.Is(err, service.ErrInvalidToken):
		detail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, permission.ErrNotAuthenticated):
		detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, permission.ErrPermissionDenied):
		detail(c, http.StatusForbidden, "You do not have permission to perform this action.")
	default:
		_ = c.Error(err)
		detail(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindJSON decodes and validates the body into obj. On failure it writes a
// 400 with field-scoped messages and returns false.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		// empty body: validate the zero value so required fields still report
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, bindErrorFields(err).Fields)
	return false
}

var indexSuffix = regexp.MustCompile(`\[\d+\]$`)

func bindErrorFields(err error) *service.ValidationError {
	verr := &service.ValidationError{}

	var ves validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &ves):
		for _, fe := range ves {
			verr.Add(indexSuffix.ReplaceAllString(fe.Field(), ""), fieldMessage(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = service.NonFieldErrors
		}
		verr.Add(field, fmt.Sprintf("Incorrect type. Expected %s, got %s.", typeErr.Type.Kind(), typeErr.Value))
	case errors.As(err, &syntaxErr):
		verr.Add(service.NonFieldErrors, "JSON parse error - "+syntaxErr.Error())
	default:
		verr.Add(service.NonFieldErrors, "Invalid data.")
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return `Enter a valid "slug" consisting of letters, numbers, underscores or hyphens.`
	case "oneof":
		return fmt.Sprintf(`"%v" is not a valid choice.`, fe.Value())
	case "max":
		if isText(fe) {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if isText(fe) {
			if fe.Param() == "1" {
				return "This field may not be blank."
			}
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return "This list may not be empty."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	}
	return "Invalid value."
}

func isText(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}
