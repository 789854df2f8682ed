package dto

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// UsernamePattern is the allowed username alphabet: letters, digits and @ . + - _
	UsernamePattern = regexp.MustCompile(`^[\w.@+-]+\z`)
	// SlugPattern is the allowed slug alphabet.
	SlugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+\z`)
)

func init() {
	RegisterValidators()
}

// RegisterValidators adds the custom tags to gin's validator and makes
// field errors report JSON names. Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return UsernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return SlugPattern.MatchString(fl.Field().String())
	})
}
