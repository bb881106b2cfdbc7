package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var koreanMobile = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)

// IsKoreanMobile reports whether s looks like a Korean mobile number,
// with or without hyphens (010-1111-2222, 01011112222).
func IsKoreanMobile(s string) bool {
	return koreanMobile.MatchString(s)
}

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("korphone", func(fl validator.FieldLevel) bool {
		return IsKoreanMobile(fl.Field().String())
	})
}
