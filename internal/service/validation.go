package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds the validator shared by all services. Beyond the
// standard rules it registers "plaintext", which rejects semicolons (free-text
// fields are stored verbatim and the storage layer reserves that character)
// and path separators (entity names double as media directory names).
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), `;/\`)
	})
	return v
}
