package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// InitializeValidators registers custom validation rules with Gin's binding engine.
// Must be called during router setup to enable custom validation tags.
// Panics if validator registration fails, as this is a critical configuration error.
func InitializeValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Register notblank validator - ensures string is not empty or whitespace-only
		if err := v.RegisterValidation("notblank", notBlankValidator); err != nil {
			panic(fmt.Sprintf("Failed to register notblank validator: %v", err))
		}

		// Register platform validator
		if err := v.RegisterValidation("platform", platformValidator); err != nil {
			panic(fmt.Sprintf("Failed to register platform validator: %v", err))
		}
	}
}

// notBlankValidator validates that a string field is not empty or whitespace-only.
// More strict than the standard required validator which allows whitespace.
func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// platformValidator restricts the platform filter to values the upstream
// data resource knows about.
func platformValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ios", "android", "web":
		return true
	default:
		return false
	}
}
