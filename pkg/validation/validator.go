// Package validation wraps the validator library with service-specific rules.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vantage-service/vantage_service/pkg/errors"
)

var storagePathPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-./]*$`)

// Validator wraps validator.Validate with custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the service's custom rules registered.
func New() *Validator {
	v := validator.New()

	v.RegisterValidation("doc_type", validateDocType)
	v.RegisterValidation("review_status", validateReviewStatus)
	v.RegisterValidation("amount", validateAmount)
	v.RegisterValidation("storage_path", validateStoragePath)

	return &Validator{validate: v}
}

// Validate validates a struct, returning an INVALID_PAYLOAD error on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

func validateDocType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "id_card", "proof_of_address", "selfie", "unknown":
		return true
	}
	return false
}

func validateReviewStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "verified", "rejected", "under_review":
		return true
	}
	return false
}

func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

func validateStoragePath(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || len(s) > 512 {
		return false
	}
	return storagePathPattern.MatchString(s)
}
