package service

import (
	"errors"

	"eps-procurement/internal/apperr"
	"eps-procurement/pkg/validator"

	"gorm.io/gorm"
)

// validateRequest runs struct validation and reports the first failure as
// a validation error naming the field.
func validateRequest(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation(first.FailedField, "field '%s' failed on rule '%s'", first.FailedField, first.Tag)
	}
	return nil
}

// translateFirstErr maps a First lookup failure: a missing row becomes a
// not-found error, anything else is wrapped as internal.
func translateFirstErr(err error, entityType, entityID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entityType, entityID)
	}
	return apperr.Internal(err, "failed to load %s %s", entityType, entityID)
}

// translateCreateErr maps a unique-constraint race on insert to an
// already-exists error. Relies on gorm's TranslateError being enabled.
func translateCreateErr(err error, field, value string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.AlreadyExists(field, value)
	}
	return apperr.Internal(err, "failed to insert %s %s", field, value)
}
