package service

import (
	"errors"

	"clinic/internal/records/models"
	dErrors "clinic/pkg/domain-errors"
	"clinic/pkg/platform/sentinel"
)

// wrapLookupErr turns a store miss into NotFound(kind, id). Errors that
// already carry a code (lifecycle guards raised inside Execute) pass through.
func wrapLookupErr(err error, kind models.Kind, entityID int64) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return &models.NotFoundError{Kind: kind, ID: entityID}
	}
	var coded dErrors.Coder
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+string(kind))
}

// wrapWriteErr maps a unique index violation to the same AlreadyExists the
// pre-write guard would have raised.
func wrapWriteErr(err error, key models.UniqueKey, value, msg string) error {
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return &models.AlreadyExistsError{Key: key, Value: value}
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// requireID rejects a non-positive identifier before any lookup. This is a
// field check, never a NotFound.
func requireID(kind models.Kind, v int64) error {
	if v <= 0 {
		return dErrors.New(dErrors.CodeValidation, string(kind)+" id is required")
	}
	return nil
}

// invariantToValidation converts constructor invariant failures into
// validation errors for the API response.
func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}
