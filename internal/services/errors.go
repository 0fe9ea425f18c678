package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrValidation              = errors.New("validation error")
	ErrInvalidScore            = fmt.Errorf("%w: invalid score", ErrValidation)
	ErrNotFound                = errors.New("not found")
	ErrCapacityExceeded        = errors.New("room capacity exceeded")
	ErrRoomNotEmpty            = errors.New("room still has assigned candidates")
	ErrExtensionLimitExceeded  = errors.New("extension limit exceeded")
	ErrRegistrationNotApproved = errors.New("registration not approved")
	ErrMissingData             = errors.New("missing data")
	ErrNoCandidates            = errors.New("customer has no candidates")
	ErrDuplicateResult         = errors.New("result already recorded")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrTicketsAlreadyIssued    = errors.New("tickets already issued")
)

// domainErrors are the expected rejections; anything else is a failure.
var domainErrors = []error{
	ErrValidation, ErrNotFound, ErrCapacityExceeded, ErrRoomNotEmpty,
	ErrExtensionLimitExceeded, ErrRegistrationNotApproved, ErrMissingData,
	ErrNoCandidates, ErrDuplicateResult, ErrInvalidTransition, ErrTicketsAlreadyIssued,
}

// IsDomainError reports whether err is one of the business-rule rejections.
func IsDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

// StoreError wraps a failure reported by the database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// lookupErr turns a missing row into ErrNotFound.
func lookupErr(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return storeErr("load "+what, err)
}

// requireErr turns a missing referenced row into ErrMissingData.
func requireErr(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrMissingData)
	}
	return storeErr("load "+what, err)
}

var validate = validator.New()

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fe.Field()+" "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(parts, ", "))
}
