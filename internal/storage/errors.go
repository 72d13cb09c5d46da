package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("storage: conflict")
	// ErrReferenced is returned when a delete would orphan dependent rows.
	ErrReferenced = errors.New("storage: still referenced")
)

// ConflictError is a unique-constraint violation on Field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("storage: %s already exists", e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Conflict returns a *ConflictError for field.
func Conflict(field string) error { return &ConflictError{Field: field} }

// Unique fields reported by ConflictError.
const (
	FieldUID         = "uid"
	FieldPhoneNumber = "phone_number"
	FieldNationalID  = "national_id"
	FieldPlateNumber = "plate_number"
	FieldOwner       = "owner"
)
