package service

import (
	"fmt"
)

// The workflow distinguishes three failure families:
//
//   - validation errors (InputErrors): expected user-facing outcomes,
//     returned as data so the caller can redisplay a form
//   - integrity/authorization errors (the typed errors below): hard
//     failures that abort the transaction and propagate
//   - transient infrastructure errors (clients.CommunicationError):
//     abort the transaction; the caller may retry the whole submission

// NotFoundError indicates a referenced entity does not exist
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.ID)
}

// PathwayPermissionError indicates the user has no user_pathway
// association for the pathway they are acting on
type PathwayPermissionError struct {
	UserID    int64
	PathwayID int64
}

func (e *PathwayPermissionError) Error() string {
	return fmt.Sprintf("user %d has no permission on pathway %d", e.UserID, e.PathwayID)
}

// LockNotOwnedError indicates a decision point was submitted by a user
// who does not hold the OnPathway lock. This is the concurrency guard:
// of two racing submissions, only the lock holder's proceeds.
type LockNotOwnedError struct {
	OnPathwayID int64
	UserID      int64
}

func (e *LockNotOwnedError) Error() string {
	return fmt.Sprintf("user %d does not own the lock on on_pathway %d", e.UserID, e.OnPathwayID)
}

// MdtPathwayMismatchError indicates the MDT named in a submission belongs
// to a different pathway than the OnPathway. May indicate tampering.
type MdtPathwayMismatchError struct {
	MdtID            int64
	MdtPathwayID     int64
	OnPathwayPathway int64
}

func (e *MdtPathwayMismatchError) Error() string {
	return fmt.Sprintf("mdt %d is on pathway %d, not pathway %d",
		e.MdtID, e.MdtPathwayID, e.OnPathwayPathway)
}

// ClinicalRequestTypeNotOnPathwayError indicates a requested type is not
// in the pathway's allowed set
type ClinicalRequestTypeNotOnPathwayError struct {
	TypeID    int64
	PathwayID int64
}

func (e *ClinicalRequestTypeNotOnPathwayError) Error() string {
	return fmt.Sprintf("clinical request type %d is not on pathway %d", e.TypeID, e.PathwayID)
}

// FieldError is one field-keyed validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputErrors collects field-keyed validation errors. It is a value
// returned to the caller, not an error to propagate; it can carry
// multiple simultaneous errors.
type InputErrors struct {
	Errors []FieldError `json:"errors"`
}

// AddError appends a field error and returns the receiver for chaining
func (e *InputErrors) AddError(field, message string) *InputErrors {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any error was recorded
func (e *InputErrors) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}
