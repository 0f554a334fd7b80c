package models

import "errors"

// ValidationError indicates user input failed a business rule. It is never
// retried and is surfaced immediately to the caller.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ProtectedResourceError indicates an operation forbidden by a domain rule,
// such as deleting the default album.
type ProtectedResourceError struct {
	Message string
}

func (e ProtectedResourceError) Error() string {
	return e.Message
}

// NotFoundError indicates a referenced entity is absent. Callers should treat
// delete-of-missing as already being in the desired end state.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return e.Resource + " " + e.ID + " not found"
}

// PersistenceError wraps a failed backend call (database, storage I/O).
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError or a
// photo-level PhotoError; both mean the input was rejected, not that the
// system failed.
func IsValidation(err error) bool {
	var ve ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var pe PhotoError
	return errors.As(err, &pe)
}

// IsProtected reports whether err is (or wraps) a ProtectedResourceError.
func IsProtected(err error) bool {
	var pe ProtectedResourceError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

var (
	ErrAlbumNameRequired = ValidationError{"album name is required"}
	ErrAlbumNameTooShort = ValidationError{"album name must be at least 2 characters"}
	ErrAlbumNameTooLong  = ValidationError{"album name must be at most 100 characters"}
	ErrMoveSameAlbum     = ValidationError{"source and destination albums are the same"}
	ErrMoveIncomplete    = ValidationError{"move operation requires photo, source and destination"}
	ErrDefaultAlbum      = ProtectedResourceError{"the default album cannot be deleted"}
)
