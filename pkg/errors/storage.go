package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// ErrStorageFailure matches every StorageError through errors.Is.
var ErrStorageFailure = errors.New("storage failure")

// StorageError reports that the database rejected or failed a statement. It is never used for an
// empty result set.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStorageFailure, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageFailure, e.Err}
}

// ToHTTPError hides the driver detail from API callers.
func (e *StorageError) ToHTTPError() error {
	return httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("%s failed", e.Op))
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// AsStorageError returns the StorageError in err's chain.
func AsStorageError(err error) (*StorageError, bool) {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr, true
	}
	return nil, false
}
