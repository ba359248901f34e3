package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
)

func TestStorageError_Is(t *testing.T) {
	err := NewStorageError("relationship lookup", sql.ErrConnDone)

	assert.True(t, IsStorageError(err))
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), "relationship lookup")

	wrapped := fmt.Errorf("resolving: %w", err)
	storageErr, ok := AsStorageError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "relationship lookup", storageErr.Op)
}

func TestStorageError_NotConfusedWithOtherErrors(t *testing.T) {
	assert.False(t, IsStorageError(sql.ErrNoRows))
	assert.False(t, IsStorageError(nil))
}

func TestStorageError_ToHTTPError(t *testing.T) {
	err := NewStorageError("candidate query", errors.New("syntax error at or near"))

	httpErr := err.ToHTTPError()
	assert.True(t, httperror.IsHTTPError(httpErr))
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(httpErr))
	assert.NotContains(t, httpErr.Error(), "syntax error")
}
