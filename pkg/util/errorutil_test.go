package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("create ticket: %w", NewValidationError("projectId is invalid", nil))
		de := ToDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, CodeValidation, de.Code)
		assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
		assert.Equal(t, "projectId is invalid", de.Message)
	})

	t.Run("unknown error becomes generic internal error", func(t *testing.T) {
		cause := errors.New("connection reset by peer")
		de := ToDomainError(cause)
		require.NotNil(t, de)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.Equal(t, "internal server error", de.Message)
		assert.ErrorIs(t, de, cause)
	})
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("ticket", map[string]any{"id": int64(7)})
	assert.Equal(t, "ticket not found", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}
