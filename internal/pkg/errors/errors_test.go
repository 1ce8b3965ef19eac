package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"already exists", New(ErrAlreadyExists, "Book already registered."), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"too many attempts", ErrTooManyAttempts, http.StatusForbidden},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"not found wrapped", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"database", Wrap(ErrDatabaseError, "failed"), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Something failed.", PublicMessage(Wrap(fmt.Errorf("pq: connection refused"), "failed to get user")))
	assert.Equal(t, "Book already registered.", PublicMessage(New(ErrAlreadyExists, "Book already registered.")))
	assert.Equal(t, "resource not found", PublicMessage(ErrNotFound))
}

func TestNewUnwraps(t *testing.T) {
	err := New(ErrForbidden, "Access denied.")
	assert.True(t, Is(err, ErrForbidden))
	assert.Equal(t, "FORBIDDEN", err.Code)
	assert.Equal(t, "Access denied.", err.Error())
}
