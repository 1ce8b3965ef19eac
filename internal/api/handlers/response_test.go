package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bux-api/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestParseExpand(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withReadings bool
		want         repository.Expand
		wantErr      bool
	}{
		{"none", "", true, repository.ExpandNone, false},
		{"readings", "?$expand=readings", true, repository.ExpandReadings, false},
		{"readings and users", "?$expand=readings,users", true, repository.ExpandAll, false},
		{"star", "?$expand=*", true, repository.ExpandAll, false},
		{"star on readings", "?$expand=*", false, repository.ExpandAll, false},
		{"readings on readings", "?$expand=readings", false, repository.ExpandNone, true},
		{"unknown", "?$expand=authors", true, repository.ExpandNone, true},
		{"other key", "?limit=10", true, repository.ExpandNone, true},
		{"expand ignores other keys", "?$expand=*&limit=10", true, repository.ExpandAll, false},
		{"repeated expand", "?$expand=*&$expand=readings", true, repository.ExpandNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/books"+tt.query, nil)
			got, err := parseExpand(r, tt.withReadings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestBaseURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "bux.example"
	assert.Equal(t, "http://bux.example", requestBaseURL(r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://bux.example", requestBaseURL(r))
}
