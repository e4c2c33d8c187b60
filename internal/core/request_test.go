// AngelaMos | 2026
// request_test.go

package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,maxbytes=8"`
	NewPassword     string `json:"new_password,omitempty" validate:"required,max=8"`
}

func decode(body string) (*httptest.ResponseRecorder, changeRequest, bool) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	out, ok := DecodeValid[changeRequest](rec, req, NewValidator())
	return rec, out, ok
}

func TestDecodeValid(t *testing.T) {
	rec, out, ok := decode(`{"current_password":"a","new_password":"b","extra":1}`)
	require.True(t, ok)
	assert.Equal(t, "a", out.CurrentPassword)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, out, ok = decode(`{"current_password":"éééé","new_password":"b"}`)
	require.True(t, ok)
	assert.Equal(t, "éééé", out.CurrentPassword)
}

func TestDecodeValid_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{name: "malformed", body: `{"current_password":`, detail: "invalid request body"},
		{name: "wrong type", body: `{"current_password":1}`, detail: "invalid request body"},
		{name: "missing field", body: `{"new_password":"b"}`, detail: "current_password is required"},
		{name: "too long", body: `{"current_password":"a","new_password":"123456789"}`, detail: "new_password must be at most 8"},
		{name: "too many bytes", body: `{"current_password":"ééééé","new_password":"b"}`, detail: "current_password must be at most 8 bytes"},
		{name: "oversized", body: `{"current_password":"` + strings.Repeat("x", maxRequestBody) + `"}`, detail: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, ok := decode(tt.body)
			require.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Contains(t, body.Detail, tt.detail)
		})
	}
}
