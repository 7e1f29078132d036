package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momager/momager-core/internal/apperror"
)

func TestWriteFailure_GenericBody(t *testing.T) {
	for _, err := range []error{
		nil,
		apperror.External("No user with that email"),
		apperror.Internal("Query failed", errors.New("connection reset")),
	} {
		rec := httptest.NewRecorder()
		writeFailure(rec, httptest.NewRequest(http.MethodPost, "/plumbing/auth/session", nil), "login failed", err)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"success":false,"reason":"unknown"}`, rec.Body.String())
	}
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		SID string `json:"sid"`
	}

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"sid":"abc"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &v))
	assert.Equal(t, "abc", v.SID)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(""))
	err := decodeJSON(httptest.NewRecorder(), req, &v)
	assert.ErrorIs(t, err, errEmptyBody)
	assert.True(t, apperror.IsExternal(err))

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"sid":`))
	err = decodeJSON(httptest.NewRecorder(), req, &v)
	assert.True(t, apperror.IsExternal(err))

	big := `{"sid":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(big))
	assert.Error(t, decodeJSON(httptest.NewRecorder(), req, &v))
}

func TestEmailHandler(t *testing.T) {
	h := NewEmailHandler()

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/plumbing/email", nil))
	assert.JSONEq(t, `{"message":"email index"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Availability(rec, httptest.NewRequest(http.MethodGet, "/plumbing/email/availability", nil))
	assert.JSONEq(t, `{"message":"availability index"}`, rec.Body.String())
}
