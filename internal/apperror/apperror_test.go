package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"INT", StatusInternal},
		{"ext", StatusExternal},
		{" EXT ", StatusExternal},
		{"UNKNOWN", StatusUnknown},
		{"", StatusUnknown},
		{"FATAL", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.in))
		})
	}
}

func TestNew_Normalizes(t *testing.T) {
	err := New("", Status("bogus"), nil)

	assert.Equal(t, "UNKNOWN", err.Reason)
	assert.Equal(t, StatusUnknown, err.Status)
	assert.False(t, err.Time.IsZero())
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Query failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INT: Query failed: connection refused", err.Error())
	assert.Equal(t, "EXT: bad input", External("bad input").Error())
}

func TestJSON(t *testing.T) {
	err := Internal("Session refresh failed", errors.New("timeout"))
	out := err.JSON()

	assert.Equal(t, "INT", out["status"])
	assert.Equal(t, "Session refresh failed", out["reason"])
	assert.Equal(t, "timeout", out["err"])
	assert.NotEmpty(t, out["date"])

	out = External("nope").JSON()
	assert.Nil(t, out["err"])
}

func TestStatusOf(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Externalf("no user for %s", "a@b.c"))

	assert.Equal(t, StatusExternal, StatusOf(wrapped))
	assert.True(t, IsExternal(wrapped))
	assert.Equal(t, StatusUnknown, StatusOf(errors.New("plain")))
	assert.Equal(t, StatusUnknown, StatusOf(nil))

	var appErr *Error
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "no user for a@b.c", appErr.Reason)
}
