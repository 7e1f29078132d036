package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "mom@example.com", false},
		{"empty", "", true},
		{"no at", "mom.example.com", true},
		{"display name", "Mom <mom@example.com>", true},
		{"too long", strings.Repeat("a", 250) + "@x.io", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "mom@example.com", NormalizeEmail("  Mom@Example.COM "))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ada"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("x", 101)))
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("12345"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidatePassword(strings.Repeat("p", MaxPasswordLength)))
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("p", MaxPasswordLength+1)), ErrPasswordTooLong)
}

func TestParseDate(t *testing.T) {
	want := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"1990-04-12", "1990-04-12T00:00:00Z", "04/12/1990"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	assert.False(t, IsDate("yesterday"))
	assert.False(t, IsDate(""))
}

func TestValidateDateOfBirth(t *testing.T) {
	_, err := ValidateDateOfBirth("1990-04-12")
	assert.NoError(t, err)

	future := time.Now().AddDate(1, 0, 0).Format(time.DateOnly)
	_, err = ValidateDateOfBirth(future)
	assert.Error(t, err)

	_, err = ValidateDateOfBirth("1800-01-01")
	assert.Error(t, err)
}
