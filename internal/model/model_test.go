package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Safe(t *testing.T) {
	u := &User{
		ID:          "0123456789abcdef0123456789abcdef",
		Email:       "mom@example.com",
		Password:    "hash",
		Salt:        "abc123",
		FName:       "Ada",
		LName:       "Lovelace",
		Address:     types.NullJSONText{JSONText: types.JSONText(`{"city":"London"}`), Valid: true},
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Verified:    true,
	}

	raw, err := json.Marshal(u.Safe())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, "Ada", out["fName"])
	assert.Equal(t, "Lovelace", out["lName"])
	assert.Equal(t, "1990-04-12", out["date_of_birth"])
	assert.Equal(t, map[string]any{"city": "London"}, out["address"])
	assert.Nil(t, out["user_settings"])
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "salt")
	assert.Equal(t, "Ada Lovelace", u.FullName())
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	s := &Session{Expires: now.Add(-time.Second)}
	assert.True(t, s.IsExpired(now))

	s.Expires = now.Add(time.Minute)
	assert.False(t, s.IsExpired(now))
}

func TestPasswordReset_IsExpired(t *testing.T) {
	now := time.Now()
	p := &PasswordReset{ReqDate: now.Add(-2 * time.Hour)}
	assert.True(t, p.IsExpired(now, time.Hour))
	assert.False(t, p.IsExpired(now, 3*time.Hour))
}

func TestArticle_MarshalJSON(t *testing.T) {
	a := &Article{
		Route:  "budgeting",
		Title:  "Budgeting 101",
		Fields: json.RawMessage(`{"title":"old","steps":["save","spend"]}`),
	}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "budgeting", out["route"])
	assert.Equal(t, "Budgeting 101", out["title"])
	assert.Equal(t, []any{"save", "spend"}, out["steps"])
	assert.NotContains(t, out, "html")
}
