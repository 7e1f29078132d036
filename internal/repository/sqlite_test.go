package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momager/momager-core/internal/dbtest"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
)

func createUser(t *testing.T, db *sqlx.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		ID:          ident.New(),
		Email:       email,
		Password:    "hash",
		Salt:        ident.Short(),
		FName:       "Ada",
		LName:       "Lovelace",
		Address:     types.NullJSONText{JSONText: types.JSONText(`{"city":"London"}`), Valid: true},
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestUserRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "ada@example.com")

	got, err := repo.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.JSONEq(t, `{"city":"London"}`, string(got.Address.JSONText))
	assert.False(t, got.UserSettings.Valid)
	assert.Equal(t, "1990-04-12", got.DateOfBirth.Format(time.DateOnly))

	got, err = repo.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.QueryBy(ctx, "fname", "Ada")
	assert.ErrorIs(t, err, ErrInvalidColumn)

	require.NoError(t, repo.UpdateProfile(ctx, user.ID, UserProfile{
		FName:        "Grace",
		LName:        "Hopper",
		DateOfBirth:  time.Date(1906, 12, 9, 0, 0, 0, 0, time.UTC),
		Address:      types.NullJSONText{JSONText: types.JSONText(`{"city":"Arlington"}`), Valid: true},
		UserSettings: types.NullJSONText{JSONText: types.JSONText(`{"theme":"dark"}`), Valid: true},
	}))
	require.NoError(t, repo.MarkVerified(ctx, user.ID))

	got, err = repo.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FName)
	assert.True(t, got.Verified)
	assert.JSONEq(t, `{"theme":"dark"}`, string(got.UserSettings.JSONText))

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.ByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := dbtest.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, "dup@example.com")
	other := createUser(t, db, "other@example.com")

	err := repo.Create(ctx, &model.User{
		ID:          ident.New(),
		Email:       "dup@example.com",
		Password:    "hash",
		Salt:        ident.Short(),
		FName:       "B",
		LName:       "C",
		DateOfBirth: time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	err = repo.UpdateEmail(ctx, other.ID, "dup@example.com")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSessionRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "s@example.com")
	now := time.Now()

	live := &model.Session{ID: ident.New(), UserID: user.ID, Expires: now.Add(time.Hour)}
	dead := &model.Session{ID: ident.New(), UserID: user.ID, Expires: now.Add(-time.Hour), LongExpire: true}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, dead))

	got, err := repo.QueryBy(ctx, "user_id", user.ID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	got, err = repo.QueryBy(ctx, "expires", dead.Expires)
	require.NoError(t, err)
	assert.Equal(t, dead.ID, got.ID)
	assert.True(t, got.LongExpire)

	_, err = repo.QueryBy(ctx, "long_expire", true)
	assert.ErrorIs(t, err, ErrInvalidColumn)

	all, err := repo.ByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	newExpiry := now.Add(2 * time.Hour)
	require.NoError(t, repo.UpdateExpires(ctx, live.ID, newExpiry))
	got, err = repo.ByID(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, got.Expires.Equal(newExpiry.UTC().Truncate(time.Second)))

	n, err = repo.DeleteByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSessionRepository_UnknownUser(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSessionRepository(db)

	err := repo.Create(context.Background(), &model.Session{ID: ident.New(), UserID: ident.New(), Expires: time.Now().Add(time.Hour)})
	assert.Error(t, err)
}

func TestSessionRepository_CascadeOnUserDelete(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "cascade@example.com")

	s := &model.Session{ID: ident.New(), UserID: user.ID, Expires: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, NewUserRepository(db).Delete(ctx, user.ID))

	_, err := repo.ByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPasswordResetRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "reset@example.com")
	now := time.Now()

	older := &model.PasswordReset{ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: now.Add(-time.Hour), Code: "aaaaaa"}
	newer := &model.PasswordReset{ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: now, Code: "bbbbbb"}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	latest, err := repo.LatestByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, "bbbbbb", latest.Code)

	all, err := repo.QueryBy(ctx, "user_id", user.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bbbbbb", all[0].Code)

	n, err := repo.UpdateEmailForUser(ctx, user.ID, "moved@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.LatestByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = repo.DeleteByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestVerificationKeyRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewVerificationKeyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "verify@example.com")

	key := &model.VerificationKey{ID: ident.New(), UserID: user.ID, UserKey: ident.New()}
	require.NoError(t, repo.Create(ctx, key))

	got, err := repo.ByKey(ctx, key.UserKey)
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, key.ID))
	_, err = repo.ByKey(ctx, key.UserKey)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Create(ctx, &model.VerificationKey{ID: ident.New(), UserID: user.ID})
	assert.Error(t, err)
}

func TestWeatherCacheRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewWeatherCacheRepository(db)
	ctx := context.Background()

	entry := &model.WeatherCache{
		ID:    ident.New(),
		City:  sql.NullString{String: "Boston", Valid: true},
		State: sql.NullString{String: "MA", Valid: true},
		Lat:   sql.NullString{String: "42.36008", Valid: true},
		Lon:   sql.NullString{String: "-71.05888", Valid: true},
		Data:  types.JSONText(`{"current_weather":{"temperature":12.5}}`),
	}
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.ByCoordinates(ctx, "42.36008", "-71.05888")
	require.NoError(t, err)
	assert.JSONEq(t, string(entry.Data), string(got.Data))

	got, err = repo.ByCityState(ctx, "Boston", "MA")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	_, err = repo.ByCoordinates(ctx, "0.00000", "0.00000")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, entry.ID))
}
