package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/validation"
)

func TestUserService_SignUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, session := env.signUp(t, " Ada@Example.com ", "secret1")
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Len(t, user.Salt, 6)
	assert.NotEqual(t, "secret1", user.Password)
	assert.Equal(t, user.ID, session.UserID)
	assert.False(t, session.LongExpire)

	stored, err := env.users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"street":"1 Main St","city":"Boston"}`, string(stored.Address.JSONText))
	assert.NoError(t, ComparePassword("secret1", stored.Salt, stored.Password))
}

func TestUserService_SignUp_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "dup@example.com", "secret1")

	_, _, err := env.userService.SignUp(context.Background(), SignUpInput{
		Email:       "DUP@example.com",
		Password:    "another",
		FName:       "Grace",
		LName:       "Hopper",
		DateOfBirth: "1906-12-09",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.True(t, apperror.IsExternal(err))
}

type failingSessionRepository struct {
	repository.SessionRepository
}

func (failingSessionRepository) Create(context.Context, *model.Session) error {
	return apperror.Internal("Error creating Session", errors.New("disk full"))
}

func TestUserService_SignUp_RollsBackUserWhenSessionFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broken := NewSessionService(failingSessionRepository{env.sessionsRepo}, env.users)
	in := SignUpInput{
		Email:       "retry@example.com",
		Password:    "secret1",
		FName:       "Ada",
		LName:       "Lovelace",
		DateOfBirth: "1990-04-12",
	}

	_, _, err := NewUserService(env.users, env.resetsRepo, broken).SignUp(ctx, in)
	require.Error(t, err)

	_, err = env.users.ByEmail(ctx, in.Email)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user, session, err := env.userService.SignUp(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
}

func TestUserService_SignUp_Invalid(t *testing.T) {
	valid := SignUpInput{
		Email:       "new@example.com",
		Password:    "secret1",
		FName:       "Ada",
		LName:       "Lovelace",
		DateOfBirth: "1990-04-12",
	}

	tests := []struct {
		name    string
		mutate  func(*SignUpInput)
		wantErr error
	}{
		{name: "missing email", mutate: func(in *SignUpInput) { in.Email = "" }, wantErr: ErrMissingField},
		{name: "missing last name", mutate: func(in *SignUpInput) { in.LName = "" }, wantErr: ErrMissingField},
		{name: "missing date of birth", mutate: func(in *SignUpInput) { in.DateOfBirth = "" }, wantErr: ErrMissingField},
		{name: "short password", mutate: func(in *SignUpInput) { in.Password = "abc" }, wantErr: validation.ErrPasswordTooShort},
		{name: "bad address json", mutate: func(in *SignUpInput) { in.Address = json.RawMessage(`{"city":`) }, wantErr: ErrInvalidJSON},
		{name: "bad email", mutate: func(in *SignUpInput) { in.Email = "not-an-email" }},
		{name: "future birthday", mutate: func(in *SignUpInput) { in.DateOfBirth = time.Now().AddDate(1, 0, 0).Format(time.DateOnly) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := valid
			tt.mutate(&in)

			_, _, err := env.userService.SignUp(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperror.IsExternal(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUserService_SignUp_AddressOptional(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.userService.SignUp(context.Background(), SignUpInput{
		Email:       "noaddr@example.com",
		Password:    "secret1",
		FName:       "Ada",
		LName:       "Lovelace",
		DateOfBirth: "1990-04-12",
	})
	require.NoError(t, err)
	assert.False(t, user.Address.Valid)
}

func TestUserService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "auth@example.com", "secret1")

	got, err := env.userService.Authenticate(ctx, "AUTH@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.userService.Authenticate(ctx, "auth@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.userService.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.userService.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_UpdateUserData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "profile@example.com", "secret1")

	err := env.userService.UpdateUserData(ctx, user.ID, UserDataInput{
		FName:        "Grace",
		LName:        "Hopper",
		DateOfBirth:  "1906-12-09",
		Address:      json.RawMessage(`"{\"city\":\"Arlington\"}"`),
		UserSettings: json.RawMessage(`{"theme":"dark"}`),
	})
	require.NoError(t, err)

	stored, err := env.users.ByID(ctx, user.ID)
	require.NoError(t, err)
	safe := env.userService.SafeData(stored)
	assert.Equal(t, "Grace", safe.FName)
	assert.Equal(t, "1906-12-09", safe.DateOfBirth)
	assert.JSONEq(t, `{"city":"Arlington"}`, string(safe.Address))
	assert.JSONEq(t, `{"theme":"dark"}`, string(safe.UserSettings))

	err = env.userService.UpdateUserData(ctx, user.ID, UserDataInput{
		FName:       "Grace",
		LName:       "Hopper",
		DateOfBirth: "1906-12-09",
		Address:     json.RawMessage(`{}`),
	})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestUserService_UpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "pw@example.com", "secret1")

	require.NoError(t, env.userService.UpdatePassword(ctx, user.ID, "brand-new"))

	_, err := env.userService.Authenticate(ctx, user.Email, "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.userService.Authenticate(ctx, user.Email, "brand-new")
	assert.NoError(t, err)

	err = env.userService.UpdatePassword(ctx, user.ID, "123")
	assert.ErrorIs(t, err, validation.ErrPasswordTooShort)
}

func TestUserService_UpdateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "old@example.com", "secret1")
	env.signUp(t, "taken@example.com", "secret1")

	_, err := env.resets.Request(ctx, "old@example.com")
	require.NoError(t, err)

	_, err = env.userService.UpdateEmail(ctx, "old@example.com", "wrong-pass", "new@example.com")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.userService.UpdateEmail(ctx, "old@example.com", "secret1", "taken@example.com")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	_, err = env.userService.UpdateEmail(ctx, "old@example.com", "secret1", "")
	assert.ErrorIs(t, err, ErrMissingField)

	updated, err := env.userService.UpdateEmail(ctx, "old@example.com", "secret1", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	reset, err := env.resetsRepo.LatestByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, reset.UserID)
}

func TestUserService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, session := env.signUp(t, "gone@example.com", "secret1")

	require.NoError(t, env.userService.Delete(ctx, user.ID))

	_, err := env.userService.ByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.sessions.Get(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = env.userService.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSafeData_OmitsCredentials(t *testing.T) {
	user := &model.User{ID: "id", Email: "a@b.c", Password: "hash", Salt: "salt"}
	raw, err := json.Marshal((&UserService{}).SafeData(user))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "salt")
}
