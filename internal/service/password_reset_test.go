package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/validation"
)

func TestPasswordResetService_Request(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "forgot@example.com", "secret1")

	reset, err := env.resets.Request(ctx, "Forgot@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, reset.UserID)
	assert.Len(t, reset.Code, ident.ShortLength)

	_, err = env.resets.Request(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.True(t, apperror.IsExternal(err))
}

func TestPasswordResetService_CheckCode_NewestOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "codes@example.com", "secret1")

	require.NoError(t, env.resetsRepo.Create(ctx, &model.PasswordReset{
		ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: time.Now().Add(-10 * time.Minute), Code: "aaaaaa",
	}))
	require.NoError(t, env.resetsRepo.Create(ctx, &model.PasswordReset{
		ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: time.Now().Add(-time.Minute), Code: "bbbbbb",
	}))

	_, err := env.resets.CheckCode(ctx, user.Email, "bbbbbb")
	assert.NoError(t, err)

	_, err = env.resets.CheckCode(ctx, user.Email, "aaaaaa")
	assert.ErrorIs(t, err, ErrInvalidResetCode)

	_, err = env.resets.CheckCode(ctx, "nobody@example.com", "bbbbbb")
	assert.ErrorIs(t, err, ErrInvalidResetCode)

	_, err = env.resets.CheckCode(ctx, user.Email, "")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestPasswordResetService_Request_ReplacesOutstandingCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "twice@example.com", "secret1")

	for i := 0; i < 5; i++ {
		first, err := env.resets.Request(ctx, user.Email)
		require.NoError(t, err)
		second, err := env.resets.Request(ctx, user.Email)
		require.NoError(t, err)

		_, err = env.resets.CheckCode(ctx, user.Email, second.Code)
		require.NoError(t, err, "newest code must be accepted")

		if first.Code != second.Code {
			_, err = env.resets.CheckCode(ctx, user.Email, first.Code)
			assert.ErrorIs(t, err, ErrInvalidResetCode)
		}
	}

	remaining, err := env.resetsRepo.QueryBy(ctx, "user_id", user.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestPasswordResetService_CheckCode_NormalizesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "shouty@example.com", "secret1")

	require.NoError(t, env.resetsRepo.Create(ctx, &model.PasswordReset{
		ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: time.Now(), Code: "a1b2c3",
	}))

	_, err := env.resets.CheckCode(ctx, user.Email, " A1B2C3 ")
	assert.NoError(t, err)

	_, err = env.resets.CheckCode(ctx, user.Email, "   ")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestPasswordResetService_CheckCode_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "late@example.com", "secret1")

	require.NoError(t, env.resetsRepo.Create(ctx, &model.PasswordReset{
		ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: time.Now().Add(-2 * time.Hour), Code: "cccccc",
	}))

	_, err := env.resets.CheckCode(ctx, user.Email, "cccccc")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestPasswordResetService_Reset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "reset@example.com", "secret1")

	require.NoError(t, env.resetsRepo.Create(ctx, &model.PasswordReset{
		ID: ident.New(), UserID: user.ID, EmailStr: user.Email, ReqDate: time.Now().Add(-10 * time.Minute), Code: "oldold",
	}))
	reset, err := env.resets.Request(ctx, user.Email)
	require.NoError(t, err)

	_, _, err = env.resets.Reset(ctx, user.Email, reset.Code, "abc")
	assert.ErrorIs(t, err, validation.ErrPasswordTooShort)

	_, _, err = env.resets.Reset(ctx, user.Email, "zzzzzz", "new-secret")
	assert.ErrorIs(t, err, ErrInvalidResetCode)

	got, session, err := env.resets.Reset(ctx, user.Email, reset.Code, "new-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, session.LongExpire)
	assert.WithinDuration(t, time.Now().Add(LongSessionTimeout), session.Expires, 2*time.Second)

	_, err = env.userService.Authenticate(ctx, user.Email, "new-secret")
	assert.NoError(t, err)

	remaining, err := env.resetsRepo.QueryBy(ctx, "user_id", user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, remaining)

	_, _, err = env.resets.Reset(ctx, user.Email, reset.Code, "another-secret")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}
