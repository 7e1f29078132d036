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
)

func TestSessionService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "session@example.com", "secret1")

	short, err := env.sessions.Create(ctx, user.ID, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(ShortSessionTimeout), short.Expires, 2*time.Second)
	assert.False(t, short.LongExpire)

	long, err := env.sessions.Create(ctx, user.ID, true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(LongSessionTimeout), long.Expires, 2*time.Second)

	stored, err := env.sessions.Get(ctx, long.ID)
	require.NoError(t, err)
	assert.True(t, stored.LongExpire)

	_, err = env.sessions.Create(ctx, ident.New(), false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionService_QueryBy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, session := env.signUp(t, "query@example.com", "secret1")

	got, err := env.sessions.QueryBy(ctx, "user_id", user.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = env.sessions.QueryBy(ctx, "long_expire", false)
	assert.ErrorIs(t, err, repository.ErrInvalidColumn)
}

func TestSessionService_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		expiresIn   time.Duration
		long        bool
		wantErr     error
		wantExpires time.Duration
		unchanged   bool
	}{
		{name: "far from expiry", expiresIn: 30 * time.Minute, unchanged: true},
		{name: "just outside window", expiresIn: 6 * time.Minute, unchanged: true},
		{name: "inside window", expiresIn: 2 * time.Minute, wantExpires: ShortSessionTimeout},
		{name: "inside window long", expiresIn: 2 * time.Minute, long: true, wantExpires: LongSessionTimeout},
		{name: "expired", expiresIn: -time.Minute, wantErr: ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			user, _ := env.signUp(t, "refresh@example.com", "secret1")

			session := &model.Session{
				ID:         ident.New(),
				UserID:     user.ID,
				Expires:    time.Now().Add(tt.expiresIn),
				LongExpire: tt.long,
			}
			require.NoError(t, env.sessionsRepo.Create(ctx, session))
			before := session.Expires

			err := env.sessions.Refresh(ctx, session)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, apperror.IsExternal(err))

				_, err = env.sessions.Get(ctx, session.ID)
				assert.ErrorIs(t, err, repository.ErrNotFound)
				return
			}
			require.NoError(t, err)

			stored, err := env.sessions.Get(ctx, session.ID)
			require.NoError(t, err)
			if tt.unchanged {
				assert.True(t, stored.Expires.Equal(before))
				return
			}
			assert.WithinDuration(t, time.Now().Add(tt.wantExpires), stored.Expires, 2*time.Second)
			assert.True(t, stored.Expires.Equal(session.Expires))
		})
	}
}

func TestSessionService_GetAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "gar@example.com", "secret1")

	session := &model.Session{ID: ident.New(), UserID: user.ID, Expires: time.Now().Add(time.Minute)}
	require.NoError(t, env.sessionsRepo.Create(ctx, session))

	refreshed, err := env.sessions.GetAndRefresh(ctx, session.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(ShortSessionTimeout), refreshed.Expires, 2*time.Second)

	_, err = env.sessions.GetAndRefresh(ctx, ident.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionService_UserFromSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, session := env.signUp(t, "owner@example.com", "secret1")

	got, err := env.sessions.UserFromSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.sessions.UserFromSession(ctx, "short")
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	require.NoError(t, env.sessions.Delete(ctx, session.ID))
	_, err = env.sessions.UserFromSession(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionService_UserFromSession_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.signUp(t, "stale@example.com", "secret1")

	stale := &model.Session{ID: ident.New(), UserID: user.ID, Expires: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, env.sessionsRepo.Create(ctx, stale))

	got, err := env.sessions.UserFromSession(ctx, stale.ID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, apperror.IsExternal(err))

	_, err = env.sessions.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionService_CleanupExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, live := env.signUp(t, "cleanup@example.com", "secret1")

	for range 3 {
		require.NoError(t, env.sessionsRepo.Create(ctx, &model.Session{
			ID:      ident.New(),
			UserID:  user.ID,
			Expires: time.Now().Add(-time.Hour),
		}))
	}

	n, err := env.sessions.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = env.sessions.Get(ctx, live.ID)
	assert.NoError(t, err)
}
