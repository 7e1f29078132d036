package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/momager/momager-core/internal/dbtest"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
)

type testEnv struct {
	db            *sqlx.DB
	users         repository.UserRepository
	sessionsRepo  repository.SessionRepository
	resetsRepo    repository.PasswordResetRepository
	keysRepo      repository.VerificationKeyRepository
	weatherRepo   repository.WeatherCacheRepository
	email         *EmailService
	sessions      *SessionService
	userService   *UserService
	resets        *PasswordResetService
	verifications *VerificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.New(t)

	env := &testEnv{
		db:           db,
		users:        repository.NewUserRepository(db),
		sessionsRepo: repository.NewSessionRepository(db),
		resetsRepo:   repository.NewPasswordResetRepository(db),
		keysRepo:     repository.NewVerificationKeyRepository(db),
		weatherRepo:  repository.NewWeatherCacheRepository(db),
		email:        NewEmailService("", "noreply@momager.test", "http://localhost:8086", "Momager", true),
	}
	env.sessions = NewSessionService(env.sessionsRepo, env.users)
	env.userService = NewUserService(env.users, env.resetsRepo, env.sessions)
	env.resets = NewPasswordResetService(env.users, env.resetsRepo, env.userService, env.sessions, env.email, time.Hour)
	env.verifications = NewVerificationService(env.users, env.keysRepo, env.email)
	return env
}

func (e *testEnv) signUp(t *testing.T, email, password string) (*model.User, *model.Session) {
	t.Helper()
	user, session, err := e.userService.SignUp(context.Background(), SignUpInput{
		Email:       email,
		Password:    password,
		FName:       "Ada",
		LName:       "Lovelace",
		Address:     json.RawMessage(`{"street":"1 Main St","city":"Boston"}`),
		DateOfBirth: "1990-04-12",
	})
	require.NoError(t, err)
	return user, session
}
