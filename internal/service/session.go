package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
)

const (
	ShortSessionTimeout = time.Hour
	LongSessionTimeout  = 30 * 24 * time.Hour
	refreshWindow       = 5 * time.Minute
)

var (
	ErrSessionExpired   = errors.New("session timed out")
	ErrInvalidSessionID = errors.New("session id must be a valid identifier")
)

type SessionService struct {
	sessionRepository repository.SessionRepository
	userRepository    repository.UserRepository
}

func NewSessionService(sessionRepository repository.SessionRepository, userRepository repository.UserRepository) *SessionService {
	return &SessionService{
		sessionRepository: sessionRepository,
		userRepository:    userRepository,
	}
}

func sessionTimeout(long bool) time.Duration {
	if long {
		return LongSessionTimeout
	}
	return ShortSessionTimeout
}

// Create starts a session for userID lasting one hour, or thirty days when long is set.
func (s *SessionService) Create(ctx context.Context, userID string, long bool) (*model.Session, error) {
	_, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("session owner: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:         ident.New(),
		UserID:     userID,
		Expires:    now.Add(sessionTimeout(long)),
		LongExpire: long,
		CreatedAt:  now,
	}

	err = s.sessionRepository.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.sessionRepository.ByID(ctx, id)
}

func (s *SessionService) QueryBy(ctx context.Context, field string, value any) (*model.Session, error) {
	return s.sessionRepository.QueryBy(ctx, field, value)
}

// Refresh extends a session that expires within the next five minutes.
// Sessions further out are left alone; expired ones are deleted and ErrSessionExpired is returned.
func (s *SessionService) Refresh(ctx context.Context, session *model.Session) error {
	now := time.Now()
	if session.Expires.After(now.Add(refreshWindow)) {
		return nil
	}

	if session.IsExpired(now) {
		return s.expire(ctx, session)
	}

	expires := now.Add(sessionTimeout(session.LongExpire))
	err := s.sessionRepository.UpdateExpires(ctx, session.ID, expires)
	if err != nil {
		if apperror.IsExternal(err) {
			return err
		}
		return apperror.Internal("Error refreshing Session date", err)
	}
	session.Expires = expires.UTC().Truncate(time.Second)
	return nil
}

// GetAndRefresh loads the session and refreshes it, returning the resulting expiry.
func (s *SessionService) GetAndRefresh(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.Refresh(ctx, session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.sessionRepository.Delete(ctx, id)
}

// UserFromSession resolves the owner of the session sid. Expired sessions are deleted and rejected.
func (s *SessionService) UserFromSession(ctx context.Context, sid string) (*model.User, error) {
	if !ident.IsValid(sid) {
		return nil, apperror.New("Session ID must be a valid session uid", apperror.StatusExternal, ErrInvalidSessionID)
	}

	session, err := s.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		return nil, s.expire(ctx, session)
	}
	return s.userRepository.ByID(ctx, session.UserID)
}

// expire deletes a session past its expiry and reports ErrSessionExpired.
func (s *SessionService) expire(ctx context.Context, session *model.Session) error {
	err := s.sessionRepository.Delete(ctx, session.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return apperror.New("Session timed out", apperror.StatusExternal, ErrSessionExpired)
}

// CleanupExpired removes every session whose expiry has passed.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.sessionRepository.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}
