package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/validation"
)

var (
	ErrInvalidResetCode = errors.New("invalid or expired reset code")
)

type PasswordResetService struct {
	userRepository          repository.UserRepository
	passwordResetRepository repository.PasswordResetRepository
	userService             *UserService
	sessionService          *SessionService
	emailService            *EmailService
	expiry                  time.Duration
}

func NewPasswordResetService(
	userRepository repository.UserRepository,
	passwordResetRepository repository.PasswordResetRepository,
	userService *UserService,
	sessionService *SessionService,
	emailService *EmailService,
	expiry time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		userRepository:          userRepository,
		passwordResetRepository: passwordResetRepository,
		userService:             userService,
		sessionService:          sessionService,
		emailService:            emailService,
		expiry:                  expiry,
	}
}

// Request replaces any outstanding reset for the account at email with a new code and mails it.
func (s *PasswordResetService) Request(ctx context.Context, email string) (*model.PasswordReset, error) {
	email = validation.NormalizeEmail(email)
	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// Only one code is live per user; req_date has second precision and cannot order same-second requests.
	_, err = s.passwordResetRepository.DeleteByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	reset := &model.PasswordReset{
		ID:       ident.New(),
		UserID:   user.ID,
		EmailStr: user.Email,
		ReqDate:  time.Now(),
		Code:     ident.Short(),
	}
	err = s.passwordResetRepository.Create(ctx, reset)
	if err != nil {
		return nil, err
	}

	err = s.emailService.SendPasswordRecovery(ctx, user.Email, reset.Code)
	if err != nil {
		return nil, apperror.Internal("Unable to send password recovery email", err)
	}
	return reset, nil
}

// CheckCode verifies code against the newest reset requested for email.
func (s *PasswordResetService) CheckCode(ctx context.Context, email, code string) (*model.PasswordReset, error) {
	email = validation.NormalizeEmail(email)
	code = strings.ToLower(strings.TrimSpace(code))
	if email == "" || code == "" {
		return nil, apperror.New("Email and code are required", apperror.StatusExternal, ErrInvalidResetCode)
	}

	reset, err := s.passwordResetRepository.LatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New("No password reset requested", apperror.StatusExternal, ErrInvalidResetCode)
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(reset.Code), []byte(code)) != 1 {
		return nil, apperror.New("Reset code does not match", apperror.StatusExternal, ErrInvalidResetCode)
	}
	if reset.IsExpired(time.Now(), s.expiry) {
		return nil, apperror.New("Reset code has expired", apperror.StatusExternal, ErrInvalidResetCode)
	}
	return reset, nil
}

// Reset sets a new password after re-checking the code, then signs the user in with a long session.
// All outstanding resets for the user are removed.
func (s *PasswordResetService) Reset(ctx context.Context, email, code, newPassword string) (*model.User, *model.Session, error) {
	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return nil, nil, apperror.New(err.Error(), apperror.StatusExternal, err)
	}

	reset, err := s.CheckCode(ctx, email, code)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepository.ByID(ctx, reset.UserID)
	if err != nil {
		return nil, nil, err
	}

	err = s.userService.UpdatePassword(ctx, user.ID, newPassword)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessionService.Create(ctx, user.ID, true)
	if err != nil {
		return nil, nil, err
	}

	_, err = s.passwordResetRepository.DeleteByUser(ctx, user.ID)
	if err != nil {
		slog.WarnContext(ctx, "failed to clean up password resets", "error", err, "user_id", user.ID)
	}

	slog.InfoContext(ctx, "password reset", "user_id", user.ID)
	return user, session, nil
}
