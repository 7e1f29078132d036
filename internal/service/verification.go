package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
)

var ErrAlreadyVerified = errors.New("account already verified")

type VerificationService struct {
	userRepository            repository.UserRepository
	verificationKeyRepository repository.VerificationKeyRepository
	emailService              *EmailService
}

func NewVerificationService(
	userRepository repository.UserRepository,
	verificationKeyRepository repository.VerificationKeyRepository,
	emailService *EmailService,
) *VerificationService {
	return &VerificationService{
		userRepository:            userRepository,
		verificationKeyRepository: verificationKeyRepository,
		emailService:              emailService,
	}
}

// Create issues a fresh key for userID, replacing any earlier one, and mails the verification link.
func (s *VerificationService) Create(ctx context.Context, userID string) (*model.VerificationKey, error) {
	user, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Verified {
		return nil, apperror.New("Account already verified", apperror.StatusExternal, ErrAlreadyVerified)
	}

	_, err = s.verificationKeyRepository.DeleteByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	key := &model.VerificationKey{
		ID:      ident.New(),
		UserID:  user.ID,
		UserKey: ident.New(),
	}
	err = s.verificationKeyRepository.Create(ctx, key)
	if err != nil {
		return nil, err
	}

	err = s.emailService.SendVerification(ctx, user.Email, user.FName, key.UserKey)
	if err != nil {
		return nil, apperror.Internal("Unable to send verification email", err)
	}
	return key, nil
}

// Verify marks the key's owner as verified and consumes the key.
func (s *VerificationService) Verify(ctx context.Context, userKey string) (*model.User, error) {
	if !ident.IsValid(userKey) {
		return nil, apperror.New("Invalid verification key", apperror.StatusExternal, repository.ErrNotFound)
	}

	key, err := s.verificationKeyRepository.ByKey(ctx, userKey)
	if err != nil {
		return nil, err
	}

	err = s.userRepository.MarkVerified(ctx, key.UserID)
	if err != nil {
		return nil, err
	}

	err = s.verificationKeyRepository.Delete(ctx, key.ID)
	if err != nil {
		slog.WarnContext(ctx, "failed to delete used verification key", "error", err, "user_id", key.UserID)
	}

	return s.userRepository.ByID(ctx, key.UserID)
}
