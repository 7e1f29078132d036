package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx/types"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/repository"
	"github.com/momager/momager-core/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingField       = errors.New("required field missing")
	ErrInvalidJSON        = errors.New("value must be valid JSON")
)

type SignUpInput struct {
	Email       string
	Password    string
	FName       string
	LName       string
	Address     json.RawMessage
	DateOfBirth string
}

// UserDataInput carries a full profile replacement. Every field is required.
type UserDataInput struct {
	FName        string
	LName        string
	DateOfBirth  string
	Address      json.RawMessage
	UserSettings json.RawMessage
}

type UserService struct {
	userRepository          repository.UserRepository
	passwordResetRepository repository.PasswordResetRepository
	sessionService          *SessionService
}

func NewUserService(
	userRepository repository.UserRepository,
	passwordResetRepository repository.PasswordResetRepository,
	sessionService *SessionService,
) *UserService {
	return &UserService{
		userRepository:          userRepository,
		passwordResetRepository: passwordResetRepository,
		sessionService:          sessionService,
	}
}

// SignUp creates the user and a short-lived session for it.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*model.User, *model.Session, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.FName == "" || in.LName == "" || in.DateOfBirth == "" {
		return nil, nil, apperror.New("Received too few function arguments", apperror.StatusExternal, ErrMissingField)
	}

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, nil, apperror.New(err.Error(), apperror.StatusExternal, err)
	}
	for _, name := range []string{in.FName, in.LName} {
		err = validation.ValidateName(name)
		if err != nil {
			return nil, nil, apperror.New(err.Error(), apperror.StatusExternal, err)
		}
	}
	dob, err := validation.ValidateDateOfBirth(in.DateOfBirth)
	if err != nil {
		return nil, nil, apperror.New(err.Error(), apperror.StatusExternal, err)
	}
	address, err := optionalJSON(in.Address)
	if err != nil {
		return nil, nil, err
	}

	hash, salt, err := HashPassword(in.Password)
	if err != nil {
		if isPasswordRule(err) {
			return nil, nil, apperror.New(err.Error(), apperror.StatusExternal, err)
		}
		return nil, nil, apperror.Internal("Error hashing password", err)
	}

	user := &model.User{
		ID:          ident.New(),
		Email:       email,
		Password:    hash,
		Salt:        salt,
		FName:       in.FName,
		LName:       in.LName,
		Address:     address,
		DateOfBirth: dob,
	}
	err = s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessionService.Create(ctx, user.ID, false)
	if err != nil {
		// Roll the account back so the email can be used again.
		deleteErr := s.userRepository.Delete(ctx, user.ID)
		if deleteErr != nil {
			slog.ErrorContext(ctx, "failed to remove user after session error", "error", deleteErr, "user_id", user.ID)
		}
		return nil, nil, err
	}

	slog.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, session, nil
}

// Authenticate returns the user matching email whose password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.New("Email and password are required", apperror.StatusExternal, ErrInvalidCredentials)
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New("Failed to find a User to compare to", apperror.StatusExternal, ErrInvalidCredentials)
		}
		return nil, err
	}

	err = ComparePassword(password, user.Salt, user.Password)
	if err != nil {
		return nil, apperror.New("Unable to authenticate user, bad credentials", apperror.StatusExternal, ErrInvalidCredentials)
	}
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

func (s *UserService) UpdateUserData(ctx context.Context, userID string, in UserDataInput) error {
	if in.FName == "" || in.LName == "" || in.DateOfBirth == "" || isAbsent(in.Address) || isAbsent(in.UserSettings) {
		return apperror.New("All fields must be defined to UPDATE User", apperror.StatusExternal, ErrMissingField)
	}

	dob, err := validation.ParseDate(in.DateOfBirth)
	if err != nil {
		return apperror.New(err.Error(), apperror.StatusExternal, err)
	}
	address, err := optionalJSON(in.Address)
	if err != nil {
		return err
	}
	settings, err := optionalJSON(in.UserSettings)
	if err != nil {
		return err
	}

	return s.userRepository.UpdateProfile(ctx, userID, repository.UserProfile{
		FName:        in.FName,
		LName:        in.LName,
		DateOfBirth:  dob,
		Address:      address,
		UserSettings: settings,
	})
}

// UpdatePassword replaces the password hash and salt.
func (s *UserService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, salt, err := HashPassword(newPassword)
	if err != nil {
		if isPasswordRule(err) {
			return apperror.New(err.Error(), apperror.StatusExternal, err)
		}
		return apperror.Internal("Error hashing password", err)
	}

	err = s.userRepository.UpdatePassword(ctx, userID, hash, salt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateEmail re-authenticates with the current credentials before changing the address.
// Pending password resets follow the user to the new address.
func (s *UserService) UpdateEmail(ctx context.Context, email, password, newEmail string) (*model.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	newEmail = validation.NormalizeEmail(newEmail)
	if newEmail == "" {
		return nil, apperror.New("A new email must be supplied to change emails", apperror.StatusExternal, ErrMissingField)
	}
	err = validation.ValidateEmail(newEmail)
	if err != nil {
		return nil, apperror.New(err.Error(), apperror.StatusExternal, err)
	}

	err = s.userRepository.UpdateEmail(ctx, user.ID, newEmail)
	if err != nil {
		return nil, err
	}

	_, err = s.passwordResetRepository.UpdateEmailForUser(ctx, user.ID, newEmail)
	if err != nil {
		slog.WarnContext(ctx, "failed to move password resets to new email", "error", err, "user_id", user.ID)
	}

	user.Email = newEmail
	return user, nil
}

func (s *UserService) SafeData(user *model.User) model.SafeUser {
	return user.Safe()
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.userRepository.Delete(ctx, id)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func isPasswordRule(err error) bool {
	return errors.Is(err, validation.ErrPasswordTooShort) || errors.Is(err, validation.ErrPasswordTooLong)
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// optionalJSON converts a request fragment to a nullable JSON column. Strings holding JSON are unwrapped.
func optionalJSON(raw json.RawMessage) (types.NullJSONText, error) {
	if isAbsent(raw) {
		return types.NullJSONText{}, nil
	}

	raw = bytes.TrimSpace(raw)
	var inner string
	if raw[0] == '"' && json.Unmarshal(raw, &inner) == nil && json.Valid([]byte(inner)) {
		raw = json.RawMessage(inner)
	}
	if !json.Valid(raw) {
		return types.NullJSONText{}, apperror.New("Invalid JSON value", apperror.StatusExternal, ErrInvalidJSON)
	}
	return types.NullJSONText{JSONText: types.JSONText(raw), Valid: true}, nil
}
