package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/model"
)

// UserProfile holds the editable, non-credential user fields.
type UserProfile struct {
	FName        string
	LName        string
	DateOfBirth  time.Time
	Address      types.NullJSONText
	UserSettings types.NullJSONText
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	QueryBy(ctx context.Context, field, value string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, profile UserProfile) error
	UpdatePassword(ctx context.Context, id, hash, salt string) error
	UpdateEmail(ctx context.Context, id, email string) error
	MarkVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	table *table[model.User]
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{
		table: newTable[model.User](db, "users",
			columns("id", "email"),
			columns("email", "password", "salt", "fname", "lname", "address", "date_of_birth", "verified", "user_settings"),
		),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" || user.Email == "" || user.Password == "" || user.Salt == "" {
		return apperror.External("Received too few arguments to create a user")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.CreatedAt = timestamp(user.CreatedAt)

	err := r.table.insert(ctx, map[string]any{
		"id":            user.ID,
		"email":         user.Email,
		"password":      user.Password,
		"salt":          user.Salt,
		"fname":         user.FName,
		"lname":         user.LName,
		"address":       user.Address,
		"date_of_birth": user.DateOfBirth.UTC(),
		"verified":      user.Verified,
		"user_settings": user.UserSettings,
		"created_at":    user.CreatedAt,
	})
	if errors.Is(err, ErrDuplicate) {
		return apperror.New("Email already in use", apperror.StatusExternal, ErrDuplicateEmail)
	}
	return err
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.table.get(ctx, id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.table.queryOne(ctx, "email", email, "")
}

func (r *userRepository) QueryBy(ctx context.Context, field, value string) (*model.User, error) {
	return r.table.queryOne(ctx, field, value, "")
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, profile UserProfile) error {
	return r.table.update(ctx, id, map[string]any{
		"fname":         profile.FName,
		"lname":         profile.LName,
		"date_of_birth": profile.DateOfBirth.UTC(),
		"address":       profile.Address,
		"user_settings": profile.UserSettings,
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	return r.table.update(ctx, id, map[string]any{
		"password": hash,
		"salt":     salt,
	})
}

func (r *userRepository) UpdateEmail(ctx context.Context, id, email string) error {
	err := r.table.update(ctx, id, map[string]any{"email": email})
	if errors.Is(err, ErrDuplicate) {
		return apperror.New("Email already in use", apperror.StatusExternal, ErrDuplicateEmail)
	}
	return err
}

func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	return r.table.update(ctx, id, map[string]any{"verified": true})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}
