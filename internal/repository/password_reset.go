package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/model"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *model.PasswordReset) error
	ByID(ctx context.Context, id string) (*model.PasswordReset, error)
	// LatestByEmail returns the newest reset requested for email.
	LatestByEmail(ctx context.Context, email string) (*model.PasswordReset, error)
	// QueryBy returns every reset matching field, newest first.
	QueryBy(ctx context.Context, field string, value any) ([]model.PasswordReset, error)
	UpdateEmailForUser(ctx context.Context, userID, email string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type passwordResetRepository struct {
	table *table[model.PasswordReset]
}

func NewPasswordResetRepository(db *sqlx.DB) PasswordResetRepository {
	return &passwordResetRepository{
		table: newTable[model.PasswordReset](db, "password_resets",
			columns("id", "user_id", "email_str", "req_date"),
			columns("user_id", "email_str", "req_date"),
		),
	}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	if reset.ID == "" || reset.UserID == "" || reset.EmailStr == "" || reset.Code == "" {
		return apperror.External("All arguments must be defined to create a password reset")
	}
	if reset.ReqDate.IsZero() {
		reset.ReqDate = time.Now()
	}
	reset.ReqDate = timestamp(reset.ReqDate)

	return r.table.insert(ctx, map[string]any{
		"id":        reset.ID,
		"user_id":   reset.UserID,
		"email_str": reset.EmailStr,
		"req_date":  reset.ReqDate,
		"code":      reset.Code,
	})
}

func (r *passwordResetRepository) ByID(ctx context.Context, id string) (*model.PasswordReset, error) {
	return r.table.get(ctx, id)
}

func (r *passwordResetRepository) LatestByEmail(ctx context.Context, email string) (*model.PasswordReset, error) {
	return r.table.queryOne(ctx, "email_str", email, "req_date DESC")
}

func (r *passwordResetRepository) QueryBy(ctx context.Context, field string, value any) ([]model.PasswordReset, error) {
	return r.table.queryAll(ctx, field, value, "req_date DESC", false)
}

func (r *passwordResetRepository) UpdateEmailForUser(ctx context.Context, userID, email string) (int64, error) {
	return r.table.updateAll(ctx, "email_str", email, "user_id", userID)
}

func (r *passwordResetRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}

func (r *passwordResetRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.table.deleteAll(ctx, "user_id", userID)
}
