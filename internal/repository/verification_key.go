package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/model"
)

// VerificationKeyRepository has no update: keys are created and consumed, never changed.
type VerificationKeyRepository interface {
	Create(ctx context.Context, key *model.VerificationKey) error
	ByID(ctx context.Context, id string) (*model.VerificationKey, error)
	ByKey(ctx context.Context, userKey string) (*model.VerificationKey, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type verificationKeyRepository struct {
	table *table[model.VerificationKey]
}

func NewVerificationKeyRepository(db *sqlx.DB) VerificationKeyRepository {
	return &verificationKeyRepository{
		table: newTable[model.VerificationKey](db, "verification_keys",
			columns("id", "user_id", "user_key"),
			columns(),
		),
	}
}

func (r *verificationKeyRepository) Create(ctx context.Context, key *model.VerificationKey) error {
	if key.ID == "" || key.UserID == "" || key.UserKey == "" {
		return apperror.External("User id must be defined to create a verification key")
	}

	return r.table.insert(ctx, map[string]any{
		"id":       key.ID,
		"user_id":  key.UserID,
		"user_key": key.UserKey,
	})
}

func (r *verificationKeyRepository) ByID(ctx context.Context, id string) (*model.VerificationKey, error) {
	return r.table.get(ctx, id)
}

func (r *verificationKeyRepository) ByKey(ctx context.Context, userKey string) (*model.VerificationKey, error) {
	return r.table.queryOne(ctx, "user_key", userKey, "")
}

func (r *verificationKeyRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}

func (r *verificationKeyRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.table.deleteAll(ctx, "user_id", userID)
}
