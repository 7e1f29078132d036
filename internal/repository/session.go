package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/momager/momager-core/internal/apperror"
	"github.com/momager/momager-core/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	ByID(ctx context.Context, id string) (*model.Session, error)
	// QueryBy looks a session up by id, user_id or expires. long_expire is not searchable.
	QueryBy(ctx context.Context, field string, value any) (*model.Session, error)
	ByUser(ctx context.Context, userID string) ([]model.Session, error)
	UpdateExpires(ctx context.Context, id string, expires time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	table *table[model.Session]
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{
		table: newTable[model.Session](db, "sessions",
			columns("id", "user_id", "expires"),
			columns("expires"),
		),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" || session.UserID == "" || session.Expires.IsZero() {
		return apperror.External("Not enough input arguments to create a session")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.CreatedAt = timestamp(session.CreatedAt)
	session.Expires = timestamp(session.Expires)

	return r.table.insert(ctx, map[string]any{
		"id":          session.ID,
		"user_id":     session.UserID,
		"expires":     session.Expires,
		"long_expire": session.LongExpire,
		"created_at":  session.CreatedAt,
	})
}

func (r *sessionRepository) ByID(ctx context.Context, id string) (*model.Session, error) {
	return r.table.get(ctx, id)
}

func (r *sessionRepository) QueryBy(ctx context.Context, field string, value any) (*model.Session, error) {
	if t, ok := value.(time.Time); ok {
		value = timestamp(t)
	}
	return r.table.queryOne(ctx, field, value, "expires DESC")
}

func (r *sessionRepository) ByUser(ctx context.Context, userID string) ([]model.Session, error) {
	return r.table.queryAll(ctx, "user_id", userID, "expires DESC", true)
}

func (r *sessionRepository) UpdateExpires(ctx context.Context, id string, expires time.Time) error {
	return r.table.update(ctx, id, map[string]any{"expires": timestamp(expires)})
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.table.deleteAll(ctx, "user_id", userID)
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	rows, err := r.table.exec(ctx, "DELETE FROM sessions WHERE expires < ?", timestamp(now))
	if err != nil {
		return 0, apperror.Internal("Error deleting expired sessions", err)
	}
	return rows, nil
}
