package model

import "time"

type Session struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Expires    time.Time `db:"expires"`
	LongExpire bool      `db:"long_expire"`
	CreatedAt  time.Time `db:"created_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return s.Expires.Before(now)
}
