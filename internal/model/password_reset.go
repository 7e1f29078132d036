package model

import (
	"time"
)

type PasswordReset struct {
	ID       string    `db:"id"`
	UserID   string    `db:"user_id"`
	EmailStr string    `db:"email_str"`
	ReqDate  time.Time `db:"req_date"`
	Code     string    `db:"code"`
}

// IsExpired reports whether the code is older than ttl.
func (p *PasswordReset) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.After(p.ReqDate.Add(ttl))
}
