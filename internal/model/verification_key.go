package model

type VerificationKey struct {
	ID      string `db:"id"`
	UserID  string `db:"user_id"`
	UserKey string `db:"user_key"`
}
