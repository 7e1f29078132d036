package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type User struct {
	ID           string             `db:"id"`
	Email        string             `db:"email"`
	Password     string             `db:"password"` // bcrypt(password + salt)
	Salt         string             `db:"salt"`
	FName        string             `db:"fname"`
	LName        string             `db:"lname"`
	Address      types.NullJSONText `db:"address"`
	DateOfBirth  time.Time          `db:"date_of_birth"`
	Verified     bool               `db:"verified"`
	UserSettings types.NullJSONText `db:"user_settings"`
	CreatedAt    time.Time          `db:"created_at"`
}

// SafeUser is the client-facing view of a user, without credentials.
type SafeUser struct {
	ID           string         `json:"id"`
	FName        string         `json:"fName"`
	LName        string         `json:"lName"`
	DateOfBirth  string         `json:"date_of_birth"`
	Email        string         `json:"email"`
	Address      types.JSONText `json:"address"`
	Verified     bool           `json:"verified"`
	UserSettings types.JSONText `json:"user_settings"`
}

func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:           u.ID,
		FName:        u.FName,
		LName:        u.LName,
		DateOfBirth:  u.DateOfBirth.Format(time.DateOnly),
		Email:        u.Email,
		Address:      jsonOrNull(u.Address),
		Verified:     u.Verified,
		UserSettings: jsonOrNull(u.UserSettings),
	}
}

func (u *User) FullName() string {
	if u.LName == "" {
		return u.FName
	}
	return u.FName + " " + u.LName
}

func jsonOrNull(j types.NullJSONText) types.JSONText {
	if !j.Valid || len(j.JSONText) == 0 {
		return types.JSONText("null")
	}
	return j.JSONText
}
