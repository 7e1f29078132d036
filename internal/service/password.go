package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/momager/momager-core/internal/ident"
	"github.com/momager/momager-core/internal/validation"
)

// HashPassword salts password with a fresh short identifier and hashes the result.
func HashPassword(password string) (hash, salt string, err error) {
	err = validation.ValidatePassword(password)
	if err != nil {
		return "", "", err
	}

	salt = ident.Short()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password+salt), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return string(hashed), salt, nil
}

func ComparePassword(password, salt, hash string) error {
	if salt == "" {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+salt))
	if err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
