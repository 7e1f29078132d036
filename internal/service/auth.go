package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/momager/momager-core/internal/model"
)

const SessionCookieName = "momager_session"

var ErrInvalidToken = errors.New("invalid session token")

// AuthService signs the session cookie. The cookie only carries the session id;
// the sessions table stays authoritative for expiry.
type AuthService struct {
	cookieKey    []byte
	isProduction bool
}

func NewAuthService(cookieKey string, isProduction bool) *AuthService {
	return &AuthService{
		cookieKey:    []byte(cookieKey),
		isProduction: isProduction,
	}
}

func (s *AuthService) GenerateJWT(session *model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.UserID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(session.Expires),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cookieKey)
}

// VerifyJWT returns the session id carried by tokenString.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cookieKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, session *model.Session) error {
	token, err := s.GenerateJWT(session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  session.Expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionID extracts and verifies the session id from the request cookie.
func (s *AuthService) SessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", ErrInvalidToken
	}
	return s.VerifyJWT(cookie.Value)
}
