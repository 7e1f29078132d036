package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/momager/momager-core/internal/ctxkeys"
	"github.com/momager/momager-core/internal/model"
	"github.com/momager/momager-core/internal/service"
)

// AuthHandler serves the /plumbing/auth JSON API used by the client form elements.
type AuthHandler struct {
	authService          *service.AuthService
	sessionService       *service.SessionService
	userService          *service.UserService
	passwordResetService *service.PasswordResetService
	verificationService  *service.VerificationService
}

func NewAuthHandler(
	authService *service.AuthService,
	sessionService *service.SessionService,
	userService *service.UserService,
	passwordResetService *service.PasswordResetService,
	verificationService *service.VerificationService,
) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		sessionService:       sessionService,
		userService:          userService,
		passwordResetService: passwordResetService,
		verificationService:  verificationService,
	}
}

type sessionPayload struct {
	Success   bool           `json:"success"`
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Expires   time.Time      `json:"expires"`
	UserData  model.SafeUser `json:"userData"`
}

func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "auth index"})
}

type loginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	// ShouldExpire asks for the long-lived session.
	ShouldExpire bool `json:"shouldExpire"`
}

// Login authenticates and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeFailure(w, r, "login request rejected", err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Secret)
	if err != nil {
		writeFailure(w, r, "login failed", err)
		return
	}

	session, err := h.sessionService.Create(r.Context(), user.ID, req.ShouldExpire)
	if err != nil {
		writeFailure(w, r, "failed to create session", err)
		return
	}

	h.writeSession(w, r, user, session)
}

type sidRequest struct {
	SID string `json:"sid"`
}

// RefreshSession extends the session if it is close to expiring.
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	var req sidRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.SID == "" {
		writeFailure(w, r, "session refresh rejected", err)
		return
	}

	session, err := h.sessionService.GetAndRefresh(r.Context(), req.SID)
	if err != nil {
		writeFailure(w, r, "session refresh failed", err)
		return
	}

	if h.ownsCookie(r, session.ID) {
		err = h.authService.SetSessionCookie(w, session)
		if err != nil {
			writeFailure(w, r, "failed to set session cookie", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]time.Time{"sessionEnd": session.Expires})
}

// Logout deletes the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req sidRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.SID == "" {
		writeFailure(w, r, "logout rejected", err)
		return
	}

	session, err := h.sessionService.Get(r.Context(), req.SID)
	if err != nil {
		writeFailure(w, r, "logout failed", err)
		return
	}

	err = h.sessionService.Delete(r.Context(), session.ID)
	if err != nil {
		writeFailure(w, r, "logout failed", err)
		return
	}

	if h.ownsCookie(r, session.ID) {
		h.authService.ClearSessionCookie(w)
	}
	writeSuccess(w)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserData struct {
		FName       string          `json:"fName"`
		LName       string          `json:"lName"`
		Address     json.RawMessage `json:"address"`
		DateOfBirth string          `json:"date_of_birth"`
	} `json:"userData"`
}

// SignUp creates the account and signs it in with a short session.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if ctxkeys.User(r.Context()) != nil {
		writeFailure(w, r, "sign up while signed in", nil)
		return
	}

	var req signUpRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeFailure(w, r, "sign up rejected", err)
		return
	}

	user, session, err := h.userService.SignUp(r.Context(), service.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		FName:       req.UserData.FName,
		LName:       req.UserData.LName,
		Address:     req.UserData.Address,
		DateOfBirth: req.UserData.DateOfBirth,
	})
	if err != nil {
		writeFailure(w, r, "sign up failed", err)
		return
	}

	err = h.authService.SetSessionCookie(w, session)
	if err != nil {
		writeFailure(w, r, "failed to set session cookie", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"user_id":    user.ID,
		"session_id": session.ID,
	})
}

type forgotPasswordRequest struct {
	Stage  *int   `json:"stage"`
	Email  string `json:"email"`
	Code   string `json:"code"`
	Secret string `json:"secret"`
}

// RequestPasswordReset mails a reset code to the account owner.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeFailure(w, r, "password reset request rejected", err)
		return
	}

	_, err = h.passwordResetService.Request(r.Context(), req.Email)
	if err != nil {
		writeFailure(w, r, "password reset request failed", err)
		return
	}
	writeSuccess(w)
}

// ForgotPassword runs stage 2 (check the mailed code) or stage 3 (set the new
// password and sign in with a long session).
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.Stage == nil {
		writeFailure(w, r, "password reset stage rejected", err)
		return
	}

	switch *req.Stage {
	case 2:
		_, err = h.passwordResetService.CheckCode(r.Context(), req.Email, req.Code)
		if err != nil {
			writeFailure(w, r, "password reset code rejected", err)
			return
		}
		writeSuccess(w)
	case 3:
		user, session, err := h.passwordResetService.Reset(r.Context(), req.Email, req.Code, req.Secret)
		if err != nil {
			writeFailure(w, r, "password reset failed", err)
			return
		}
		h.writeSession(w, r, user, session)
	default:
		writeFailure(w, r, "unknown password reset stage", nil)
	}
}

type userDataRequest struct {
	SessionKey   string          `json:"sessionKey"`
	FName        string          `json:"fName"`
	LName        string          `json:"lName"`
	DateOfBirth  string          `json:"date_of_birth"`
	Address      json.RawMessage `json:"address"`
	UserSettings json.RawMessage `json:"user_settings"`
}

// UpdateUser replaces the profile of the session's owner.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userDataRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.SessionKey == "" {
		writeFailure(w, r, "user update rejected", err)
		return
	}

	user, err := h.sessionService.UserFromSession(r.Context(), req.SessionKey)
	if err != nil {
		writeFailure(w, r, "user update failed", err)
		return
	}

	err = h.userService.UpdateUserData(r.Context(), user.ID, service.UserDataInput{
		FName:        req.FName,
		LName:        req.LName,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		UserSettings: req.UserSettings,
	})
	if err != nil {
		writeFailure(w, r, "user update failed", err)
		return
	}
	writeSuccess(w)
}

type verifyRequest struct {
	SessionKey string `json:"sessionKey"`
}

// SendVerification mails a fresh verification link to the session's owner.
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.SessionKey == "" {
		writeFailure(w, r, "verification request rejected", err)
		return
	}

	user, err := h.sessionService.UserFromSession(r.Context(), req.SessionKey)
	if err != nil {
		writeFailure(w, r, "verification request failed", err)
		return
	}

	_, err = h.verificationService.Create(r.Context(), user.ID)
	if err != nil {
		writeFailure(w, r, "verification request failed", err)
		return
	}
	writeSuccess(w)
}

// Verify consumes the key from a verification link.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("key"))

	_, err := h.verificationService.Verify(r.Context(), key)
	if err != nil {
		writeFailure(w, r, "verification failed", err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, user *model.User, session *model.Session) {
	err := h.authService.SetSessionCookie(w, session)
	if err != nil {
		writeFailure(w, r, "failed to set session cookie", err)
		return
	}

	writeJSON(w, http.StatusOK, sessionPayload{
		Success:   true,
		SessionID: session.ID,
		UserID:    user.ID,
		Expires:   session.Expires,
		UserData:  h.userService.SafeData(user),
	})
}

// ownsCookie reports whether the request's own cookie carries sid, so API
// calls about other sessions leave the caller's cookie alone.
func (h *AuthHandler) ownsCookie(r *http.Request, sid string) bool {
	current, err := h.authService.SessionID(r)
	return err == nil && current == sid
}
