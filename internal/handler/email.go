package handler

import "net/http"

// EmailHandler holds the placeholder endpoints the client calls under /plumbing/email.
type EmailHandler struct{}

func NewEmailHandler() *EmailHandler {
	return &EmailHandler{}
}

func (h *EmailHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "email index"})
}

func (h *EmailHandler) Availability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "availability index"})
}
