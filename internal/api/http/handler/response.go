package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/admin-session/internal/model"
)

// MessageResponse is the body of responses that carry only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithJSON writes payload as a JSON body with status.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondWithMessage writes {"message": message} with status.
func RespondWithMessage(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, MessageResponse{Message: message})
}

func respondWithText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// statusFromError maps session errors to HTTP statuses and client messages.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrAuthenticationFailed):
		return http.StatusUnauthorized, model.ErrAuthenticationFailed.Error()
	case errors.Is(err, model.ErrRefreshTokenBlank):
		return http.StatusBadRequest, model.ErrRefreshTokenBlank.Error()
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, model.ErrUnauthorized.Error()
	case errors.Is(err, model.ErrRefreshTokenExpired):
		return http.StatusForbidden, model.ErrRefreshTokenExpired.Error()
	default:
		return http.StatusInternalServerError, "error"
	}
}
