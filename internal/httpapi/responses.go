package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"skilltalk/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDomainError maps domain sentinels to the documented statuses.
// Conflicts (duplicate handle, duplicate follow request) and bad login
// credentials surface as 400, matching the original API's behavior.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		msg := "invalid request"
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			msg = ve.Error()
		}
		WriteError(w, http.StatusBadRequest, "validation_error", msg)
	case errors.Is(err, domain.ErrHandleTaken):
		WriteError(w, http.StatusBadRequest, "handle_taken", "handle already taken")
	case errors.Is(err, domain.ErrFollowRequestExists):
		WriteError(w, http.StatusBadRequest, "follow_request_exists", "follow request already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusBadRequest, "invalid_credentials", "invalid handle or password")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
