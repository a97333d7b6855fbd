package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/messagely/apiserver/internal/apperr"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func usernameFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	if !ok || strings.TrimSpace(subject) == "" {
		return "", errors.New("missing subject")
	}
	return subject, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeAppError translates a tagged application error to its HTTP
// status. Untagged errors are reported as 500 with the fallback
// message so infrastructure details never leak to clients.
func writeAppError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		writeError(w, http.StatusInternalServerError, fallback)
		return
	}

	switch appErr.Kind {
	case apperr.KindInvalidInput:
		writeError(w, http.StatusBadRequest, appErr.Message)
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, appErr.Message)
	case apperr.KindConflict:
		writeError(w, http.StatusConflict, appErr.Message)
	case apperr.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, appErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
