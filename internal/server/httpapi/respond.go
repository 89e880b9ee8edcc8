package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dklimov/taskvault/internal/common"
)

// errorResponse is the uniform error body: {"detail": "..."}.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps service sentinels onto the wire contract. Expired and
// malformed tokens both land on the same 401 body so the failure reason
// cannot be probed from outside. Anything unmatched is an infrastructure
// failure and surfaces as 500, never as a domain error.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: "Email already registered"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid authentication credentials"})
	case errors.Is(err, common.ErrorForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: "You don't have permission to access this task"})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Task not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
	}
}
