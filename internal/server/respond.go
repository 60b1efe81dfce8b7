package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fd1az/slippage-sentinel/internal/apperror"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an apperror response. Non-app errors become INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}
	WriteJSON(w, appErr.StatusCode, appErr.ToResponse())
}
