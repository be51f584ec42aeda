package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps usecase error kinds to status codes. Anything
// unclassified is a 500 with a generic message; the cause only goes to the log.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var appErr *usecase.Error
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		var fields map[string]string
		if appErr != nil {
			fields = appErr.Fields
		}
		utils.ResponseBadRequest(w, message, fields)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, message)

	case errors.Is(err, usecase.ErrGone):
		log.Warn(operation+" failed - gone", zap.Error(err))
		utils.ResponseGone(w, message)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, message)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, message)

	case errors.Is(err, usecase.ErrInvalidState):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseUnprocessable(w, message)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON reads a request body. strict rejects fields the target does not declare.
func decodeJSON(r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
