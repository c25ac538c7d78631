package api

import (
	"encoding/json"
	"net/http"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/logger"
)

// handleError centralizes error handling for HTTP responses. QuotaExceeded
// carries different guidance than a generic write failure: export then
// prune, rather than retry.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	body := map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	}
	if appErr.Code == errors.ErrCodeQuotaExceeded {
		body["hint"] = "storage is full: export the collection, then delete or recompress artworks"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(body)
}
