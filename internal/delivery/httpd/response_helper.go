package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coursedeck/submission-service/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeBool mirrors the portal's polling contract: a bare JSON boolean body.
func writeBool(w http.ResponseWriter, value bool) {
	writeJSON(w, http.StatusOK, value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrAdminNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDeadlinePassed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMalformedRoster),
		errors.Is(err, service.ErrMalformedCourseCSV):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Internal service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// redirectBack sends the browser to the referring page when there is one, or
// to the fallback path. Used by the form-post endpoints.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.Referer()
	if target == "" {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
