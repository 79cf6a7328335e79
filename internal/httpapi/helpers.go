package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"little-toeic/internal/problems"
	"little-toeic/internal/session"
)

func writeSourceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, problems.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "problem not found"})
	case errors.Is(err, problems.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, problems.ErrServiceUnavailable):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "problem service unavailable"})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to load problem"})
	}
}

func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoSelection), errors.Is(err, session.ErrUnknownChoice):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrAlreadyAnswered):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save answer"})
	}
}

func parseBoolParam(r *http.Request, key string) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return value == "1" || value == "true" || value == "yes"
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
