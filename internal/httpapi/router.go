package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func NewRouter(api *API, allowedOrigins []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/health", api.HandleHealth).Methods(http.MethodGet)
	s.HandleFunc("/stats", api.HandleStats).Methods(http.MethodGet)
	s.HandleFunc("/stats", api.HandleResetStats).Methods(http.MethodDelete)
	s.HandleFunc("/history", api.HandleHistory).Methods(http.MethodGet)
	s.HandleFunc("/history/{problemId:[0-9]+}/problem", api.HandleHistoryProblem).Methods(http.MethodGet)
	s.HandleFunc("/problems/{key}", api.HandleProblem).Methods(http.MethodGet)
	s.HandleFunc("/answers", api.HandleAnswer).Methods(http.MethodPost)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})

	return c.Handler(requestLogger(logger, defaultMaxLogBytes)(r))
}
