package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a production logger for production environments and a
// development logger everywhere else.
func New(env string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}
