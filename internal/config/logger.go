package config

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

type contextKey string

const cycleIDKey contextKey = "cycle_id"

// InitLogger configures the global logrus logger. Unknown levels fall back
// to info rather than failing startup.
func InitLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
		logrus.WithField("level", level).Warn("Unknown log level, using info")
	}
	logrus.SetLevel(parsed)
}

// WithCycleID returns a context carrying the sync cycle identifier so that
// every log line of a cycle can be correlated.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIDKey, id)
}

// WithContext returns a logger enriched with request/cycle-scoped fields.
func WithContext(ctx context.Context) logrus.FieldLogger {
	log := logrus.StandardLogger()
	if id, ok := ctx.Value(cycleIDKey).(string); ok && id != "" {
		return log.WithField("cycle_id", id)
	}
	return log
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}
