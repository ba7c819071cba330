// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use JSON formatter for structured logging in production
	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}

// WithCycle returns an entry tagged with the refresh cycle identifier
func WithCycle(logger *logrus.Logger, cycleID string) *logrus.Entry {
	return logger.WithField("cycle_id", cycleID)
}

// WithMatch returns an entry tagged with match identity fields
func WithMatch(logger *logrus.Logger, matchID, home, away string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"match_id":  matchID,
		"home_team": home,
		"away_team": away,
	})
}
