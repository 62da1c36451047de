// Package logger builds the process-wide zap logger.
package logger

import "go.uber.org/zap"

// New returns a production logger, or a human-readable development logger
// when env is "development".
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
