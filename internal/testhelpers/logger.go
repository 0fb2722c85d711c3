// Package testhelpers provides shared test utilities.
package testhelpers

import (
	"github.com/jonesrussell/content-discovery/internal/logger"
)

// NewTestLogger creates a logger suitable for testing (discards output).
func NewTestLogger() logger.Logger {
	return logger.NewNopLogger()
}
