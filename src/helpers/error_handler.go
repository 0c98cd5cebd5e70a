package helpers

import (
	"fmt"
	"time"

	"tycoon-market/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TycoonError struct {
	Message string
	Cause   error
}

func (e *TycoonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TycoonError) Unwrap() error {
	return e.Cause
}

// Distinct error categories for type assertions where callers care.
// Configuration faults abort startup; transport faults are recovered locally
// and never interrupt the tick loop; storage faults are logged and skipped by
// the recorder.
type ConfigurationError struct{ TycoonError }
type TransportError struct{ TycoonError }
type StorageError struct{ TycoonError }

func NewConfigurationError(msg string, cause error) *ConfigurationError {
	return &ConfigurationError{TycoonError{Message: msg, Cause: cause}}
}

func NewTransportError(msg string, cause error) *TransportError {
	return &TransportError{TycoonError{Message: msg, Cause: cause}}
}

func NewStorageError(msg string, cause error) *StorageError {
	return &StorageError{TycoonError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts fn up to maxRetries times with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, lastErr, delay)
		time.Sleep(delay)
	}

	return &TycoonError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}
