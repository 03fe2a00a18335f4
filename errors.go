package gotdoc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaxTokens is returned when a chunk token ceiling is not positive.
	ErrInvalidMaxTokens = errors.New("max tokens per chunk must be positive")

	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// DocumentError indicates a document could not be read, parsed or written.
type DocumentError struct {
	Path    string // File the operation was working on, if any
	Format  string // Document format name ("docx", "txt", "html")
	Message string
	Cause   error
}

func (e *DocumentError) Error() string {
	prefix := "document error"
	if e.Format != "" {
		prefix = fmt.Sprintf("document error (%s)", e.Format)
	}
	if e.Path != "" {
		prefix += " " + e.Path
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates missing or invalid configuration.
type ConfigError struct {
	Key     string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg += " (" + e.Key + ")"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the AI returned a different number of paragraphs than expected.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("paragraph count mismatch: expected %d, got %d", e.Expected, e.Got)
}
