package domain

import "errors"

var (
	// ErrAgeGroupNotSelected is returned when a questionnaire is scored without an age group.
	ErrAgeGroupNotSelected = errors.New("Please select an age group first")
	// ErrAgeGroupNotFound indicates the age group is not part of the catalog.
	ErrAgeGroupNotFound = errors.New("age group not found")
	// ErrSubmissionNotFound indicates no submission row exists for the id.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrConcernsRequired is the cause of a ValidationError for empty concerns text.
	ErrConcernsRequired = errors.New("concerns required")
	// ErrMissingAPIKey is the cause of a ConfigurationError when no AI credential is set.
	ErrMissingAPIKey = errors.New("missing API key")
)

// ValidationError reports missing or malformed user input. Callers re-prompt.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing credential or setting. It is never retried.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// UpstreamError wraps a failure of the AI service, the network or the store.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewValidationError wraps err as a ValidationError.
func NewValidationError(err error) error { return &ValidationError{Err: err} }

// NewConfigurationError wraps err as a ConfigurationError.
func NewConfigurationError(err error) error { return &ConfigurationError{Err: err} }

// NewUpstreamError wraps err as an UpstreamError for the named operation.
func NewUpstreamError(op string, err error) error { return &UpstreamError{Op: op, Err: err} }
