package booking

import (
	"errors"
	"floorkeeper/internal/repository"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error codes returned to clients
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeLocationAmbiguous = "LOCATION_AMBIGUOUS"
	CodeConflict          = "CONFLICT"
	CodeNotFound          = "NOT_FOUND"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeLockTimeout       = "LOCK_TIMEOUT"
)

// Coded is implemented by every error the engine hands back to callers
type Coded interface {
	error
	ErrorCode() string
}

// ValidationError reports a malformed or missing field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string     { return e.Field + ": " + e.Message }
func (e *ValidationError) ErrorCode() string { return CodeValidation }

// Temporal rule sentinels. A TemporalError matches every rule it violates with errors.Is.
var (
	ErrInvalidInstant = errors.New("not a valid instant")
	ErrPastStart      = errors.New("start is in the past")
	ErrWindowOrder    = errors.New("start must be before end")
	ErrDuration       = errors.New("duration out of range")
)

// Violation is one broken temporal rule attributed to a field
type Violation struct {
	Field   string `json:"field"`
	Rule    error  `json:"-"`
	Message string `json:"message"`
}

// TemporalError lists every temporal rule a window breaks
type TemporalError struct {
	Violations []Violation
}

func (e *TemporalError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Field + ": " + v.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *TemporalError) ErrorCode() string { return CodeValidation }

// Field returns the field of the first violation
func (e *TemporalError) Field() string {
	if len(e.Violations) == 0 {
		return ""
	}
	return e.Violations[0].Field
}

func (e *TemporalError) Is(target error) bool {
	for _, v := range e.Violations {
		if v.Rule == target {
			return true
		}
	}
	return false
}

// LocationReason says why a location selection was rejected
type LocationReason string

const (
	// AmbiguousOrMissing means zero or several of mesa_id, zona_id, piso_id were set
	AmbiguousOrMissing LocationReason = "ambiguous_or_missing"
	// Mismatch means the ids, or the discriminator and the ids, disagree
	Mismatch LocationReason = "mismatch"
)

// LocationError reports an unusable location selection
type LocationError struct {
	Reason  LocationReason
	Message string
}

func (e *LocationError) Error() string     { return e.Message }
func (e *LocationError) ErrorCode() string { return CodeLocationAmbiguous }

// ConflictError lists the live entries that collide with a candidate, by start time
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("requested window conflicts with %d existing entries", len(e.Conflicts))
}

func (e *ConflictError) ErrorCode() string { return CodeConflict }

// IllegalTransitionError reports an action not permitted from the entity's state
type IllegalTransitionError struct {
	Entity string
	ID     uuid.UUID
	From   string
	Action string
	// Allowed lists the actions accepted from From; empty for terminal states
	Allowed []string
}

func (e *IllegalTransitionError) Error() string {
	allowed := "none (terminal state)"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("cannot %s %s in state %s; allowed: %s", e.Action, e.Entity, e.From, allowed)
}

func (e *IllegalTransitionError) ErrorCode() string { return CodeIllegalTransition }

// NotFoundError reports an id that references a missing or deleted entity
type NotFoundError struct {
	Entity string
	ID     string
	// Field is set when the id came from a request field
	Field string
}

func (e *NotFoundError) Error() string     { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }
func (e *NotFoundError) ErrorCode() string { return CodeNotFound }
func (e *NotFoundError) Unwrap() error     { return repository.ErrNotFound }

// RetryableError wraps a lock timeout. The client may retry the same request.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string     { return "table scope is busy, retry: " + e.Err.Error() }
func (e *RetryableError) ErrorCode() string { return CodeLockTimeout }
func (e *RetryableError) Unwrap() error     { return e.Err }

// FieldOf returns the request field an engine error should be attributed to
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	var te *TemporalError
	if errors.As(err, &te) {
		return te.Field()
	}
	var le *LocationError
	if errors.As(err, &le) {
		return "ubicacion"
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Field
	}
	return ""
}

// wrapStoreError turns repository lock timeouts into retryable errors
func wrapStoreError(err error) error {
	if errors.Is(err, repository.ErrLockTimeout) {
		return &RetryableError{Err: err}
	}
	return err
}
