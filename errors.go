package lynx

import (
	"errors"
	"fmt"
	"time"
)

// User-facing messages for classified generation failures.
const (
	MessageAuthorization = "API key authorization failed. Please ensure you selected a valid key for a paid project with available quota and try again."
	MessageEmptyResult   = "No image data returned from the model. It might have been blocked or failed to generate."
	MessageGenericFailed = "Failed to generate image."
	MessageUnknown       = "Something went wrong during generation."
)

// ErrorKind classifies a generation failure.
type ErrorKind int

const (
	// KindService is any transport or service failure not classified below.
	KindService ErrorKind = iota

	// KindAuthorization covers forbidden/not-found responses and failed key selection.
	KindAuthorization

	// KindEmptyResult means the call succeeded but produced no artifacts.
	KindEmptyResult

	// KindRateLimited means the client-side budget for the tier is exhausted.
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindEmptyResult:
		return "empty_result"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "service"
	}
}

// GenerationError is returned by generators for every failed request.
// Message is safe to show to the user as is.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error // Underlying error from the provider
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError builds a GenerationError, falling back to the kind's
// default message when msg is empty.
func NewGenerationError(kind ErrorKind, msg string, err error) *GenerationError {
	if msg == "" {
		switch kind {
		case KindAuthorization:
			msg = MessageAuthorization
		case KindEmptyResult:
			msg = MessageEmptyResult
		default:
			msg = MessageGenericFailed
		}
	}
	return &GenerationError{Kind: kind, Message: msg, Err: err}
}

// ErrorKindOf returns the kind of a GenerationError in err's chain, or
// KindService when there is none.
func ErrorKindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	if IsRateLimitError(err) {
		return KindRateLimited
	}
	return KindService
}

// RateLimitError is returned when a tier's client-side budget is exhausted.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter.Round(time.Second))
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

var (
	// ErrStorageNotConfigured is returned when storage operations are attempted
	// without a configured storage backend.
	ErrStorageNotConfigured = errors.New("storage not configured")

	// ErrKeySelection is returned when the key-selection flow fails or is cancelled.
	ErrKeySelection = errors.New("api key selection failed")

	// ErrInvalidDataURI is returned for URLs that are not base64 data URIs.
	ErrInvalidDataURI = errors.New("invalid data uri")

	// ErrInvalidImageID is returned for ids that cannot name an exported file.
	ErrInvalidImageID = errors.New("invalid image id")

	// ErrImageNotFound is returned when a history record does not exist.
	ErrImageNotFound = errors.New("image not found")
)
