package providers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a provider failure into one of the three runtime
// categories the fallback chain reasons about.
type ErrorKind int

const (
	// KindRateLimited means the vendor is throttling us. Retrying the same
	// provider within the current request is futile.
	KindRateLimited ErrorKind = iota
	// KindTransient covers timeouts, connection failures and 5xx responses.
	// The same provider may be retried after a backoff.
	KindTransient
	// KindPermanent covers everything else: bad credentials, malformed
	// requests, validation failures. Retrying cannot help.
	KindPermanent
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "RateLimited"
	case KindTransient:
		return "Transient"
	case KindPermanent:
		return "Permanent"
	default:
		return "Unknown"
	}
}

// Error is the tagged failure every provider maps vendor errors into.
type Error struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified provider error from a vendor failure.
// statusCode 0 means the request never produced an HTTP response.
func NewError(provider string, statusCode int, message string, err error) *Error {
	return &Error{
		Provider:   provider,
		Kind:       Classify(statusCode, message),
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// Classify maps a vendor failure onto the taxonomy. It is a pure function
// so classification is testable apart from any network call.
//
// A statusCode of 0 indicates a transport-level failure (timeout, refused
// connection, DNS) and is treated as transient.
func Classify(statusCode int, message string) ErrorKind {
	if statusCode == 429 || strings.Contains(strings.ToLower(message), "rate limit") {
		return KindRateLimited
	}
	if statusCode >= 500 || statusCode == 0 {
		return KindTransient
	}
	return KindPermanent
}

// ConfigError reports a provider that cannot be constructed, typically a
// missing credential. It is not part of the runtime taxonomy: a provider
// failing construction is logged once and omitted from the chain.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// AsError extracts a classified *Error from err, if one is present.
func AsError(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
