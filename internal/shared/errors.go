package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrInvalidPreset = fmt.Errorf("invalid search preset")

	// Search and service errors
	ErrNetwork            = fmt.Errorf("network request failed")
	ErrDecoding           = fmt.Errorf("malformed response payload")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Persistence errors
	ErrPersistence   = fmt.Errorf("persistence failed")
	ErrLikeNotFound  = fmt.Errorf("liked track not found")
	ErrSettingAbsent = fmt.Errorf("setting not found")

	// Playback errors
	ErrPlayback = fmt.Errorf("playback failed")
	ErrNoSource = fmt.Errorf("no audio source")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// ErrorKind is the user-facing classification of a failed search.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindDecoding
)

// String returns the short name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecoding:
		return "decoding"
	default:
		return "unknown"
	}
}

// Message returns the single user-facing message for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindNetwork:
		return "Network error. Please try again."
	case KindDecoding:
		return "The response could not be processed."
	default:
		return "Unknown error."
	}
}

// Classify maps an error returned by a search call onto an [ErrorKind].
//
// Timeouts and cancellations count as network failures.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		netErr    net.Error
		urlErr    *url.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindNetwork
	case errors.Is(err, ErrDecoding), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return KindDecoding
	case errors.Is(err, ErrNetwork),
		errors.As(err, &netErr),
		errors.As(err, &urlErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}
