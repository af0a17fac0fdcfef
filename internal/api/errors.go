package api

import (
	"errors"
	"fmt"
)

// ErrTransport matches every TransportError via errors.Is.
var ErrTransport = errors.New("transport error")

// TransportError reports a failed backend call. Status is the HTTP status, or
// 0 when no response was received. Detail is the decoded JSON error body, or
// nil when the body was empty or not JSON.
type TransportError struct {
	Status int
	Detail any
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("API request failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("API error %d: %v", e.Status, e.Err)
	case e.Detail != nil:
		return fmt.Sprintf("API error %d: %v", e.Status, e.Detail)
	default:
		return fmt.Sprintf("API error %d", e.Status)
	}
}

// Is lets errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNetworkFault reports whether err is a transport failure without any HTTP response.
func IsNetworkFault(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Status == 0
}
