package wordpress

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed set of failures callers are expected to tell apart.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// No response at all: DNS, TLS, refused connection, or a browser-style CORS block in front.
	KindConnectivity
	// A response arrived, but not a 2xx one.
	KindHTTPStatus
	// The credential was rejected while validating a connection.
	KindAuthentication
	// One stage of an item transfer failed.
	KindStage
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindHTTPStatus:
		return "http-status"
	case KindAuthentication:
		return "authentication"
	case KindStage:
		return "stage"
	default:
		return "unknown"
	}
}

// Kinded is implemented by every error type that belongs to an ErrorKind.
type Kinded interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the outermost kinded error in err's chain.
func KindOf(err error) ErrorKind {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(Kinded); ok {
			return k.Kind()
		}
	}
	return KindUnknown
}

type ConnectivityError struct {
	URL     string
	Proxied bool
	Err     error
}

func (e *ConnectivityError) Error() string {
	if e.Proxied {
		return fmt.Sprintf("wordpress: no response from %s via proxy, check that the proxy URL is correct and running: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("wordpress: no response from %s, the site is down or refusing cross-origin requests (try configuring a proxy): %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error   { return e.Err }
func (e *ConnectivityError) Kind() ErrorKind { return KindConnectivity }

// HTTPStatusError always carries a readable Message: the server's own when it sent one, otherwise
// "HTTP error! status: <code>".
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPStatusError) Error() string   { return e.Message }
func (e *HTTPStatusError) Kind() ErrorKind { return KindHTTPStatus }

// StatusText is the reason phrase, e.g. "Forbidden".
func (e *HTTPStatusError) StatusText() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return e.Status
}

type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("wordpress: authentication failed (HTTP %d), check the username and application password: %s", e.StatusCode, e.Message)
}

func (e *AuthenticationError) Kind() ErrorKind { return KindAuthentication }

type ValidationStep int

const (
	StepRESTRoot ValidationStep = iota
	StepAuthentication
)

func (s ValidationStep) String() string {
	if s == StepAuthentication {
		return "authentication check"
	}
	return "REST API discovery"
}

// ConnectionError is returned by Validate.  The wrapped error says what went wrong; Reason is a
// one-line summary for the person fixing it.
type ConnectionError struct {
	Step   ValidationStep
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("wordpress: %s failed: %s: %v", e.Step, e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
