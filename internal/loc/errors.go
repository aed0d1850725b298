package loc

import "fmt"

// BuildError reports parameters that cannot form a request. No request was sent.
type BuildError struct {
	Endpoint string
	Reason   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s request: %s", e.Endpoint, e.Reason)
}

// TransportError reports a failed round trip or a non-2xx response.
// StatusCode is zero when no response arrived.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that is not the expected JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConfigInvariantError reports a built URL outside the default authority,
// which would make rebasing onto the configured base URL unsafe.
type ConfigInvariantError struct {
	URL string
}

func (e *ConfigInvariantError) Error() string {
	return fmt.Sprintf("url %q does not start with %s", e.URL, DefaultBaseURL)
}
