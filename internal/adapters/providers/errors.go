package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrAuthRequired means the platform rejected the session (401/403).
	ErrAuthRequired = errors.New("authentication required")

	// ErrMalformedPayload means the response body was not valid JSON.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownPlatform is returned for a platform name with no adapter.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// HTTPError is a non-2xx response other than an auth rejection.
type HTTPError struct {
	Platform   string
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d from %s", e.Platform, e.StatusCode, e.URL)
}

// AuthError wraps ErrAuthRequired with the user-facing login hint.
func AuthError(displayName string) error {
	return fmt.Errorf("please log in to %s first: %w", displayName, ErrAuthRequired)
}

// Doer sends HTTP requests. *clients.Client and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GetJSON issues a GET and decodes the JSON body into out, mapping failures
// onto the adapter error kinds.
func GetJSON(client Doer, req *http.Request, platform Platform, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", platform.DisplayName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return AuthError(platform.DisplayName)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &HTTPError{Platform: platform.DisplayName, StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", platform.DisplayName, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", platform.DisplayName, ErrMalformedPayload, err)
	}
	return nil
}
