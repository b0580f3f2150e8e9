// Package clients builds the HTTP clients used to talk to the platforms.
package clients

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetryMax  = 2
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Options configures a platform client.
type Options struct {
	Timeout   time.Duration
	RetryMax  int
	Cookie    string // session cookie header value
	UserAgent string
	Logger    *slog.Logger
}

// Client sends requests with the user's session and retries transient
// failures (connection errors, 429, 5xx). Auth failures are returned to the
// caller untouched.
type Client struct {
	http      *retryablehttp.Client
	cookie    string
	userAgent string
}

// New creates a client. Zero options fall back to the defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	// Hand the final response back so callers can inspect the status code.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}

	return &Client{
		http:      rc,
		cookie:    opts.Cookie,
		userAgent: opts.UserAgent,
	}
}

// Do sends req with the session headers attached.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	rreq.Header.Set("Accept", "application/json")
	rreq.Header.Set("User-Agent", c.userAgent)
	if c.cookie != "" {
		rreq.Header.Set("Cookie", c.cookie)
	}
	return c.http.Do(rreq)
}
