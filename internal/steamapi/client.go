package steamapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"workshopdl/internal/logging"
)

// DefaultBaseURL is the public Steam Web API host.
const DefaultBaseURL = "https://api.steampowered.com"

const (
	collectionDetailsPath = "/ISteamRemoteStorage/GetCollectionDetails/v1/"
	fileDetailsPath       = "/ISteamRemoteStorage/GetPublishedFileDetails/v1/"
	serverInfoPath        = "/ISteamWebAPIUtil/GetServerInfo/v1/"
	userAgent             = "workshopdl"
)

// Client resolves collections and item metadata against the Steam Web API.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger
}

type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	retries    int
	retryWait  time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithBaseURL points the client at a different API host (tests, mirrors).
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			o.baseURL = trimmed
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetries sets how many times a request is retried after a transport
// error or a 5xx response.
func WithRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.retries = retries
		}
	}
}

// WithRetryWait sets the initial wait between transport retries.
func WithRetryWait(wait time.Duration) Option {
	return func(o *clientOptions) {
		if wait > 0 {
			o.retryWait = wait
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a Steam Web API client.
func New(opts ...Option) *Client {
	options := clientOptions{
		baseURL:   DefaultBaseURL,
		timeout:   30 * time.Second,
		retries:   2,
		retryWait: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	var rc *resty.Client
	if options.httpClient != nil {
		rc = resty.NewWithClient(options.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(options.baseURL).
		SetTimeout(options.timeout).
		SetRetryCount(options.retries).
		SetRetryWaitTime(options.retryWait).
		SetRetryMaxWaitTime(10*options.retryWait).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:    rc,
		baseURL: options.baseURL,
		logger:  logging.NewComponentLogger(options.logger, "steamapi"),
	}
}

// BaseURL reports the API host the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postForm sends a form-encoded POST and decodes a JSON body into result.
func (c *Client) postForm(ctx context.Context, path string, form map[string]string, result any) (*resty.Response, error) {
	started := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		ForceContentType("application/json").
		Post(path)
	c.logRequest(ctx, path, resp, started, err)
	return resp, err
}

func (c *Client) logRequest(ctx context.Context, path string, resp *resty.Response, started time.Time, err error) {
	logger := logging.WithContext(ctx, c.logger)
	attrs := []logging.Attr{
		logging.String("endpoint", path),
		logging.Duration("elapsed", time.Since(started)),
	}
	if resp != nil {
		attrs = append(attrs, logging.Int("status", resp.StatusCode()))
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logger.Debug("steam api request", logging.Args(attrs...)...)
}
