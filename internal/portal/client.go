// Package portal is the typed client for the remote campaign-portal REST
// API. It owns request construction, bearer authorization, and error
// normalization; it holds no campaign state of its own.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/adpanel/internal/platform/timeouts"
)

// DefaultBaseURL is the local-development portal endpoint used when no base
// URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// TokenSource supplies the current bearer access token, or the empty string
// when no session is active. The session gate owns the token lifecycle; the
// client only reads it.
type TokenSource interface {
	AccessToken() string
}

// Config defines the inputs for a portal client.
type Config struct {
	// BaseURL is the portal API root; DefaultBaseURL when empty.
	BaseURL string
	// Tokens supplies bearer tokens for authenticated requests.
	Tokens TokenSource
	// OnAuthFailure runs when the portal rejects a bearer token. It fires
	// once per token: queued requests failing on the same dead token do
	// not re-trigger it.
	OnAuthFailure func()
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client issues authenticated requests against the portal API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthFailure func()

	mu               sync.Mutex
	lastRevokedToken string
}

// NewClient builds a portal client with a fixed request timeout and traced
// transport.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse portal base url: %w", err)
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeouts.PortalRequest,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		tokens:        config.Tokens,
		onAuthFailure: config.OnAuthFailure,
	}, nil
}

type requestOptions struct {
	// skipAuth omits the bearer header and disables the auth-failure hook;
	// used by sign-in and sign-up, which run without a session.
	skipAuth bool
	query    url.Values
}

// do issues one request and decodes a 2xx JSON body into out when out is
// non-nil. Failures are always typed *Error values.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, opts requestOptions) error {
	endpoint := c.baseURL + path
	if len(opts.query) > 0 {
		endpoint += "?" + opts.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := ""
	if !opts.skipAuth && c.tokens != nil {
		token = c.tokens.AccessToken()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindServer, Status: resp.StatusCode, cause: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if !opts.skipAuth {
			c.reportAuthFailure(token)
		}
		return &Error{Kind: KindAuth, Status: resp.StatusCode, Messages: flattenMessages(payload)}
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: resp.StatusCode, Messages: flattenMessages(payload)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Error{Kind: KindValidation, Status: resp.StatusCode, Messages: flattenMessages(payload)}
	default:
		return &Error{Kind: KindServer, Status: resp.StatusCode, Messages: flattenMessages(payload)}
	}
}

// reportAuthFailure invokes the auth-failure hook once per token. In-flight
// requests that were queued behind the same dead token resolve without
// firing the hook again.
func (c *Client) reportAuthFailure(token string) {
	if c.onAuthFailure == nil {
		return
	}
	c.mu.Lock()
	if token != "" && token == c.lastRevokedToken {
		c.mu.Unlock()
		return
	}
	c.lastRevokedToken = token
	c.mu.Unlock()
	c.onAuthFailure()
}

// IsNetworkTimeout reports whether err wraps a request timeout.
func IsNetworkTimeout(err error) bool {
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != KindNetwork {
		return false
	}
	var urlErr *url.Error
	return errors.As(perr.cause, &urlErr) && urlErr.Timeout()
}
