// Package m2m obtains service tokens through the client-credentials flow so
// services can call each other with a machine identity instead of forwarding
// user tokens.
package m2m

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrTokenRequest is the single error surface for any token endpoint
// failure; retry policy is the caller's concern.
var ErrTokenRequest = errors.New("failed to obtain service token")

const (
	// expiryBuffer is subtracted from expires_in so a cached token is
	// refreshed slightly before it actually expires.
	expiryBuffer = 60 * time.Second
	// defaultExpiresIn applies when the provider omits expires_in.
	defaultExpiresIn = 300 * time.Second

	requestTimeout = 10 * time.Second
)

// Client fetches and caches a service token. The cache holds a single slot
// for the configured client; a refresh overwrites it.
type Client struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu     sync.Mutex
	cached string
	expiry time.Time

	group singleflight.Group
}

// NewClient creates a Client for the given token endpoint and credentials.
func NewClient(tokenURL, clientID, clientSecret string) *Client {
	return &Client{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

// Token returns a cached token while it is still valid, otherwise performs a
// client-credentials request. Concurrent callers share one in-flight request.
func (c *Client) Token(ctx context.Context) (string, error) {
	if token, ok := c.cachedToken(); ok {
		return token, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		// A concurrent caller may have refreshed while we waited on the
		// flight group.
		if token, ok := c.cachedToken(); ok {
			return token, nil
		}
		return c.fetch(ctx)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// ClearCache forces the next Token call to re-fetch.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = ""
	c.expiry = time.Time{}
}

// HasValidToken reports cache state without any network access.
func (c *Client) HasValidToken() bool {
	_, ok := c.cachedToken()
	return ok
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != "" && time.Now().Before(c.expiry) {
		return c.cached, true
	}
	return "", false
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: token endpoint returned status %d: %s", ErrTokenRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: invalid JSON from token endpoint: %w", ErrTokenRequest, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint response carried no access_token", ErrTokenRequest)
	}

	expiresIn := defaultExpiresIn
	if token.ExpiresIn > 0 {
		expiresIn = time.Duration(token.ExpiresIn) * time.Second
	}

	c.mu.Lock()
	c.cached = token.AccessToken
	c.expiry = time.Now().Add(expiresIn - expiryBuffer)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Service token obtained", "expires_in", expiresIn.String())

	return token.AccessToken, nil
}
