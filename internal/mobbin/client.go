// Package mobbin provides the authenticated API client for the Mobbin
// Supabase backend. The client owns the static API key and the mutable
// session token; every public operation goes through one dispatch routine
// with uniform failure classification.
package mobbin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/appscout/mobbin-proxy/internal/apperrors"
	"github.com/appscout/mobbin-proxy/internal/config"
	"github.com/appscout/mobbin-proxy/pkg/logger"
	"github.com/appscout/mobbin-proxy/pkg/version"
)

// Upstream endpoint paths relative to the Supabase project base URL.
const (
	otpPath    = "/auth/v1/otp"
	verifyPath = "/auth/v1/verify"
	tokenPath  = "/auth/v1/token"
	appsPath   = "/rest/v1/apps"
)

// DefaultPlatform is used when a caller does not filter by platform.
const DefaultPlatform = "ios"

// Client is the authenticated Mobbin API client. One instance is created at
// startup and shared for the process lifetime. Login operations serialize the
// set-token-and-recompute-headers step behind a mutex so a new session is
// atomically visible to subsequent data requests.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu          sync.RWMutex
	accessToken string
	// headers is the derived base header set. It is recomputed whenever the
	// access token changes and never mutated in place.
	headers http.Header
}

// New creates a Mobbin client from the upstream configuration.
// Returns a configuration error when the API key is empty. A pre-existing
// session token, if supplied, primes the derived authorization header so the
// client is usable without a login call.
func New(cfg *config.UpstreamConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.Configuration("Mobbin API key is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
	c.setAccessToken(cfg.SessionToken)

	return c, nil
}

// HasSession reports whether a session token is present. The web layer
// checks this before invoking data operations; the client itself does not.
func (c *Client) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != ""
}

// setAccessToken stores the token and rebuilds the derived header set under
// the write lock, so there is no window where a dispatch sees a stale header.
func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessToken = token

	h := http.Header{}
	h.Set("User-Agent", "mobbin-proxy/"+version.Version)
	h.Set("Accept", "application/json")
	h.Set("apikey", c.apiKey)
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	c.headers = h
}

// requestHeaders returns a copy of the derived header set for data requests.
func (c *Client) requestHeaders() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// authHeaders returns the header set for login requests, which authenticate
// with the API key alone and never carry a bearer token.
func (c *Client) authHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "mobbin-proxy/"+version.Version)
	h.Set("Accept", "application/json")
	h.Set("apikey", c.apiKey)
	return h
}

// otpRequest is the JSON body for the one-time-code issuance endpoint.
type otpRequest struct {
	Email      string `json:"email"`
	CreateUser bool   `json:"create_user"`
}

// verifyRequest is the JSON body for the one-time-code verification endpoint.
type verifyRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// passwordGrant is the JSON body for the password token endpoint.
type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestOneTimeCode asks the upstream to mail a one-time login code to
// email. No token is produced or stored by this step. Each call issues an
// independent upstream request; there is no client-side deduplication.
func (c *Client) RequestOneTimeCode(ctx context.Context, email string) error {
	payload := otpRequest{Email: email, CreateUser: false}

	var ack map[string]any
	if err := c.do(ctx, http.MethodPost, otpPath, nil, c.authHeaders(), payload, &ack); err != nil {
		return apperrors.Authentication("Failed to send one-time code").Wrap(err)
	}
	return nil
}

// VerifyOneTimeCode exchanges an emailed code for a session. On success the
// access token is stored and the derived headers are recomputed before the
// session payload is returned.
func (c *Client) VerifyOneTimeCode(ctx context.Context, email, code string) (*Session, error) {
	payload := verifyRequest{Type: "email", Email: email, Token: code}
	return c.exchange(ctx, verifyPath, nil, payload)
}

// LoginWithPassword exchanges email and password for a session. Only works
// for accounts that have a password set upstream. Storage and result
// semantics are identical to VerifyOneTimeCode.
func (c *Client) LoginWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{}
	query.Set("grant_type", "password")
	return c.exchange(ctx, tokenPath, query, passwordGrant{Email: email, Password: password})
}

// exchange is the shared credential-for-session path behind both login
// variants. A well-formed response without an access token counts as an
// authentication failure, same as a transport or HTTP error.
func (c *Client) exchange(ctx context.Context, path string, query url.Values, payload any) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, query, c.authHeaders(), payload, &session); err != nil {
		return nil, apperrors.Authentication("Login failed").Wrap(err)
	}
	if session.AccessToken == "" {
		return nil, apperrors.Authentication("Login failed").
			WithInternal("upstream session response contained no access token")
	}

	c.setAccessToken(session.AccessToken)
	return &session, nil
}

// SearchApps runs a full-text search over app names, filtered by platform.
// Query tokens are joined with explicit AND semantics so multi-word queries
// must match every token. When the name search comes back empty, one
// fallback pass repeats the query against the company name, since users
// often search by vendor rather than product.
//
// Callers must hold a session; see HasSession.
func (c *Client) SearchApps(ctx context.Context, query, platform string) ([]App, error) {
	if platform == "" {
		platform = DefaultPlatform
	}
	fts := ftsQuery(query)

	apps, err := c.listApps(ctx, url.Values{
		"select":   {"*"},
		"platform": {"eq." + platform},
		"appName":  {"fts." + fts},
	})
	if err != nil || len(apps) > 0 {
		return apps, err
	}

	return c.listApps(ctx, url.Values{
		"select":      {"*"},
		"platform":    {"eq." + platform},
		"companyName": {"fts." + fts},
	})
}

// LatestApps lists the most recently updated apps for a platform, capped at
// limit records.
//
// Callers must hold a session; see HasSession.
func (c *Client) LatestApps(ctx context.Context, limit int, platform string) ([]App, error) {
	if platform == "" {
		platform = DefaultPlatform
	}

	return c.listApps(ctx, url.Values{
		"select":   {"*"},
		"platform": {"eq." + platform},
		"order":    {"updatedAt.desc"},
		"limit":    {strconv.Itoa(limit)},
	})
}

// listApps issues one listing request against the apps data resource.
func (c *Client) listApps(ctx context.Context, query url.Values) ([]App, error) {
	var apps []App
	if err := c.do(ctx, http.MethodGet, appsPath, query, c.requestHeaders(), nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ftsQuery converts a free-form search string into an upstream full-text
// query: whitespace-tokenized, joined with the AND operator. Without this
// the engine's default OR/ranking behavior returns loosely-related matches.
func ftsQuery(query string) string {
	return strings.Join(strings.Fields(query), "&")
}

// do performs one upstream call and classifies the outcome. Non-success
// statuses, transport errors, and malformed JSON all surface as upstream
// errors with the cause attached; the cause is also logged here so public
// operations keep a uniform failure surface.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers http.Header, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return apperrors.Upstream("Upstream request failed").
				WithInternal("failed to marshal request body for %s", path).Wrap(err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return apperrors.Upstream("Upstream request failed").
			WithInternal("failed to build request for %s", path).Wrap(err)
	}
	req.Header = headers
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("mobbin: %s %s: %v", method, path, err)
		return apperrors.Upstream("Upstream service unreachable").Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		logger.Error("mobbin: %s %s: %v", method, path, apiErr)
		return apperrors.Upstream("Upstream request failed").Wrap(apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("mobbin: %s %s: malformed response: %v", method, path, err)
		return apperrors.Upstream("Malformed upstream response").Wrap(err)
	}

	return nil
}
