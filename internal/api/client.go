// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bot360/bot360-tui/internal/session"
)

// =============================================================================
// SHARED HTTP CLIENTS
// =============================================================================

// PERFORMANCE: Shared transports reuse connections across all requests.
// Two clients exist because streaming chat responses must never be killed
// by a whole-request timeout; a stalled stream is resolved by the caller's
// context, not the transport.
var (
	sharedTransport = &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	sharedClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: sharedTransport,
	}

	sharedStreamingClient = &http.Client{
		Transport: sharedTransport,
	}
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrNotAuthenticated indicates no usable access token exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates the refresh flow failed and both
	// tokens were cleared; the user must log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrAuthFailed indicates a login or registration rejection.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrEmptyMessage indicates a chat send with no content; rejected
	// before any network call.
	ErrEmptyMessage = errors.New("message is empty")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// =============================================================================
// CLIENT
// =============================================================================

// ChatMessage is one entry of the message-array request shape shared by
// the streaming chat and preview endpoints.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the bot360 backend. Safe for concurrent use.
type Client struct {
	baseURL   string
	tokens    *session.Store
	client    *http.Client
	streaming *http.Client
	verbose   bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the non-streaming HTTP client. Tests use this
// together with httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithStreamingClient replaces the streaming HTTP client.
func WithStreamingClient(hc *http.Client) Option {
	return func(c *Client) { c.streaming = hc }
}

// WithVerbose enables request logging to stderr. Bodies and tokens are
// never logged.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// New creates a client for the given base URL. Tokens are read from and
// written to the supplied store; only the auth flows in this package write
// to it.
func New(baseURL string, tokens *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    tokens,
		client:    sharedClient,
		streaming: sharedStreamingClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// newJSONRequest builds a request with a JSON body and common headers.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) logRequest(method, path string, status int) {
	if c.verbose {
		log.Printf("api: %s %s -> %d", method, path, status)
	}
}

// decodeJSON reads and closes the body, decoding into out when non-nil.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorFromResponse drains a failed response into an APIError. The body is
// only ever logged via the error message path, never shown raw to users.
func errorFromResponse(resp *http.Response) error {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := ""
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			msg = payload.Error
		} else if payload.Detail != "" {
			msg = payload.Detail
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// =============================================================================
// PROTECTED REQUESTS (AUTH-RETRY WRAPPER)
// =============================================================================

// buildFunc constructs a protected request from scratch. The wrapper calls
// it again on replay so the full payload is rebuilt, not just re-sent:
// for the chat path, payload construction and stream handling are one
// operation and must be redone together.
type buildFunc func(ctx context.Context) (*http.Request, error)

// doProtected issues a bearer-authenticated request, transparently
// refreshing the access token and replaying the request exactly once on a
// 401. On refresh failure both tokens are cleared and ErrSessionExpired is
// returned; there is never a second retry.
//
// The caller owns the response body on success.
func (c *Client) doProtected(ctx context.Context, hc *http.Client, build buildFunc) (*http.Response, error) {
	resp, err := c.sendWithToken(ctx, hc, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	// Single replay with the refreshed token.
	resp, err = c.sendWithToken(ctx, hc, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.tokens.Clear()
		return nil, ErrSessionExpired
	}
	return resp, nil
}

func (c *Client) sendWithToken(ctx context.Context, hc *http.Client, build buildFunc) (*http.Response, error) {
	toks, err := c.tokens.Tokens()
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+toks.Access)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.logRequest(req.Method, req.URL.Path, resp.StatusCode)
	return resp, nil
}

// getJSON / postJSON / putJSON / deleteJSON are the protected CRUD
// helpers used by the assistant, knowledge-base, and test-suite resources.

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	return c.roundTrip(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) putJSON(ctx context.Context, path string, payload, out any) error {
	return c.roundTrip(ctx, http.MethodPut, path, payload, out)
}

func (c *Client) deleteJSON(ctx context.Context, path string) error {
	return c.roundTrip(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.doProtected(ctx, c.client, func(ctx context.Context) (*http.Request, error) {
		return c.newJSONRequest(ctx, method, path, payload)
	})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	return decodeJSON(resp, out)
}
