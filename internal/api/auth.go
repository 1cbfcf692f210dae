// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
)

// =============================================================================
// AUTHENTICATION FLOWS
// =============================================================================
// These are the only writers of the token store besides doProtected's
// session teardown.

// Login exchanges credentials for a token pair and persists it.
// Any non-2xx status is an authentication failure.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/token/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	c.logRequest(http.MethodPost, "/token/", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return ErrAuthFailed
	}

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := decodeJSON(resp, &pair); err != nil {
		return err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return ErrAuthFailed
	}
	return c.tokens.SetPair(pair.Access, pair.Refresh)
}

// Register creates an account. The backend reports rejections as a 2xx
// with an error field, so both paths are checked.
func (c *Client) Register(ctx context.Context, username, password string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/register/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("registration request failed: %w", err)
	}
	c.logRequest(http.MethodPost, "/register/", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	var result struct {
		Error string `json:"error"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return err
	}
	if result.Error != "" {
		return fmt.Errorf("%w: %s", ErrAuthFailed, result.Error)
	}
	return nil
}

// Logout clears the stored token pair.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// refresh mints a new access token from the stored refresh token, exactly
// once per 401. A missing refresh token, a transport failure, or a
// non-2xx response all clear the session.
func (c *Client) refresh(ctx context.Context) error {
	toks, err := c.tokens.Tokens()
	if err != nil || toks.Refresh == "" {
		c.tokens.Clear()
		return ErrSessionExpired
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/token/refresh/", map[string]string{
		"refresh": toks.Refresh,
	})
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.tokens.Clear()
		return ErrSessionExpired
	}
	c.logRequest(http.MethodPost, "/token/refresh/", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		c.tokens.Clear()
		return ErrSessionExpired
	}

	var result struct {
		Access string `json:"access"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		c.tokens.Clear()
		return ErrSessionExpired
	}
	if result.Access == "" {
		c.tokens.Clear()
		return ErrSessionExpired
	}
	return c.tokens.SetAccess(result.Access)
}
