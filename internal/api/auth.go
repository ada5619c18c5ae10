package api

import (
	"context"
	"net/http"

	"plural-chat/internal/models"
)

// Login exchanges a PluralKit token for a session. The returned bearer
// credential is written to durable storage as a side effect; the caller
// populates the store separately, normally via Verify.
func (c *Client) Login(ctx context.Context, pkToken string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{PKToken: pkToken}
	if err := c.do(ctx, http.MethodPost, "/auth/login", &req, &resp); err != nil {
		return nil, err
	}
	c.storeToken(resp.AccessToken)
	return &resp, nil
}

// Verify validates the stored credential and returns the current profile.
func (c *Client) Verify(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/verify", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the server, then drops the local credential either way;
// a token the server no longer honors is not worth keeping.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.ClearToken()
	return err
}

// SyncPluralKit imports members from the linked PluralKit system.
func (c *Client) SyncPluralKit(ctx context.Context) (*models.SyncResult, error) {
	var result models.SyncResult
	if err := c.do(ctx, http.MethodPost, "/auth/sync-pluralkit", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
