package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"plural-chat/internal/models"
)

// RegisterAccount creates a username/password account. Registration does
// not log in; call LoginWithPassword afterwards.
func (c *Client) RegisterAccount(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/security/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginWithPassword authenticates with username/password and an optional
// second factor. When the response carries a token it is stored; when
// Requires2FA is set the caller should retry with a TOTP or backup code.
func (c *Client) LoginWithPassword(ctx context.Context, req *models.SecurityLoginRequest) (*models.SecurityLoginResponse, error) {
	var resp models.SecurityLoginResponse
	if err := c.do(ctx, http.MethodPost, "/security/login", req, &resp); err != nil {
		return nil, err
	}
	c.storeToken(resp.AccessToken)
	return &resp, nil
}

// Setup2FA generates a secret, QR code and backup codes. 2FA is not
// active until Enable2FA confirms a code.
func (c *Client) Setup2FA(ctx context.Context) (*models.TOTPSetupResponse, error) {
	var resp models.TOTPSetupResponse
	if err := c.do(ctx, http.MethodPost, "/security/2fa/setup", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Enable2FA(ctx context.Context, code string) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	req := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/security/2fa/enable", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Disable2FA accepts either the account password or a current TOTP code.
func (c *Client) Disable2FA(ctx context.Context, password, totpCode string) (*models.StatusResponse, error) {
	req := map[string]string{}
	if password != "" {
		req["password"] = password
	}
	if totpCode != "" {
		req["totp_code"] = totpCode
	}
	var resp models.StatusResponse
	if err := c.do(ctx, http.MethodPost, "/security/2fa/disable", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TwoFactorStatus(ctx context.Context) (*models.TOTPStatusResponse, error) {
	var resp models.TOTPStatusResponse
	if err := c.do(ctx, http.MethodGet, "/security/2fa/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegenerateBackupCodes invalidates all previous backup codes.
func (c *Client) RegenerateBackupCodes(ctx context.Context, code string) (*models.BackupCodesResponse, error) {
	var resp models.BackupCodesResponse
	req := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/security/2fa/backup-codes/regenerate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AuditLogs queries the account's audit trail. category and the day range
// are optional filters; limit and days are capped server-side.
func (c *Client) AuditLogs(ctx context.Context, limit int, category string, days int) ([]models.AuditLog, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if category != "" {
		query.Set("category", category)
	}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	path := "/security/audit-logs"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var logs []models.AuditLog
	if err := c.do(ctx, http.MethodGet, path, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) (*models.StatusResponse, error) {
	req := models.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     newPassword,
	}
	var resp models.StatusResponse
	if err := c.do(ctx, http.MethodPost, "/security/password/change", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPatch, "/security/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UploadAvatar(ctx context.Context, filename string, content io.Reader) (*models.User, error) {
	var user models.User
	if err := c.upload(ctx, "/security/profile/avatar", "file", filename, content, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
