package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"plural-chat/internal/models"
)

// Admin console surface. Every call here requires an admin account; the
// server answers 403 otherwise, which normalizes to CategoryForbidden.

type AdminDashboard struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	TotalMessages int `json:"total_messages"`
	TotalMembers  int `json:"total_members"`
	TotalChannels int `json:"total_channels"`
}

type AdminUser struct {
	models.User
	IsAdmin      bool `json:"is_admin"`
	MemberCount  int  `json:"member_count"`
	MessageCount int  `json:"message_count"`
}

type AdminUserUpdate struct {
	Email    *string `json:"email,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
	Disabled *bool   `json:"disabled,omitempty"`
}

type DatabaseStats struct {
	SizeBytes int64          `json:"size_bytes"`
	Tables    map[string]int `json:"tables"`
}

func (c *Client) AdminDashboardStats(ctx context.Context) (*AdminDashboard, error) {
	var dashboard AdminDashboard
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard", nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (c *Client) AdminUsers(ctx context.Context, limit int, search string) ([]AdminUser, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		query.Set("search", search)
	}
	path := "/admin/users"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var users []AdminUser
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AdminUser(ctx context.Context, id int) (*AdminUser, error) {
	var user AdminUser
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, id int, req *AdminUserUpdate) (*AdminUser, error) {
	var user AdminUser
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d", id), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) AdminDeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil)
}

func (c *Client) AdminDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	var stats DatabaseStats
	if err := c.do(ctx, http.MethodGet, "/admin/stats/database", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdminConfig returns the feature settings map the console exposes.
func (c *Client) AdminConfig(ctx context.Context) (map[string]interface{}, error) {
	var cfg map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/admin/config", nil, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
