package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"plural-chat/internal/models"
)

func (c *Client) Members(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := c.do(ctx, http.MethodGet, "/members/", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) Member(ctx context.Context, id int) (*models.Member, error) {
	var member models.Member
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%d", id), nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	var member models.Member
	if err := c.do(ctx, http.MethodPost, "/members/", req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) UpdateMember(ctx context.Context, id int, req *models.UpdateMemberRequest) (*models.Member, error) {
	var member models.Member
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/members/%d", id), req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) DeleteMember(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/members/%d", id), nil, nil)
}

func (c *Client) UploadMemberAvatar(ctx context.Context, id int, filename string, content io.Reader) (*models.Member, error) {
	var member models.Member
	path := fmt.Sprintf("/members/%d/avatar", id)
	if err := c.upload(ctx, path, "file", filename, content, &member); err != nil {
		return nil, err
	}
	return &member, nil
}
