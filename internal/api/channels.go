package api

import (
	"context"
	"fmt"
	"net/http"

	"plural-chat/internal/models"
)

func (c *Client) Channels(ctx context.Context, includeArchived bool) ([]models.Channel, error) {
	path := "/channels/"
	if includeArchived {
		path += "?include_archived=true"
	}
	var channels []models.Channel
	if err := c.do(ctx, http.MethodGet, path, nil, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (c *Client) Channel(ctx context.Context, id int) (*models.Channel, error) {
	var channel models.Channel
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/channels/%d", id), nil, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c *Client) CreateChannel(ctx context.Context, req *models.CreateChannelRequest) (*models.Channel, error) {
	var channel models.Channel
	if err := c.do(ctx, http.MethodPost, "/channels/", req, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c *Client) UpdateChannel(ctx context.Context, id int, req *models.UpdateChannelRequest) (*models.Channel, error) {
	var channel models.Channel
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%d", id), req, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// DeleteChannel removes a channel. With deleteMessages false the server
// detaches its messages instead of dropping them.
func (c *Client) DeleteChannel(ctx context.Context, id int, deleteMessages bool) error {
	path := fmt.Sprintf("/channels/%d", id)
	if deleteMessages {
		path += "?delete_messages=true"
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ArchiveChannel(ctx context.Context, id int) (*models.Channel, error) {
	var channel models.Channel
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%d/archive", id), nil, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c *Client) UnarchiveChannel(ctx context.Context, id int) (*models.Channel, error) {
	var channel models.Channel
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%d/unarchive", id), nil, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// ReorderChannels assigns positions from the order of ids and returns the
// updated channels.
func (c *Client) ReorderChannels(ctx context.Context, ids []int) ([]models.Channel, error) {
	var channels []models.Channel
	if err := c.do(ctx, http.MethodPost, "/channels/reorder", ids, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}
