package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"plural-chat/internal/models"
)

// ExportFormat selects the shape of a message history download.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportText ExportFormat = "txt"
)

// Messages lists recent messages in chronological order, optionally
// scoped to one channel. limit is capped server-side.
func (c *Client) Messages(ctx context.Context, limit int, channelID *int) ([]models.Message, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if channelID != nil {
		query.Set("channel_id", strconv.Itoa(*channelID))
	}
	path := "/messages/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateMessage is the authoritative send path: unlike the realtime
// emission it returns the persisted message with its server-assigned id,
// which the caller applies to the store; the echoed realtime event then
// merges into a no-op.
func (c *Client) CreateMessage(ctx context.Context, req *models.CreateMessageRequest) (*models.Message, error) {
	var message models.Message
	if err := c.do(ctx, http.MethodPost, "/messages/", req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (c *Client) DeleteMessage(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d", id), nil, nil)
}

// ExportMessages streams a server-rendered export to w. startDate and
// endDate are optional YYYY-MM-DD bounds.
func (c *Client) ExportMessages(ctx context.Context, format ExportFormat, startDate, endDate string, w io.Writer) error {
	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}
	path := fmt.Sprintf("/messages/export/%s", format)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.download(ctx, path, w)
}
