package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"plural-chat/internal/models"
	"plural-chat/internal/storage"
	"plural-chat/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// CredentialStore is where the bearer token lives between runs. The
// gateway writes it on successful login and reads it on every request;
// the absence of a credential is not an error here, some endpoints are
// public.
type CredentialStore interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Client is the typed request/response boundary to the chat service.
// Every failure it returns is a *Error carrying a category derived from
// the HTTP status, or the unreachable category when the request never
// reached the server.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialStore
}

func NewClient(baseURL string, credentials CredentialStore) *Client {
	return NewClientWithTimeout(baseURL, credentials, defaultTimeout)
}

func NewClientWithTimeout(baseURL string, credentials CredentialStore, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
	}
}

// Token returns the stored bearer credential, or "" when logged out.
func (c *Client) Token() string {
	if c.credentials == nil {
		return ""
	}
	data, err := c.credentials.Get(storage.KeyToken)
	if err != nil {
		logger.Error("Failed to read stored credential: %v", err)
		return ""
	}
	return string(data)
}

func (c *Client) storeToken(token string) {
	if c.credentials == nil || token == "" {
		return
	}
	if err := c.credentials.Put(storage.KeyToken, []byte(token)); err != nil {
		logger.Error("Failed to store credential: %v", err)
	}
}

// ClearToken drops the stored credential, e.g. on logout or when the
// server rejects it as expired.
func (c *Client) ClearToken() {
	if c.credentials == nil {
		return
	}
	if err := c.credentials.Delete(storage.KeyToken); err != nil {
		logger.Error("Failed to clear credential: %v", err)
	}
}

// do runs one JSON round trip. body and out may be nil; out is only
// decoded on 2xx responses.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return normalize(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// download streams a non-JSON response body (file exports) to w.
func (c *Client) download(ctx context.Context, path string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return normalize(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

// upload sends a single file as a multipart form.
func (c *Client) upload(ctx context.Context, path, field, filename string, content io.Reader, out interface{}) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &b)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return normalize(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Health checks the service without authentication.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// OnlineUsers returns the minimal profiles of currently connected users.
func (c *Client) OnlineUsers(ctx context.Context) ([]models.OnlineUser, error) {
	var users []models.OnlineUser
	if err := c.do(ctx, http.MethodGet, "/users/online", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
