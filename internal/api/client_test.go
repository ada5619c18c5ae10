package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plural-chat/internal/models"
	"plural-chat/internal/storage"
)

type memCredentials struct {
	data map[string][]byte
}

func newMemCredentials() *memCredentials {
	return &memCredentials{data: make(map[string][]byte)}
}

func (m *memCredentials) Get(key string) ([]byte, error)     { return m.data[key], nil }
func (m *memCredentials) Put(key string, value []byte) error { m.data[key] = value; return nil }
func (m *memCredentials) Delete(key string) error            { delete(m.data, key); return nil }

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pk-secret", req.PKToken)

		json.NewEncoder(w).Encode(models.LoginResponse{
			User:        models.User{ID: 1, Username: "sys"},
			AccessToken: "bearer-token",
		})
	}))
	defer srv.Close()

	creds := newMemCredentials()
	client := NewClient(srv.URL, creds)

	resp, err := client.Login(context.Background(), "pk-secret")
	require.NoError(t, err)
	assert.Equal(t, "sys", resp.User.Username)
	assert.Equal(t, "bearer-token", client.Token())
	assert.Equal(t, []byte("bearer-token"), creds.data[storage.KeyToken])
}

func TestBearerAttachedWhenPresent(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.User{ID: 1, Username: "sys"})
	}))
	defer srv.Close()

	creds := newMemCredentials()
	client := NewClient(srv.URL, creds)

	_, err := client.Verify(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sawAuth)

	creds.Put(storage.KeyToken, []byte("tok"))
	_, err = client.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", sawAuth)
}

func TestLogoutClearsTokenEvenOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	creds := newMemCredentials()
	creds.Put(storage.KeyToken, []byte("tok"))
	client := NewClient(srv.URL, creds)

	err := client.Logout(context.Background())
	require.Error(t, err)
	assert.Empty(t, client.Token())
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		category Category
		message  string
	}{
		{http.StatusUnauthorized, `{"detail":"token expired"}`, CategoryUnauthenticated, "token expired"},
		{http.StatusForbidden, ``, CategoryForbidden, "permission denied"},
		{http.StatusNotFound, `{"detail":"channel not found"}`, CategoryNotFound, "channel not found"},
		{http.StatusConflict, ``, CategoryConflict, "conflict with existing resource"},
		{http.StatusBadGateway, ``, CategoryUnavailable, "service temporarily unavailable"},
		{http.StatusInternalServerError, ``, CategoryServer, "server error"},
		{http.StatusUnprocessableEntity, `not json`, CategoryBadRequest, "request rejected"},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))

		client := NewClient(srv.URL, nil)
		err := client.Health(context.Background())
		srv.Close()

		require.Error(t, err, "status %d", tc.status)
		apiErr, ok := err.(*Error)
		require.True(t, ok)
		assert.Equal(t, tc.category, apiErr.Category, "status %d", tc.status)
		assert.Equal(t, tc.message, apiErr.Message, "status %d", tc.status)
		assert.Equal(t, tc.status, apiErr.Status)
		assert.True(t, IsCategory(err, tc.category))
	}
}

func TestUnreachableCategory(t *testing.T) {
	// Closed server: the request never gets an HTTP status.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.Health(context.Background())

	require.Error(t, err)
	assert.True(t, IsCategory(err, CategoryUnreachable))
	apiErr := err.(*Error)
	assert.Equal(t, 0, apiErr.Status)
}

func TestMessagesQueryParameters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]models.Message{{ID: 1, Content: "hi"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	channel := 3
	messages, err := client.Messages(context.Background(), 25, &channel)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Contains(t, gotQuery, "limit=25")
	assert.Contains(t, gotQuery, "channel_id=3")
}

func TestCreateMessageReturnsPersistedEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/", r.URL.Path)

		var req models.CreateMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		memberID := 0
		if req.MemberID != nil {
			memberID = *req.MemberID
		}
		json.NewEncoder(w).Encode(models.Message{
			ID:       42,
			Content:  req.Content,
			MemberID: &memberID,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	member := 5
	msg, err := client.CreateMessage(context.Background(), &models.CreateMessageRequest{
		Content:  "hello",
		MemberID: &member,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, msg.ID)
	assert.Equal(t, "hello", msg.Content)
	require.NotNil(t, msg.MemberID)
	assert.Equal(t, 5, *msg.MemberID)
}

func TestExportMessagesStreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/export/csv", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "start_date=2024-01-01")
		w.Write([]byte("Timestamp,Author\n"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	var buf []byte
	w := writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	})
	err := client.ExportMessages(context.Background(), ExportCSV, "2024-01-01", "", w)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Author\n", string(buf))
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
