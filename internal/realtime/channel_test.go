package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plural-chat/internal/api"
	"plural-chat/internal/models"
	"plural-chat/internal/storage"
	"plural-chat/internal/store"
)

type memCredentials struct {
	data map[string][]byte
}

func (m *memCredentials) Get(key string) ([]byte, error)     { return m.data[key], nil }
func (m *memCredentials) Put(key string, value []byte) error { m.data[key] = value; return nil }
func (m *memCredentials) Delete(key string) error            { delete(m.data, key); return nil }

func credsWithToken() *memCredentials {
	return &memCredentials{data: map[string][]byte{storage.KeyToken: []byte("tok")}}
}

// testServer upgrades one connection and hands it to the test.
type testServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
	auth  chan http.Header
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		conns: make(chan *websocket.Conn, 4),
		auth:  make(chan http.Header, 4),
	}
	upgrader := websocket.Upgrader{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.auth <- r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ts.conns <- conn
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) push(t *testing.T, conn *websocket.Conn, eventType models.EventType, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	env, err := json.Marshal(models.Event{Type: eventType, Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, env))
}

func TestConnectRequiresCredential(t *testing.T) {
	st := store.New(nil)
	client := api.NewClient("http://localhost", &memCredentials{data: map[string][]byte{}})

	c := New("ws://localhost/ws", client, st)
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusIdle, c.Status())
	assert.False(t, st.Connected())
}

func TestConnectSetsStoreFlag(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	assert.Equal(t, StatusConnected, c.Status())
	assert.True(t, st.Connected())

	header := <-ts.auth
	assert.Equal(t, "Bearer tok", header.Get("Authorization"))
	assert.NotEmpty(t, header.Get("X-Instance-Id"))
}

func TestMessageEventsMergeIdempotently(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	conn := <-ts.conns
	ts.push(t, conn, models.EventMessage, models.Message{ID: 1, Content: "hi"})
	// At-least-once delivery: the same event again must not duplicate.
	ts.push(t, conn, models.EventMessage, models.Message{ID: 1, Content: "hi"})
	ts.push(t, conn, models.EventMessage, models.Message{ID: 2, Content: "second"})

	require.Eventually(t, func() bool {
		return len(st.Messages()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	messages := st.Messages()
	assert.Equal(t, 1, messages[0].ID)
	assert.Equal(t, 2, messages[1].ID)
}

func TestChannelDeletedClearsSelection(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	st.SetChannels([]models.Channel{{ID: 3, Name: "general"}})
	require.True(t, st.SelectChannel(3))

	client := api.NewClient(ts.srv.URL, credsWithToken())
	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	conn := <-ts.conns
	ts.push(t, conn, models.EventChannelDeleted, models.ChannelDeletedEvent{ID: 3})

	require.Eventually(t, func() bool {
		return st.SelectedChannel() == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, st.Channels())
}

func TestMemberUpdateNeverInserts(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	st.SetMembers([]models.Member{{ID: 1, Name: "Alice"}})

	client := api.NewClient(ts.srv.URL, credsWithToken())
	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	conn := <-ts.conns
	ts.push(t, conn, models.EventMemberUpdate, models.Member{ID: 1, Name: "Alicia"})
	ts.push(t, conn, models.EventMemberUpdate, models.Member{ID: 99, Name: "Ghost"})

	require.Eventually(t, func() bool {
		members := st.Members()
		return len(members) == 1 && members[0].Name == "Alicia"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMalformedEventDiscarded(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	conn := <-ts.conns
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{garbage")))
	ts.push(t, conn, models.EventMessage, models.Message{ID: 1})

	// The good event after the bad one still lands: the pump survived.
	require.Eventually(t, func() bool {
		return len(st.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServerDropFlipsConnectedFlag(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))

	conn := <-ts.conns
	conn.Close()

	require.Eventually(t, func() bool {
		return !st.Connected() && c.Status() == StatusDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	// A dropped channel may be dialed again.
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()
	require.Eventually(t, func() bool { return st.Connected() }, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectedChannelStaysLive(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))

	// Drop the first connection server-side and dial again.
	first := <-ts.conns
	first.Close()
	require.Eventually(t, func() bool {
		return c.Status() == StatusDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()
	second := <-ts.conns

	// Events on the replacement connection land, and the dead pump's
	// teardown has not flipped the flag back or killed the new socket.
	ts.push(t, second, models.EventMessage, models.Message{ID: 1})
	require.Eventually(t, func() bool {
		return len(st.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, st.Connected())
	assert.Equal(t, StatusConnected, c.Status())

	member := 5
	require.NoError(t, c.SendMessage("still here", &member, nil))
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.SendMessageEvent
	require.NoError(t, second.ReadJSON(&event))
	assert.Equal(t, "still here", event.Content)
}

func TestCloseIsFinal(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	<-ts.conns

	c.Close()
	assert.Equal(t, StatusClosed, c.Status())
	assert.False(t, st.Connected())

	err := c.Connect(context.Background())
	assert.Error(t, err)
}

func TestSendMessageRequiresConnection(t *testing.T) {
	st := store.New(nil)
	client := api.NewClient("http://localhost", credsWithToken())

	c := New("ws://localhost/ws", client, st)
	err := c.SendMessage("hello", nil, nil)
	assert.Error(t, err)
}

func TestSendMessageEmitsEvent(t *testing.T) {
	ts := newTestServer(t)
	st := store.New(nil)
	client := api.NewClient(ts.srv.URL, credsWithToken())

	c := New(ts.wsURL(), client, st)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	conn := <-ts.conns
	member := 5
	require.NoError(t, c.SendMessage("hello", &member, nil))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.SendMessageEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "send_message", event.Type)
	assert.Equal(t, "hello", event.Content)
	require.NotNil(t, event.MemberID)
	assert.Equal(t, 5, *event.MemberID)
	assert.Nil(t, event.ChannelID)
}
