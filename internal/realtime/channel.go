package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"plural-chat/internal/api"
	"plural-chat/internal/models"
	"plural-chat/internal/store"
	"plural-chat/pkg/logger"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = 54 * time.Second
)

type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusClosed       Status = "closed"
)

// Channel maintains the one live event subscription per session and
// translates pushed events into store mutations. It carries no retry
// policy of its own: after a drop it sits in Disconnected until the
// caller connects again or closes it for good.
//
// Transport errors are logged, never turned into user-facing errors; the
// UI's only truth for "am I connected" is the store's connection flag.
type Channel struct {
	url        string
	apiClient  *api.Client
	store      *store.Store
	instanceID string

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status

	writeMu sync.Mutex
}

func New(wsURL string, apiClient *api.Client, st *store.Store) *Channel {
	return &Channel{
		url:        wsURL,
		apiClient:  apiClient,
		store:      st,
		instanceID: uuid.NewString(),
		status:     StatusIdle,
	}
}

func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect dials the event stream with the stored bearer credential.
// Without a credential the channel stays Idle.
func (c *Channel) Connect(ctx context.Context) error {
	token := c.apiClient.Token()
	if token == "" {
		return errors.New("no credential, realtime channel stays idle")
	}

	c.mu.Lock()
	if c.status == StatusClosed {
		c.mu.Unlock()
		return errors.New("realtime channel is closed")
	}
	if c.status == StatusConnecting || c.status == StatusConnected {
		c.mu.Unlock()
		return nil
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("X-Instance-Id", c.instanceID)

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		c.transition(StatusDisconnected)
		return fmt.Errorf("failed to connect realtime channel: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.status = StatusConnected
	c.mu.Unlock()
	c.store.SetConnected(true)

	go c.readPump(conn, done)
	go c.pingLoop(conn, done)
	return nil
}

// readPump owns conn and done for the lifetime of one connection. Its
// teardown touches shared state only while this conn is still the
// channel's current one, so a pump outliving a reconnect cannot close the
// replacement's done channel or clobber its status.
func (c *Channel) readPump(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		conn.Close()
		select {
		case <-done:
		default:
			close(done)
		}

		c.mu.Lock()
		owner := c.conn == conn
		c.mu.Unlock()
		if !owner {
			return
		}

		// Flag before status: Connect refuses to dial until the status
		// flip below, so no new connection's SetConnected(true) can land
		// between these two writes.
		c.store.SetConnected(false)

		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			if c.status != StatusClosed {
				c.status = StatusDisconnected
			}
		}
		c.mu.Unlock()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("Realtime channel error: %v", err)
			}
			return
		}
		c.dispatch(data)
	}
}

func (c *Channel) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// dispatch is the single inbound path: one tagged event in, one store
// mutation out. Handlers are idempotent, so a redelivered event is a
// no-op rather than a duplicate.
func (c *Channel) dispatch(data []byte) {
	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		logger.Error("Discarding malformed realtime event: %v", err)
		return
	}

	switch event.Type {
	case models.EventMessage:
		var message models.Message
		if err := json.Unmarshal(event.Data, &message); err != nil {
			logger.Error("Bad message event payload: %v", err)
			return
		}
		c.store.AddMessage(message)

	case models.EventChannelCreated:
		var channel models.Channel
		if err := json.Unmarshal(event.Data, &channel); err != nil {
			logger.Error("Bad channel_created payload: %v", err)
			return
		}
		c.store.AddChannel(channel)

	case models.EventChannelUpdated:
		var channel models.Channel
		if err := json.Unmarshal(event.Data, &channel); err != nil {
			logger.Error("Bad channel_updated payload: %v", err)
			return
		}
		c.store.PatchChannel(channel)

	case models.EventChannelDeleted:
		var deleted models.ChannelDeletedEvent
		if err := json.Unmarshal(event.Data, &deleted); err != nil {
			logger.Error("Bad channel_deleted payload: %v", err)
			return
		}
		c.store.RemoveChannel(deleted.ID)

	case models.EventMemberUpdate:
		var member models.Member
		if err := json.Unmarshal(event.Data, &member); err != nil {
			logger.Error("Bad member_update payload: %v", err)
			return
		}
		c.store.PatchMember(member)

	case models.EventUserOnline:
		var presence models.PresenceEvent
		if err := json.Unmarshal(event.Data, &presence); err != nil {
			logger.Error("Bad user_online payload: %v", err)
			return
		}
		c.handleUserOnline(presence)

	case models.EventUserOffline:
		var presence models.PresenceEvent
		if err := json.Unmarshal(event.Data, &presence); err != nil {
			logger.Error("Bad user_offline payload: %v", err)
			return
		}
		c.store.SetUserOffline(presence.UserID)

	default:
		logger.Debug("Unhandled realtime event type %q", event.Type)
	}
}

// handleUserOnline merges the minimal profile, looked up through the
// gateway. The lookup failing degrades to whatever the event carried;
// presence is best-effort.
func (c *Channel) handleUserOnline(presence models.PresenceEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
	defer cancel()

	if users, err := c.apiClient.OnlineUsers(ctx); err == nil {
		for _, user := range users {
			if user.ID == presence.UserID {
				c.store.SetUserOnline(user)
				return
			}
		}
	} else {
		logger.Debug("Online-user lookup failed: %v", err)
	}

	c.store.SetUserOnline(models.OnlineUser{
		ID:       presence.UserID,
		Username: presence.Username,
	})
}

// SendMessage emits a message over the socket, for transports that prefer
// push over the REST create. The REST path is authoritative because it
// returns the persisted id synchronously; a caller uses one path per
// logical send, never both.
func (c *Channel) SendMessage(content string, memberID, channelID *int) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return errors.New("realtime channel is not connected")
	}

	event := models.SendMessageEvent{
		Type:      "send_message",
		Content:   content,
		MemberID:  memberID,
		ChannelID: channelID,
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(&event); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close tears the channel down for good, e.g. on logout. The connection
// flag is forced false.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.status == StatusClosed {
		c.mu.Unlock()
		return
	}
	c.status = StatusClosed
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		conn.Close()
	}
	c.store.SetConnected(false)
}

func (c *Channel) transition(status Status) {
	c.mu.Lock()
	if c.status != StatusClosed {
		c.status = status
	}
	c.mu.Unlock()
}
