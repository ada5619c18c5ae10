package models

import "time"

// User is the client's snapshot of the authenticated account profile.
// The server is the source of truth; this is refreshed on verify.
type User struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	SystemName  string     `json:"system_name,omitempty"`
	ThemeColor  string     `json:"theme_color,omitempty"`
	AvatarPath  string     `json:"avatar_path,omitempty"`
	TOTPEnabled bool       `json:"totp_enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// Session is the identity carried across reloads: the bearer token plus
// the profile it was verified against.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Member is a persona the account can author messages as. ProxyTags is
// the serialized tag list as stored by the server; parse it lazily with
// ParseProxyTags.
type Member struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Name        string    `json:"name"`
	Pronouns    string    `json:"pronouns,omitempty"`
	Color       string    `json:"color,omitempty"`
	AvatarPath  string    `json:"avatar_path,omitempty"`
	Description string    `json:"description,omitempty"`
	PKID        string    `json:"pk_id,omitempty"`
	ProxyTags   string    `json:"proxy_tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Channel struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color,omitempty"`
	Emoji        string    `json:"emoji,omitempty"`
	IsDefault    bool      `json:"is_default"`
	IsArchived   bool      `json:"is_archived"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count,omitempty"`
}

// Message ordering is server-assigned. MemberID is nil when the message
// was sent as the raw account identity rather than a persona.
type Message struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	MemberID  *int      `json:"member_id,omitempty"`
	ChannelID *int      `json:"channel_id,omitempty"`
	Content   string    `json:"content"`
	User      *User     `json:"user,omitempty"`
	Member    *Member   `json:"member,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthorName is the display name for a message: the persona when one was
// used, otherwise the account username.
func (m *Message) AuthorName() string {
	if m.Member != nil && m.Member.Name != "" {
		return m.Member.Name
	}
	if m.User != nil {
		return m.User.Username
	}
	return "unknown"
}

// OnlineUser is the minimal presence profile. Not persisted across
// reloads; rebuilt from presence events.
type OnlineUser struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	SystemName string `json:"system_name,omitempty"`
	AvatarPath string `json:"avatar_path,omitempty"`
}

type AuditLog struct {
	ID          int    `json:"id"`
	EventType   string `json:"event_type"`
	Category    string `json:"category"`
	UserID      *int   `json:"user_id,omitempty"`
	Description string `json:"description,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	Success     bool   `json:"success"`
	Timestamp   string `json:"timestamp"`
}
