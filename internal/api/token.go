package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client can read off the stored credential without
// the server's signing secret: enough to decide whether a session is
// worth resuming before spending a network round trip.
type TokenInfo struct {
	UserID    int
	ExpiresAt time.Time
}

func (t *TokenInfo) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// InspectToken parses the stored credential without verifying the
// signature. Verification is the server's job; Verify is the
// authoritative check.
func (c *Client) InspectToken() (*TokenInfo, error) {
	token := c.Token()
	if token == "" {
		return nil, errors.New("no stored credential")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}

	info := &TokenInfo{}

	// The server encodes the user id in sub, as a number or a string
	// depending on version.
	switch sub := claims["sub"].(type) {
	case float64:
		info.UserID = int(sub)
	case string:
		if id, err := strconv.Atoi(sub); err == nil {
			info.UserID = id
		}
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}

	return info, nil
}
