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
)

func TestUpdateMemberMarshalsOnlyChangedFields(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/members/5", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(models.Member{ID: 5, Name: "Alicia"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	name := "Alicia"
	member, err := client.UpdateMember(context.Background(), 5, &models.UpdateMemberRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", member.Name)

	// Untouched fields stay off the wire so the server patches nothing else.
	assert.Equal(t, map[string]interface{}{"name": "Alicia"}, gotBody)
}

func TestUpdateMemberMarshalsExplicitEmptyValue(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(models.Member{ID: 5})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	// Clearing pronouns is a real update: pointer to "" marshals, nil does not.
	empty := ""
	_, err := client.UpdateMember(context.Background(), 5, &models.UpdateMemberRequest{Pronouns: &empty})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"pronouns": ""}, gotBody)
}

func TestUpdateChannelMarshalsOnlyChangedFields(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/channels/3", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(models.Channel{ID: 3, Name: "renamed", Position: 2})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	name := "renamed"
	position := 2
	channel, err := client.UpdateChannel(context.Background(), 3, &models.UpdateChannelRequest{
		Name:     &name,
		Position: &position,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", channel.Name)

	assert.Equal(t, map[string]interface{}{
		"name":     "renamed",
		"position": float64(2),
	}, gotBody)
}
