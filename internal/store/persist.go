package store

import (
	"encoding/json"

	"plural-chat/internal/models"
	"plural-chat/internal/storage"
	"plural-chat/pkg/logger"
)

// PersistedState is the explicit reload-surviving projection of the full
// runtime state. Collections, presence and the connection flag are
// deliberately absent: they are re-fetched or rebuilt after a restart.
type PersistedState struct {
	Session         *models.Session `json:"session,omitempty"`
	SidebarOpen     bool            `json:"sidebar_open"`
	SelectedChannel *models.Channel `json:"selected_channel,omitempty"`
}

// snapshot projects the runtime state down to the persisted subset.
func (s *Store) snapshot() PersistedState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := PersistedState{SidebarOpen: s.sidebarOpen}
	if s.session != nil {
		session := *s.session
		state.Session = &session
	}
	if s.selectedChannel != nil {
		selected := *s.selectedChannel
		state.SelectedChannel = &selected
	}
	return state
}

// persist writes the projection on every state change. Failures are
// logged, not surfaced: losing a UI snapshot must never break a mutation
// that already happened.
func (s *Store) persist() {
	if s.local == nil {
		return
	}
	data, err := json.Marshal(s.snapshot())
	if err != nil {
		logger.Error("Failed to encode persisted state: %v", err)
		return
	}
	if err := s.local.Put(storage.KeyUIState, data); err != nil {
		logger.Error("Failed to persist state: %v", err)
	}
}

// rehydrate applies the persisted subset before anything reads the store.
// The selected channel snapshot is restored as-is; the channel list itself
// arrives later with the first snapshot load.
func (s *Store) rehydrate() {
	if s.local == nil {
		return
	}
	data, err := s.local.Get(storage.KeyUIState)
	if err != nil {
		logger.Error("Failed to read persisted state: %v", err)
		return
	}
	if data == nil {
		return
	}

	var state PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Error("Discarding corrupt persisted state: %v", err)
		return
	}

	s.mu.Lock()
	s.session = state.Session
	s.sidebarOpen = state.SidebarOpen
	s.selectedChannel = state.SelectedChannel
	s.mu.Unlock()
}
