package store

import (
	"sort"
	"sync"

	"plural-chat/internal/models"
)

// Store is the single mutable source of UI truth. REST snapshot loads and
// realtime events both funnel through its operations; every add or patch
// is an id-keyed merge, so an event and the REST response for the same
// logical change collapse to one copy regardless of arrival order.
//
// A whitelisted subset of the state survives restarts (see persist.go);
// everything else starts empty on construction.
type Store struct {
	mu    sync.RWMutex
	local persister

	session  *models.Session
	members  []models.Member
	channels []models.Channel
	messages []models.Message
	online   []models.OnlineUser

	selectedChannel *models.Channel
	selectedMember  int
	sidebarOpen     bool
	connected       bool

	subscribers []func()
}

// persister is the slice of storage.Local the store needs. Nil is allowed
// for stores that should not persist (tests, one-shot commands).
type persister interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

func New(local persister) *Store {
	s := &Store{local: local}
	s.rehydrate()
	return s
}

// Subscribe registers a callback invoked after every state change.
// Callbacks run outside the store lock and may read the store.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// changed persists the whitelisted subset and notifies subscribers.
// Called after every mutation, without the lock held.
func (s *Store) changed() {
	s.persist()

	s.mu.RLock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// Session

func (s *Store) SetSession(session *models.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	s.changed()
}

// ClearSession drops the identity and every collection derived from it.
func (s *Store) ClearSession() {
	s.mu.Lock()
	s.session = nil
	s.members = nil
	s.channels = nil
	s.messages = nil
	s.online = nil
	s.selectedChannel = nil
	s.selectedMember = 0
	s.mu.Unlock()
	s.changed()
}

func (s *Store) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// Members

func (s *Store) SetMembers(members []models.Member) {
	s.mu.Lock()
	s.members = append([]models.Member(nil), members...)
	if s.selectedMember != 0 && s.findMember(s.selectedMember) == -1 {
		s.selectedMember = 0
	}
	s.mu.Unlock()
	s.changed()
}

// AddMember appends unless the id is already present.
func (s *Store) AddMember(member models.Member) {
	s.mu.Lock()
	if s.findMember(member.ID) != -1 {
		s.mu.Unlock()
		return
	}
	s.members = append(s.members, member)
	s.mu.Unlock()
	s.changed()
}

// PatchMember replaces the matching entry. An update for an id that is
// not present is a no-op, never an insert.
func (s *Store) PatchMember(member models.Member) {
	s.mu.Lock()
	i := s.findMember(member.ID)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	s.members[i] = member
	s.mu.Unlock()
	s.changed()
}

func (s *Store) RemoveMember(id int) {
	s.mu.Lock()
	i := s.findMember(id)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	s.members = append(s.members[:i], s.members[i+1:]...)
	if s.selectedMember == id {
		s.selectedMember = 0
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Store) Members() []models.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Member(nil), s.members...)
}

// SelectMember is a no-op unless the id is present.
func (s *Store) SelectMember(id int) bool {
	s.mu.Lock()
	if s.findMember(id) == -1 {
		s.mu.Unlock()
		return false
	}
	s.selectedMember = id
	s.mu.Unlock()
	s.changed()
	return true
}

func (s *Store) SelectedMember() (models.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findMember(s.selectedMember)
	if i == -1 {
		return models.Member{}, false
	}
	return s.members[i], true
}

// Channels

func (s *Store) SetChannels(channels []models.Channel) {
	s.mu.Lock()
	s.channels = append([]models.Channel(nil), channels...)
	if s.selectedChannel != nil && s.findChannel(s.selectedChannel.ID) == -1 {
		s.selectedChannel = nil
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Store) AddChannel(channel models.Channel) {
	s.mu.Lock()
	if s.findChannel(channel.ID) != -1 {
		s.mu.Unlock()
		return
	}
	s.channels = append(s.channels, channel)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) PatchChannel(channel models.Channel) {
	s.mu.Lock()
	i := s.findChannel(channel.ID)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	s.channels[i] = channel
	if s.selectedChannel != nil && s.selectedChannel.ID == channel.ID {
		selected := channel
		s.selectedChannel = &selected
	}
	s.mu.Unlock()
	s.changed()
}

// RemoveChannel clears the selection when the selected channel goes away.
func (s *Store) RemoveChannel(id int) {
	s.mu.Lock()
	i := s.findChannel(id)
	if i == -1 {
		s.mu.Unlock()
		return
	}
	s.channels = append(s.channels[:i], s.channels[i+1:]...)
	if s.selectedChannel != nil && s.selectedChannel.ID == id {
		s.selectedChannel = nil
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Store) Channels() []models.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Channel(nil), s.channels...)
}

func (s *Store) SelectChannel(id int) bool {
	s.mu.Lock()
	i := s.findChannel(id)
	if i == -1 {
		s.mu.Unlock()
		return false
	}
	selected := s.channels[i]
	s.selectedChannel = &selected
	s.mu.Unlock()
	s.changed()
	return true
}

func (s *Store) ClearSelectedChannel() {
	s.mu.Lock()
	s.selectedChannel = nil
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SelectedChannel() *models.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedChannel == nil {
		return nil
	}
	selected := *s.selectedChannel
	return &selected
}

// DefaultChannel returns the channel flagged as default, falling back to
// the lowest position among unarchived channels when none is flagged.
func (s *Store) DefaultChannel() (models.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.channels {
		if c.IsDefault {
			return c, true
		}
	}

	candidates := make([]models.Channel, 0, len(s.channels))
	for _, c := range s.channels {
		if !c.IsArchived {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return models.Channel{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Position < candidates[j].Position
	})
	return candidates[0], true
}

// Messages

func (s *Store) SetMessages(messages []models.Message) {
	s.mu.Lock()
	s.messages = append([]models.Message(nil), messages...)
	s.mu.Unlock()
	s.changed()
}

// AddMessage appends to the tail. Ordering is server-assigned and never
// re-sorted here; a duplicate id is dropped so the REST echo and the
// realtime event of one send end up as a single entry.
func (s *Store) AddMessage(message models.Message) {
	s.mu.Lock()
	for _, existing := range s.messages {
		if existing.ID == message.ID {
			s.mu.Unlock()
			return
		}
	}
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) RemoveMessage(id int) {
	s.mu.Lock()
	for i, existing := range s.messages {
		if existing.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			s.mu.Unlock()
			s.changed()
			return
		}
	}
	s.mu.Unlock()
}

func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.messages...)
}

// Presence

func (s *Store) SetOnlineUsers(users []models.OnlineUser) {
	s.mu.Lock()
	s.online = append([]models.OnlineUser(nil), users...)
	s.mu.Unlock()
	s.changed()
}

// SetUserOnline replaces the entry for the id when present, so repeated
// presence events for one user never duplicate it.
func (s *Store) SetUserOnline(user models.OnlineUser) {
	s.mu.Lock()
	for i, existing := range s.online {
		if existing.ID == user.ID {
			s.online[i] = user
			s.mu.Unlock()
			s.changed()
			return
		}
	}
	s.online = append(s.online, user)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SetUserOffline(id int) {
	s.mu.Lock()
	for i, existing := range s.online {
		if existing.ID == id {
			s.online = append(s.online[:i], s.online[i+1:]...)
			s.mu.Unlock()
			s.changed()
			return
		}
	}
	s.mu.Unlock()
}

func (s *Store) OnlineUsers() []models.OnlineUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.OnlineUser(nil), s.online...)
}

// UI flags

func (s *Store) SetSidebarOpen(open bool) {
	s.mu.Lock()
	s.sidebarOpen = open
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SidebarOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarOpen
}

func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	if s.connected == connected {
		s.mu.Unlock()
		return
	}
	s.connected = connected
	s.mu.Unlock()
	s.changed()
}

func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// lookup helpers, called with the lock held

func (s *Store) findMember(id int) int {
	for i := range s.members {
		if s.members[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findChannel(id int) int {
	for i := range s.channels {
		if s.channels[i].ID == id {
			return i
		}
	}
	return -1
}
