package testutil

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/devaloi/safecast/internal/domain"
	"github.com/devaloi/safecast/internal/store"
)

// MockPeer implements hub.Peer for testing.
type MockPeer struct {
	Name string
	// Capacity limits how many frames Send accepts. Zero means unlimited.
	Capacity int
	messages [][]byte
	mu       sync.Mutex
}

// NewMockPeer creates a new MockPeer with the given connection id.
func NewMockPeer(id string) *MockPeer {
	return &MockPeer{Name: id}
}

// ID returns the mock connection id.
func (m *MockPeer) ID() string { return m.Name }

// Send records a frame sent to the mock peer.
func (m *MockPeer) Send(data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Capacity > 0 && len(m.messages) >= m.Capacity {
		return false
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.messages = append(m.messages, cp)
	return true
}

// GetMessages returns a copy of all frames received by the mock peer.
func (m *MockPeer) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]byte, len(m.messages))
	copy(cp, m.messages)
	return cp
}

// OfType decodes every received frame whose "type" equals typ.
func (m *MockPeer) OfType(typ string) []map[string]json.RawMessage {
	var out []map[string]json.RawMessage
	for _, data := range m.GetMessages() {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			continue
		}
		var got string
		if err := json.Unmarshal(raw["type"], &got); err == nil && got == typ {
			out = append(out, raw)
		}
	}
	return out
}

// MockStore implements store.Store for testing.
type MockStore struct {
	mu     sync.Mutex
	nextID int64
	alerts []domain.Alert
	// Err, when set, is returned by every call.
	Err error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Save persists an alert in the mock store.
func (s *MockStore) Save(a domain.Alert) (domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return domain.Alert{}, s.Err
	}
	s.nextID++
	a.ID = s.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.alerts = append(s.alerts, a)
	return a, nil
}

// History returns stored alerts for a user, newest first.
func (s *MockStore) History(userID string, limit int) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []domain.Alert{}
	for i := len(s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if s.alerts[i].UserID == userID {
			out = append(out, s.alerts[i])
		}
	}
	return out, nil
}

// Resolve marks a stored alert as resolved.
func (s *MockStore) Resolve(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].Status = domain.StatusResolved
			return nil
		}
	}
	return store.ErrNotFound
}

// Close is a no-op for the mock store.
func (s *MockStore) Close() error { return nil }
