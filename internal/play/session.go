package play

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
)

// DefaultSessionTTL is how long an untouched game session survives.
const DefaultSessionTTL = 30 * time.Minute

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("game session not found")

// Session is one play-through of a stateful game, stored between actions.
type Session struct {
	ID              uuid.UUID           `json:"id"`
	CampaignID      uuid.UUID           `json:"campaign_id"`
	ParticipationID uuid.UUID           `json:"participation_id"`
	Game            models.CampaignType `json:"game"`
	State           json.RawMessage     `json:"state"`
	Seed            uint64              `json:"seed"`
	Actions         int                 `json:"actions"`
	StartedAt       time.Time           `json:"started_at"`
	LastTick        time.Time           `json:"last_tick"`
	Done            bool                `json:"done"`
}

// SessionStore keeps sessions between requests.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Update loads the session, applies fn and writes it back atomically. fn may run more
	// than once when a concurrent writer interferes, so it must not have side effects beyond s.
	Update(ctx context.Context, id uuid.UUID, fn func(s *Session) error) (*Session, error)
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemorySessions is a process-local SessionStore for single-instance deployments and tests.
type MemorySessions struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[uuid.UUID]memoryEntry
	now  func() time.Time
}

// NewMemorySessions creates an in-memory session store.
func NewMemorySessions(ttl time.Duration) *MemorySessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessions{ttl: ttl, data: make(map[uuid.UUID]memoryEntry), now: time.Now}
}

var _ SessionStore = (*MemorySessions)(nil)

func (m *MemorySessions) put(s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.data[s.ID] = memoryEntry{raw: raw, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessions) load(id uuid.UUID) (*Session, error) {
	e, ok := m.data[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().After(e.expires) {
		delete(m.data, id)
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(e.raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create stores a new session.
func (m *MemorySessions) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return m.put(s)
}

// Get returns a copy of the session.
func (m *MemorySessions) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id)
}

// Update applies fn under the store lock.
func (m *MemorySessions) Update(_ context.Context, id uuid.UUID, fn func(s *Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.put(s); err != nil {
		return nil, err
	}
	return s, nil
}

// sweep drops expired sessions. Called with mu held.
func (m *MemorySessions) sweep() {
	now := m.now()
	for id, e := range m.data {
		if now.After(e.expires) {
			delete(m.data, id)
		}
	}
}
