package api

import (
	"errors"
	"math/rand"
	"sort"
	"sync"

	"spiritclash/internal/battle"
	"spiritclash/internal/combat"
	"spiritclash/internal/util"
)

var ErrSessionNotFound = errors.New("battle session not found")

// maxBufferedEvents caps the per-session presentation buffer; the oldest
// events are dropped first.
const maxBufferedEvents = 256

type eventBuffer struct {
	mu     sync.Mutex
	events []combat.Event
}

func (b *eventBuffer) Present(ev combat.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	if over := len(b.events) - maxBufferedEvents; over > 0 {
		b.events = append([]combat.Event(nil), b.events[over:]...)
	}
}

// drain returns the buffered events and empties the buffer.
func (b *eventBuffer) drain() []combat.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

type entry struct {
	session *battle.Session
	events  *eventBuffer
}

// Registry owns the live sessions. Each session gets its own rng derived
// from the registry seed and its own event buffer.
type Registry struct {
	mu       sync.Mutex
	base     battle.Deps
	seeds    *rand.Rand
	sessions map[string]entry
}

func NewRegistry(base battle.Deps, seed int64) *Registry {
	return &Registry{
		base:     base,
		seeds:    util.New(seed),
		sessions: map[string]entry{},
	}
}

// Create builds and starts a session for the party. The session is
// registered even when it aborts so the caller can read why.
func (r *Registry) Create(partyIDs []string) *battle.Session {
	r.mu.Lock()
	deps := r.base
	deps.Rng = util.New(r.seeds.Int63())
	buf := &eventBuffer{}
	deps.Presenter = buf
	s := battle.NewSession(deps)
	r.sessions[s.ID()] = entry{session: s, events: buf}
	r.mu.Unlock()

	s.Start(partyIDs)
	return s
}

func (r *Registry) Get(id string) (*battle.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

func (r *Registry) Events(id string) ([]combat.Event, error) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.events.drain(), nil
}

// Close closes and forgets a session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.session.Close()
	return nil
}

// CloseAll closes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	for _, id := range ids {
		_ = r.Close(id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
