package kb

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrLinkNotFound is returned when taking down a link that is not up.
var ErrLinkNotFound = errors.New("link not found")

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventLinkUp EventType = iota
	EventLinkDown
)

func (e EventType) String() string {
	switch e {
	case EventLinkUp:
		return "up"
	case EventLinkDown:
		return "down"
	default:
		return "unknown"
	}
}

// LinkKey identifies an undirected satellite pair with A < B.
type LinkKey struct {
	A, B int
}

// NewLinkKey orders a and b.
func NewLinkKey(a, b int) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey{A: a, B: b}
}

// Link is an active link between two satellites.
type Link struct {
	LinkKey
	LengthM float64 // latest evaluated length
	Since   float64 // simulation time the link came up (seconds)
}

// Event is emitted to subscribers when a link changes state.
type Event struct {
	Type EventType
	Link Link
	T    float64
}

// KnowledgeBase is an in-memory, thread-safe table of active links.
type KnowledgeBase struct {
	mu sync.RWMutex

	links map[LinkKey]*Link

	subs   map[int]func(Event)
	nextID int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		links: make(map[LinkKey]*Link),
		subs:  make(map[int]func(Event)),
	}
}

// SetLinkUp marks a–b as up at time t with the given length. It returns true
// if the link was newly brought up; for an existing link only the length is
// refreshed and no event is emitted.
func (kb *KnowledgeBase) SetLinkUp(a, b int, length, t float64) bool {
	key := NewLinkKey(a, b)

	kb.mu.Lock()
	if l, ok := kb.links[key]; ok {
		l.LengthM = length
		kb.mu.Unlock()
		return false
	}
	l := &Link{LinkKey: key, LengthM: length, Since: t}
	kb.links[key] = l
	subs := kb.subscribers()
	kb.mu.Unlock()

	notify(subs, Event{Type: EventLinkUp, Link: *l, T: t})
	return true
}

// SetLinkDown removes a–b at time t. It returns ErrLinkNotFound if the link
// is not up.
func (kb *KnowledgeBase) SetLinkDown(a, b int, t float64) error {
	key := NewLinkKey(a, b)

	kb.mu.Lock()
	l, ok := kb.links[key]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("link %d-%d: %w", key.A, key.B, ErrLinkNotFound)
	}
	delete(kb.links, key)
	subs := kb.subscribers()
	kb.mu.Unlock()

	notify(subs, Event{Type: EventLinkDown, Link: *l, T: t})
	return nil
}

// GetLink returns a copy of the a–b link if it is up.
func (kb *KnowledgeBase) GetLink(a, b int) (Link, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	l, ok := kb.links[NewLinkKey(a, b)]
	if !ok {
		return Link{}, false
	}
	return *l, true
}

// ListLinks returns a snapshot of all active links ordered by (A, B).
func (kb *KnowledgeBase) ListLinks() []Link {
	kb.mu.RLock()
	res := make([]Link, 0, len(kb.links))
	for _, l := range kb.links {
		res = append(res, *l)
	}
	kb.mu.RUnlock()

	slices.SortFunc(res, func(x, y Link) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	return res
}

// LinkCount returns the number of active links.
func (kb *KnowledgeBase) LinkCount() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.links)
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextID
	kb.nextID++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

// subscribers copies the callbacks in registration order. Callers hold kb.mu.
func (kb *KnowledgeBase) subscribers() []func(Event) {
	ids := make([]int, 0, len(kb.subs))
	for id := range kb.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, kb.subs[id])
	}
	return subs
}

// Notify subscribers outside the lock to avoid deadlocks.
func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}
