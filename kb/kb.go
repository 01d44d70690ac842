package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/dinosim/core"
	"github.com/signalsfoundry/dinosim/model"
)

var (
	ErrBodyExists         = errors.New("body already exists")
	ErrBodyNotFound       = errors.New("body not found")
	ErrSpacecraftExists   = errors.New("spacecraft already exists")
	ErrSpacecraftNotFound = errors.New("spacecraft not found")
	ErrBadInput           = errors.New("invalid scenario entity")
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventSpacecraftAdded EventType = iota
	EventSpacecraftConfigured
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type       EventType
	Spacecraft string
	Params     core.CommParams // set for EventSpacecraftConfigured
}

// KnowledgeBase is an in-memory, thread-safe store for the bodies and
// spacecraft of one scenario. It satisfies core.SpacecraftLister.
type KnowledgeBase struct {
	mu sync.RWMutex

	bodies     map[string]*model.Body
	spacecraft map[string]*core.Spacecraft

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		bodies:     make(map[string]*model.Body),
		spacecraft: make(map[string]*core.Spacecraft),
	}
}

// AddBody adds a body. Names are unique.
func (kb *KnowledgeBase) AddBody(b *model.Body) error {
	if b == nil || b.Name == "" {
		return fmt.Errorf("%w: body needs a name", ErrBadInput)
	}
	if !(b.Radius >= 0) {
		return fmt.Errorf("%w: body %q has radius %v", ErrBadInput, b.Name, b.Radius)
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.bodies[b.Name]; exists {
		return fmt.Errorf("%w: %q", ErrBodyExists, b.Name)
	}
	kb.bodies[b.Name] = b
	return nil
}

// AddSpacecraft adds a spacecraft. Its orbiting body must already be in the KB.
func (kb *KnowledgeBase) AddSpacecraft(sc *core.Spacecraft) error {
	if sc == nil || sc.Name == "" || sc.Body == nil {
		return fmt.Errorf("%w: spacecraft needs a name and a body", ErrBadInput)
	}

	kb.mu.Lock()
	if _, exists := kb.spacecraft[sc.Name]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSpacecraftExists, sc.Name)
	}
	if b, ok := kb.bodies[sc.Body.Name]; !ok || b != sc.Body {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q (orbited by %q)", ErrBodyNotFound, sc.Body.Name, sc.Name)
	}
	kb.spacecraft[sc.Name] = sc
	subs := append([]subscriber(nil), kb.subs...)
	kb.mu.Unlock()

	notify(subs, Event{Type: EventSpacecraftAdded, Spacecraft: sc.Name})
	return nil
}

// ConfigureSpacecraft sets the comm params of a stored spacecraft and
// notifies subscribers. Reconfiguring overwrites earlier params.
func (kb *KnowledgeBase) ConfigureSpacecraft(name string, p core.CommParams) error {
	kb.mu.Lock()
	sc, ok := kb.spacecraft[name]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSpacecraftNotFound, name)
	}
	if err := sc.SetCommParams(p); err != nil {
		kb.mu.Unlock()
		return err
	}
	subs := append([]subscriber(nil), kb.subs...)
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	notify(subs, Event{Type: EventSpacecraftConfigured, Spacecraft: name, Params: p})
	return nil
}

func notify(subs []subscriber, ev Event) {
	for _, sub := range subs {
		sub.fn(ev)
	}
}

// GetBody returns the body with the given name, or nil if not found.
func (kb *KnowledgeBase) GetBody(name string) *model.Body {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.bodies[name]
}

// GetSpacecraft returns the spacecraft with the given name, or nil.
func (kb *KnowledgeBase) GetSpacecraft(name string) *core.Spacecraft {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.spacecraft[name]
}

// ListBodies returns all bodies sorted by name.
func (kb *KnowledgeBase) ListBodies() []*model.Body {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.Body, 0, len(kb.bodies))
	for _, b := range kb.bodies {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// ListSpacecraft returns all spacecraft sorted by name.
func (kb *KnowledgeBase) ListSpacecraft() []*core.Spacecraft {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*core.Spacecraft, 0, len(kb.spacecraft))
	for _, sc := range kb.spacecraft {
		res = append(res, sc)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextID
	kb.nextID++
	kb.subs = append(kb.subs, subscriber{id: id, fn: fn})

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		for i, sub := range kb.subs {
			if sub.id == id {
				kb.subs = append(kb.subs[:i:i], kb.subs[i+1:]...)
				return
			}
		}
	}
}
