package connectivity

import (
	"github.com/google/uuid"

	"github.com/dmdmdm-nz/connmon/internal/lifecycle"
)

// Listener is a registration handle. The same handle may be added again to
// replace its previous registration.
type Listener struct {
	id             string
	onConnected    func()
	onDisconnected func()
	scope          *lifecycle.Scope
}

type ListenerOption func(*Listener)

// InScope ties the listener to scope: it stops firing, and is removed from
// the tracker, once the scope ends.
func InScope(scope *lifecycle.Scope) ListenerOption {
	return func(l *Listener) {
		l.scope = scope
	}
}

// NewListener creates a handle with a fresh key. Either callback may be nil.
func NewListener(onConnected, onDisconnected func(), opts ...ListenerOption) *Listener {
	l := &Listener{
		id:             uuid.New().String(),
		onConnected:    onConnected,
		onDisconnected: onDisconnected,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Listener) ID() string { return l.id }

func (l *Listener) Scope() *lifecycle.Scope { return l.scope }

func (l *Listener) callback(d Direction) func() {
	if d == DirectionConnected {
		return l.onConnected
	}
	return l.onDisconnected
}

func (l *Listener) scopeEnded() bool {
	return l.scope != nil && l.scope.Ended()
}

// entry is one registration of a Listener. Re-adding a listener creates a
// new entry, so tasks dispatched for the old one can tell they are stale.
type entry struct {
	listener  *Listener
	stopScope func() bool
}

func (e *entry) release() {
	if e.stopScope != nil {
		e.stopScope()
	}
}
