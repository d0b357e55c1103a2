package connectivity

import "github.com/dmdmdm-nz/connmon/internal/lifecycle"

// Bound is a tracker view for a UI-owning scope. Listeners registered
// through it are tied to that scope.
type Bound struct {
	tracker *Tracker
	scope   *lifecycle.Scope
}

// Bind returns ErrInvalidCallerContext unless scope owns UI.
func (t *Tracker) Bind(scope *lifecycle.Scope) (*Bound, error) {
	if scope == nil || !scope.OwnsUI() {
		return nil, ErrInvalidCallerContext
	}
	return &Bound{tracker: t, scope: scope}, nil
}

func (b *Bound) Scope() *lifecycle.Scope { return b.scope }

func (b *Bound) IsConnected() (bool, error) { return b.tracker.IsConnected() }

func (b *Bound) IsOnWifi() (bool, error) { return b.tracker.IsOnWifi() }

func (b *Bound) IsOnCellular() (bool, error) { return b.tracker.IsOnCellular() }

func (b *Bound) RunIfConnected(task func()) (bool, error) {
	return b.tracker.RunIfConnected(task)
}

func (b *Bound) Listen(onConnected, onDisconnected func()) (*Listener, error) {
	return b.tracker.Listen(onConnected, onDisconnected, InScope(b.scope))
}
