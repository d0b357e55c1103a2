// Package lifecycle models the owner of a listener registration. A Scope
// ends exactly once, either explicitly or when its parent context is done,
// and anything bound to it can observe that.
package lifecycle

import (
	"context"
	"fmt"
)

// Kind describes what owns a scope.
type Kind int

const (
	KindApplication Kind = iota
	KindActivity
	KindFragment
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindActivity:
		return "activity"
	case KindFragment:
		return "fragment"
	case KindService:
		return "service"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// OwnsUI reports whether the kind is a screen-owning context.
func (k Kind) OwnsUI() bool {
	return k == KindActivity || k == KindFragment
}

type Scope struct {
	name   string
	kind   Kind
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a live scope. A nil parent is treated as context.Background().
func New(parent context.Context, name string, kind Kind) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{name: name, kind: kind, ctx: ctx, cancel: cancel}
}

func (s *Scope) Name() string { return s.name }

func (s *Scope) Kind() Kind { return s.kind }

// OwnsUI reports whether the scope's kind owns UI.
func (s *Scope) OwnsUI() bool { return s.kind.OwnsUI() }

// Done is closed when the scope ends.
func (s *Scope) Done() <-chan struct{} { return s.ctx.Done() }

// Context returns a context cancelled when the scope ends.
func (s *Scope) Context() context.Context { return s.ctx }

// End ends the scope. Calling it again has no effect.
func (s *Scope) End() { s.cancel() }

func (s *Scope) Ended() bool { return s.ctx.Err() != nil }

// OnEnd arranges for fn to run in its own goroutine once the scope ends. If
// the scope has already ended, fn runs immediately (still asynchronously).
// stop deregisters fn and reports whether it did so before fn was started.
func (s *Scope) OnEnd(fn func()) (stop func() bool) {
	return context.AfterFunc(s.ctx, fn)
}

func (s *Scope) String() string {
	return fmt.Sprintf("%s(%s)", s.kind, s.name)
}
