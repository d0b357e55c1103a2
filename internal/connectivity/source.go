package connectivity

import "context"

// Source is the platform's connectivity signal and active-network query.
type Source interface {
	// Watch calls changed whenever the platform reports a connectivity
	// change. It blocks until ctx is cancelled or the source fails.
	Watch(ctx context.Context, changed func()) error

	// ActiveNetwork reports the current default network, if any.
	ActiveNetwork(ctx context.Context) (Network, bool)
}
