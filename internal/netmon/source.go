package netmon

import (
	"fmt"
	"time"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

const (
	SourceAuto    = "auto"
	SourceNetlink = "netlink"
	SourceRoute   = "route"
	SourcePoll    = "poll"
)

// DefaultPollInterval is used by the poller when no interval is given.
const DefaultPollInterval = 2 * time.Second

// NewSource builds the connectivity source named by kind. "auto" picks the
// native event source for the running OS and falls back to polling.
func NewSource(kind string, pollInterval time.Duration) (connectivity.Source, error) {
	switch kind {
	case "", SourceAuto:
		if src := newNativeSource(); src != nil {
			return src, nil
		}
		return NewPoller(pollInterval), nil
	case SourcePoll:
		return NewPoller(pollInterval), nil
	case SourceNetlink, SourceRoute:
		if kind != nativeKind {
			return nil, fmt.Errorf("source %q is not supported on this platform", kind)
		}
		return newNativeSource(), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}
