//go:build darwin

package netmon

import (
	"context"
	"net"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/route"
	"golang.org/x/sys/unix"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

const nativeKind = SourceRoute

func newNativeSource() connectivity.Source { return NewRouteSource() }

// RouteSource signals on AF_ROUTE interface, address and route messages and
// answers active-network queries from the routing table.
type RouteSource struct{}

func NewRouteSource() *RouteSource {
	return &RouteSource{}
}

func (s *RouteSource) Watch(ctx context.Context, changed func()) error {
	fd, err := unix.Socket(unix.AF_ROUTE, unix.SOCK_RAW, unix.AF_UNSPEC)
	if err != nil {
		return err
	}

	// Unblock the read when the context is cancelled.
	go func() {
		<-ctx.Done()
		unix.Close(fd)
	}()

	log.Debug("Darwin route watcher initialized")

	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(fd, buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.WithError(err).Warn("Error reading from route socket")
				continue
			}
		}

		msgs, err := route.ParseRIB(route.RIBTypeRoute, buf[:n])
		if err != nil {
			log.WithError(err).Trace("Unparsable route message")
			changed()
			continue
		}
		if relevant(msgs) {
			changed()
		}
	}
}

func relevant(msgs []route.Message) bool {
	for _, m := range msgs {
		switch m.(type) {
		case *route.InterfaceMessage, *route.InterfaceAddrMessage, *route.RouteMessage:
			return true
		}
	}
	return false
}

func (s *RouteSource) ActiveNetwork(ctx context.Context) (connectivity.Network, bool) {
	index, ok := defaultRouteIndex()
	if !ok {
		return connectivity.Network{}, false
	}

	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		log.WithError(err).WithField("ifIndex", index).Warn("Default route interface not found")
		return connectivity.Network{}, false
	}
	return connectivity.Network{
		Name:       iface.Name,
		Connected:  iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0,
		Transports: transportsFromName(iface.Name),
	}, true
}

func defaultRouteIndex() (int, bool) {
	for _, family := range []int{unix.AF_INET, unix.AF_INET6} {
		rib, err := route.FetchRIB(family, route.RIBTypeRoute, 0)
		if err != nil {
			log.WithError(err).Error("Failed to fetch routing table")
			continue
		}
		msgs, err := route.ParseRIB(route.RIBTypeRoute, rib)
		if err != nil {
			log.WithError(err).Error("Failed to parse routing table")
			continue
		}
		for _, m := range msgs {
			rm, ok := m.(*route.RouteMessage)
			if !ok || rm.Flags&unix.RTF_UP == 0 || rm.Flags&unix.RTF_GATEWAY == 0 {
				continue
			}
			if isDefaultDst(rm.Addrs) && rm.Index != 0 {
				return rm.Index, true
			}
		}
	}
	return 0, false
}

func isDefaultDst(addrs []route.Addr) bool {
	if len(addrs) <= unix.RTAX_DST {
		return false
	}
	switch dst := addrs[unix.RTAX_DST].(type) {
	case *route.Inet4Addr:
		return dst.IP == [4]byte{}
	case *route.Inet6Addr:
		return dst.IP == [16]byte{}
	default:
		return false
	}
}
