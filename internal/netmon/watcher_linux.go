//go:build linux

package netmon

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

const nativeKind = SourceNetlink

const sysClassNet = "/sys/class/net"

func newNativeSource() connectivity.Source { return NewNetlinkSource() }

// NetlinkSource signals on every rtnetlink link, address or route update
// and answers active-network queries from the routing table.
type NetlinkSource struct {
	sysfs string
}

func NewNetlinkSource() *NetlinkSource {
	return &NetlinkSource{sysfs: sysClassNet}
}

func (s *NetlinkSource) Watch(ctx context.Context, changed func()) error {
	done := make(chan struct{})
	defer close(done)

	linkCh := make(chan netlink.LinkUpdate)
	addrCh := make(chan netlink.AddrUpdate)
	routeCh := make(chan netlink.RouteUpdate)

	if err := netlink.LinkSubscribe(linkCh, done); err != nil {
		return err
	}
	if err := netlink.AddrSubscribe(addrCh, done); err != nil {
		return err
	}
	if err := netlink.RouteSubscribe(routeCh, done); err != nil {
		return err
	}
	log.Debug("Netlink watcher initialized")

	for {
		select {
		case <-ctx.Done():
			return nil

		case update, ok := <-linkCh:
			if !ok {
				return errors.New("netlink link subscription closed")
			}
			log.WithFields(log.Fields{
				"interface": update.Link.Attrs().Name,
				"flags":     update.Link.Attrs().Flags.String(),
			}).Trace("Received link update")
			changed()

		case update, ok := <-addrCh:
			if !ok {
				return errors.New("netlink address subscription closed")
			}
			log.WithFields(log.Fields{
				"ifIndex": update.LinkIndex,
				"addr":    update.LinkAddress.String(),
				"new":     update.NewAddr,
			}).Trace("Received address update")
			changed()

		case update, ok := <-routeCh:
			if !ok {
				return errors.New("netlink route subscription closed")
			}
			if !isDefaultRoute(update.Route) {
				continue
			}
			log.WithFields(log.Fields{
				"ifIndex": update.LinkIndex,
				"type":    update.Type,
			}).Trace("Received default route update")
			changed()
		}
	}
}

func (s *NetlinkSource) ActiveNetwork(ctx context.Context) (connectivity.Network, bool) {
	routes, err := netlink.RouteListFiltered(netlink.FAMILY_ALL, &netlink.Route{Table: unix.RT_TABLE_UNSPEC}, netlink.RT_FILTER_TABLE)
	if err != nil {
		log.WithError(err).Error("Failed to list routes")
		return connectivity.Network{}, false
	}

	route, ok := bestDefaultRoute(routes)
	if !ok {
		return connectivity.Network{}, false
	}

	link, err := netlink.LinkByIndex(route.LinkIndex)
	if err != nil {
		log.WithError(err).WithField("ifIndex", route.LinkIndex).Warn("Default route link not found")
		return connectivity.Network{}, false
	}
	return s.networkFor(link), true
}

func (s *NetlinkSource) networkFor(link netlink.Link) connectivity.Network {
	attrs := link.Attrs()
	up := attrs.Flags&net.FlagUp != 0
	operUp := attrs.OperState == netlink.OperUp || attrs.OperState == netlink.OperUnknown
	return connectivity.Network{
		Name:       attrs.Name,
		Connected:  up && operUp,
		Transports: s.transportsFor(link),
	}
}

func (s *NetlinkSource) transportsFor(link netlink.Link) connectivity.Transport {
	attrs := link.Attrs()
	switch link.Type() {
	case "wireguard", "tuntap", "ipip", "gre", "vti", "xfrm":
		return connectivity.TransportVPN
	}
	if s.isWireless(attrs.Name) {
		return connectivity.TransportWifi
	}
	if t := transportsFromName(attrs.Name); t != 0 {
		return t
	}
	if attrs.EncapType == "ether" {
		return connectivity.TransportEthernet
	}
	return 0
}

func (s *NetlinkSource) isWireless(name string) bool {
	for _, marker := range []string{"wireless", "phy80211"} {
		if _, err := os.Stat(filepath.Join(s.sysfs, name, marker)); err == nil {
			return true
		}
	}
	return false
}

// bestDefaultRoute picks the default route with the lowest metric across
// all tables and families.
func bestDefaultRoute(routes []netlink.Route) (netlink.Route, bool) {
	var best netlink.Route
	found := false
	for _, r := range routes {
		if !isDefaultRoute(r) || r.LinkIndex == 0 {
			continue
		}
		if !found || r.Priority < best.Priority {
			best = r
			found = true
		}
	}
	return best, found
}

func isDefaultRoute(r netlink.Route) bool {
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0 && r.Dst.IP.IsUnspecified()
}
