package netmon

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

type ifaceInfo struct {
	Name  string
	Flags net.Flags
	Addrs []string
}

// Poller is a connectivity.Source for platforms without a change
// notification mechanism. It snapshots the interface table on a fixed
// interval and signals whenever the snapshot differs.
type Poller struct {
	pollInterval time.Duration
	interfaces   func() ([]ifaceInfo, error)
}

func NewPoller(pollInterval time.Duration) *Poller {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Poller{
		pollInterval: pollInterval,
		interfaces:   systemInterfaces,
	}
}

func (p *Poller) Watch(ctx context.Context, changed func()) error {
	log.WithField("interval", p.pollInterval).Info("Starting network interface polling")

	last := p.fingerprint()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping network interface polling")
			return nil
		case <-ticker.C:
			current := p.fingerprint()
			if current == last {
				continue
			}
			log.WithFields(log.Fields{
				"before": last,
				"after":  current,
			}).Trace("Interface table changed")
			last = current
			changed()
		}
	}
}

func (p *Poller) ActiveNetwork(ctx context.Context) (connectivity.Network, bool) {
	ifaces, err := p.interfaces()
	if err != nil {
		log.WithError(err).Error("Error getting network interfaces")
		return connectivity.Network{}, false
	}

	var best connectivity.Network
	found := false
	for _, iface := range ifaces {
		if !isCandidate(iface.Flags, iface.Addrs) {
			log.WithField("interface", iface.Name).Trace("Skipping interface")
			continue
		}
		n := connectivity.Network{
			Name:       iface.Name,
			Connected:  iface.Flags&net.FlagRunning != 0,
			Transports: transportsFromName(iface.Name),
		}
		if !found || better(n, best) {
			best = n
			found = true
		}
	}
	return best, found
}

func (p *Poller) fingerprint() string {
	ifaces, err := p.interfaces()
	if err != nil {
		log.WithError(err).Error("Error getting network interfaces")
		return ""
	}

	parts := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		if !isCandidate(iface.Flags, iface.Addrs) {
			continue
		}
		addrs := append([]string(nil), iface.Addrs...)
		sort.Strings(addrs)
		// Carrier state feeds Connected, so it must count as a change.
		state := "down"
		if iface.Flags&net.FlagRunning != 0 {
			state = "running"
		}
		parts = append(parts, iface.Name+"/"+state+"="+strings.Join(addrs, ","))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

func systemInterfaces() ([]ifaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]ifaceInfo, 0, len(ifaces))
	for _, iface := range ifaces {
		info := ifaceInfo{Name: iface.Name, Flags: iface.Flags}
		addrs, err := iface.Addrs()
		if err != nil {
			log.Errorf("Error getting addresses for interface %s: %v", iface.Name, err)
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLinkLocalUnicast() {
				continue
			}
			info.Addrs = append(info.Addrs, ipNet.String())
		}
		out = append(out, info)
	}
	return out, nil
}
