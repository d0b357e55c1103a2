package netmon

import (
	"net"
	"strings"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

// Interface name prefixes, most specific first. Kernel and platform naming
// is the only transport hint available without a wireless API.
var namePrefixes = []struct {
	prefix    string
	transport connectivity.Transport
}{
	{"aware_data", connectivity.TransportWifiAware},
	{"wlan", connectivity.TransportWifi},
	{"wifi", connectivity.TransportWifi},
	{"wl", connectivity.TransportWifi},
	{"ath", connectivity.TransportWifi},
	{"wwan", connectivity.TransportCellular},
	{"rmnet", connectivity.TransportCellular},
	{"ccmni", connectivity.TransportCellular},
	{"pdp_ip", connectivity.TransportCellular},
	{"bnep", connectivity.TransportBluetooth},
	{"bt-pan", connectivity.TransportBluetooth},
	{"lowpan", connectivity.TransportLoWPAN},
	{"wpan", connectivity.TransportLoWPAN},
	{"utun", connectivity.TransportVPN},
	{"tun", connectivity.TransportVPN},
	{"tap", connectivity.TransportVPN},
	{"wg", connectivity.TransportVPN},
	{"ipsec", connectivity.TransportVPN},
	{"ppp", connectivity.TransportVPN},
	{"rndis", connectivity.TransportUSB},
	{"usb", connectivity.TransportUSB},
	{"eth", connectivity.TransportEthernet},
	{"en", connectivity.TransportEthernet},
}

func transportsFromName(name string) connectivity.Transport {
	for _, p := range namePrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.transport
		}
	}
	return 0
}

// isCandidate reports whether an interface could carry the default route.
func isCandidate(flags net.Flags, addrs []string) bool {
	return flags&net.FlagUp != 0 && flags&net.FlagLoopback == 0 && len(addrs) > 0
}

// rank orders networks the same way the tracker classifies them, lower is
// better.
func rank(n connectivity.Network) int {
	switch connectivity.Classify(n, true) {
	case connectivity.Wifi:
		return 0
	case connectivity.Cellular:
		return 1
	case connectivity.Bluetooth:
		return 2
	case connectivity.Ethernet:
		return 3
	default:
		return 4
	}
}

// better prefers connected networks, then rank, then name for stability.
func better(a, b connectivity.Network) bool {
	if a.Connected != b.Connected {
		return a.Connected
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		return ra < rb
	}
	return a.Name < b.Name
}
