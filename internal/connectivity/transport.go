package connectivity

import "strings"

// Transport is a bit set of the link technologies a network runs over.
type Transport uint32

const (
	TransportWifi Transport = 1 << iota
	TransportWifiAware
	TransportCellular
	TransportBluetooth
	TransportEthernet
	TransportVPN
	TransportLoWPAN
	TransportUSB
)

var transportNames = []struct {
	t    Transport
	name string
}{
	{TransportWifi, "wifi"},
	{TransportWifiAware, "wifi-aware"},
	{TransportCellular, "cellular"},
	{TransportBluetooth, "bluetooth"},
	{TransportEthernet, "ethernet"},
	{TransportVPN, "vpn"},
	{TransportLoWPAN, "lowpan"},
	{TransportUSB, "usb"},
}

// Has reports whether any bit of other is set.
func (t Transport) Has(other Transport) bool {
	return t&other != 0
}

func (t Transport) String() string {
	if t == 0 {
		return "none"
	}
	var parts []string
	for _, tn := range transportNames {
		if t.Has(tn.t) {
			parts = append(parts, tn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Network is the answer to an active-network query.
type Network struct {
	Name       string
	Connected  bool
	Transports Transport
}

// Classify maps an active-network query result onto a Classification.
// Transports are checked in priority order: Wi-Fi (including Wi-Fi Aware),
// cellular, Bluetooth, Ethernet.
func Classify(n Network, ok bool) Classification {
	if !ok || !n.Connected {
		return Disconnected
	}
	switch {
	case n.Transports.Has(TransportWifi | TransportWifiAware):
		return Wifi
	case n.Transports.Has(TransportCellular):
		return Cellular
	case n.Transports.Has(TransportBluetooth):
		return Bluetooth
	case n.Transports.Has(TransportEthernet):
		return Ethernet
	default:
		return Other
	}
}
