package netmon

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

func TestTransportsFromName(t *testing.T) {
	tests := map[string]connectivity.Transport{
		"wlan0":       connectivity.TransportWifi,
		"wlp2s0":      connectivity.TransportWifi,
		"aware_data0": connectivity.TransportWifiAware,
		"rmnet_data0": connectivity.TransportCellular,
		"wwan0":       connectivity.TransportCellular,
		"pdp_ip0":     connectivity.TransportCellular,
		"bnep0":       connectivity.TransportBluetooth,
		"eth0":        connectivity.TransportEthernet,
		"en0":         connectivity.TransportEthernet,
		"utun3":       connectivity.TransportVPN,
		"wg0":         connectivity.TransportVPN,
		"usb0":        connectivity.TransportUSB,
		"lo":          0,
	}
	for name, want := range tests {
		assert.Equal(t, want, transportsFromName(name), name)
	}
}

func TestIsCandidate(t *testing.T) {
	addrs := []string{"192.168.1.2/24"}
	assert.True(t, isCandidate(net.FlagUp, addrs))
	assert.False(t, isCandidate(0, addrs))
	assert.False(t, isCandidate(net.FlagUp|net.FlagLoopback, addrs))
	assert.False(t, isCandidate(net.FlagUp, nil))
}

func TestBetter(t *testing.T) {
	wifi := connectivity.Network{Name: "wlan0", Connected: true, Transports: connectivity.TransportWifi}
	eth := connectivity.Network{Name: "eth0", Connected: true, Transports: connectivity.TransportEthernet}
	deadWifi := connectivity.Network{Name: "wlan1", Transports: connectivity.TransportWifi}

	assert.True(t, better(wifi, eth))
	assert.False(t, better(eth, wifi))
	assert.True(t, better(eth, deadWifi))
	assert.True(t, better(connectivity.Network{Name: "eth0", Connected: true}, connectivity.Network{Name: "eth1", Connected: true}))
}
