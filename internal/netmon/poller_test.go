package netmon

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

type fakeTable struct {
	mu     sync.Mutex
	ifaces []ifaceInfo
}

func (f *fakeTable) set(ifaces ...ifaceInfo) {
	f.mu.Lock()
	f.ifaces = ifaces
	f.mu.Unlock()
}

func (f *fakeTable) list() ([]ifaceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ifaceInfo(nil), f.ifaces...), nil
}

func newTestPoller(table *fakeTable) *Poller {
	p := NewPoller(10 * time.Millisecond)
	p.interfaces = table.list
	return p
}

var (
	loopback = ifaceInfo{Name: "lo", Flags: net.FlagUp | net.FlagLoopback | net.FlagRunning, Addrs: []string{"127.0.0.1/8"}}
	eth0     = ifaceInfo{Name: "eth0", Flags: net.FlagUp | net.FlagRunning, Addrs: []string{"10.0.0.5/24"}}
	wlan0    = ifaceInfo{Name: "wlan0", Flags: net.FlagUp | net.FlagRunning, Addrs: []string{"192.168.1.9/24"}}
)

func TestNewPoller_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultPollInterval, NewPoller(0).pollInterval)
}

func TestPoller_ActiveNetwork(t *testing.T) {
	table := &fakeTable{}
	p := newTestPoller(table)

	table.set(loopback)
	_, ok := p.ActiveNetwork(context.Background())
	assert.False(t, ok)

	table.set(loopback, eth0, wlan0)
	n, ok := p.ActiveNetwork(context.Background())
	require.True(t, ok)
	assert.Equal(t, "wlan0", n.Name)
	assert.Equal(t, connectivity.Wifi, connectivity.Classify(n, ok))

	table.set(loopback, eth0)
	n, ok = p.ActiveNetwork(context.Background())
	require.True(t, ok)
	assert.Equal(t, connectivity.Ethernet, connectivity.Classify(n, ok))
}

func TestPoller_WatchSignalsOnChange(t *testing.T) {
	table := &fakeTable{}
	table.set(loopback, eth0)
	p := newTestPoller(table)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, func() { signals <- struct{}{} })
	}()

	// No change, no signal.
	select {
	case <-signals:
		t.Fatal("unexpected signal for an unchanged table")
	case <-time.After(50 * time.Millisecond):
	}

	table.set(loopback, eth0, wlan0)
	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change signal")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for Watch to return")
	}
}

func TestPoller_FingerprintIgnoresOrder(t *testing.T) {
	table := &fakeTable{}
	p := newTestPoller(table)

	table.set(eth0, wlan0)
	a := p.fingerprint()
	table.set(wlan0, eth0, loopback)
	assert.Equal(t, a, p.fingerprint())
}

func TestPoller_WatchSignalsOnCarrierLoss(t *testing.T) {
	table := &fakeTable{}
	table.set(loopback, eth0)
	p := newTestPoller(table)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan struct{}, 16)
	go func() { _ = p.Watch(ctx, func() { signals <- struct{}{} }) }()

	// Give the poller time to take its first snapshot.
	time.Sleep(50 * time.Millisecond)

	noCarrier := eth0
	noCarrier.Flags = net.FlagUp
	table.set(loopback, noCarrier)

	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for carrier loss signal")
	}

	n, ok := p.ActiveNetwork(context.Background())
	require.True(t, ok)
	assert.False(t, n.Connected)
	assert.Equal(t, connectivity.Disconnected, connectivity.Classify(n, ok))
}

func TestPoller_FingerprintTracksCarrier(t *testing.T) {
	table := &fakeTable{}
	p := newTestPoller(table)

	table.set(eth0)
	running := p.fingerprint()

	noCarrier := eth0
	noCarrier.Flags = net.FlagUp
	table.set(noCarrier)
	assert.NotEqual(t, running, p.fingerprint())
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(SourcePoll, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &Poller{}, src)

	src, err = NewSource(SourceAuto, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, src)

	_, err = NewSource("carrier-pigeon", time.Second)
	assert.Error(t, err)
}

func TestPoller_DrivesTracker(t *testing.T) {
	table := &fakeTable{}
	table.set(loopback)
	p := newTestPoller(table)

	tracker := connectivity.New(p)
	require.NoError(t, tracker.Initialize(context.Background()))
	defer tracker.Close()

	connected := make(chan struct{}, 1)
	_, err := tracker.Listen(func() { connected <- struct{}{} }, nil)
	require.NoError(t, err)

	c, err := tracker.Classification()
	require.NoError(t, err)
	assert.Equal(t, connectivity.Disconnected, c)

	// Give the poller time to take its first snapshot.
	time.Sleep(50 * time.Millisecond)

	table.set(loopback, wlan0)
	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for connected callback")
	}

	onWifi, err := tracker.IsOnWifi()
	require.NoError(t, err)
	assert.True(t, onWifi)
}
