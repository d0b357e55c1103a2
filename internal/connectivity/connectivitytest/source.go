// Package connectivitytest provides test doubles for the connectivity
// package: a settable Source and an Executor that holds tasks until told to
// run them.
package connectivitytest

import (
	"context"
	"sync"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
)

// Source is a connectivity.Source whose active network is set by the test.
// Signals are delivered synchronously on the caller's goroutine.
type Source struct {
	mu       sync.Mutex
	network  connectivity.Network
	active   bool
	changed  func()
	watching chan struct{}
	entered  bool
	gen      int
	watchErr error
}

func NewSource() *Source {
	return &Source{watching: make(chan struct{})}
}

// FailWith makes the next Watch return err immediately.
func (s *Source) FailWith(err error) {
	s.mu.Lock()
	s.watchErr = err
	s.mu.Unlock()
}

func (s *Source) Watch(ctx context.Context, changed func()) error {
	s.mu.Lock()
	if s.watchErr != nil {
		err := s.watchErr
		s.mu.Unlock()
		return err
	}
	s.gen++
	gen := s.gen
	s.changed = changed
	if !s.entered {
		s.entered = true
		close(s.watching)
	}
	s.mu.Unlock()

	<-ctx.Done()

	s.mu.Lock()
	if s.gen == gen {
		s.changed = nil
		s.entered = false
		s.watching = make(chan struct{})
	}
	s.mu.Unlock()
	return nil
}

// Watching is closed once Watch has been entered.
func (s *Source) Watching() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *Source) ActiveNetwork(ctx context.Context) (connectivity.Network, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network, s.active
}

// Set replaces the active network without signalling.
func (s *Source) Set(n connectivity.Network) {
	s.mu.Lock()
	s.network = n
	s.active = true
	s.mu.Unlock()
}

// Clear removes the active network without signalling.
func (s *Source) Clear() {
	s.mu.Lock()
	s.network = connectivity.Network{}
	s.active = false
	s.mu.Unlock()
}

// Signal delivers a change notification. It reports false if nothing is
// watching.
func (s *Source) Signal() bool {
	s.mu.Lock()
	cb := s.changed
	s.mu.Unlock()
	if cb == nil {
		return false
	}
	cb()
	return true
}

// SetAndSignal is Set followed by Signal.
func (s *Source) SetAndSignal(n connectivity.Network) bool {
	s.Set(n)
	return s.Signal()
}

// ClearAndSignal is Clear followed by Signal.
func (s *Source) ClearAndSignal() bool {
	s.Clear()
	return s.Signal()
}

// WifiNetwork, CellularNetwork and EthernetNetwork are ready-made networks.
func WifiNetwork() connectivity.Network {
	return connectivity.Network{Name: "wlan0", Connected: true, Transports: connectivity.TransportWifi}
}

func CellularNetwork() connectivity.Network {
	return connectivity.Network{Name: "rmnet0", Connected: true, Transports: connectivity.TransportCellular}
}

func EthernetNetwork() connectivity.Network {
	return connectivity.Network{Name: "eth0", Connected: true, Transports: connectivity.TransportEthernet}
}
