package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/connmon/internal/connectivity"
	"github.com/dmdmdm-nz/connmon/pkg/version"
)

// StatusProvider is the part of the tracker the API reads from.
type StatusProvider interface {
	Status() connectivity.Status
	Subscribe() (<-chan connectivity.Event, func())
}

// Service represents the HTTP server for the API
type Service struct {
	address string
	port    int

	tracker StatusProvider
	metrics http.Handler

	mu     sync.Mutex
	server *http.Server
	closed bool
}

func NewService(host string, port int) *Service {
	return &Service{
		address: host,
		port:    port,
	}
}

func (s *Service) AttachTracker(tracker StatusProvider) {
	s.tracker = tracker
}

func (s *Service) AttachMetrics(h http.Handler) {
	s.metrics = h
}

// Start serves the API until ctx is done or Close is called.
func (s *Service) Start(ctx context.Context) error {
	if s.tracker == nil {
		return fmt.Errorf("AttachTracker was not called before Start")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	server := s.server
	s.mu.Unlock()

	log.Infof("Starting connmon API service at %s:%d", s.address, s.port)
	defer log.Info("Stopping connmon API service")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.shutdown(server)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: %w", err)
	}
}

func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	server := s.server
	s.mu.Unlock()

	if server != nil {
		s.shutdown(server)
	}
	return nil
}

func (s *Service) shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("API server did not shut down cleanly")
		_ = server.Close()
	}
}

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if !s.tracker.Status().Initialized {
				http.Error(w, "Tracker not initialized", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, s.tracker.Status())
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, version.Get())
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.HandleFunc("/ws/status", func(w http.ResponseWriter, r *http.Request) {
		StreamStatus(s, w, r)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Add("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
