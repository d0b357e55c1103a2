package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/connmon/internal/runtime"
)

// DefaultDebounce is the minimum interval between two notifications in the
// same direction.
const DefaultDebounce = 3 * time.Second

// Tracker classifies the active network from a Source and notifies
// registered listeners, debounced per direction, through an Executor.
type Tracker struct {
	source   Source
	executor Executor
	clock    clock.Clock
	debounce time.Duration
	notifier Notifier
	message  string
	recorder Recorder
	logger   *log.Entry

	mu             sync.RWMutex
	initialized    bool
	classification Classification
	iface          string
	changedAt      time.Time
	lastFired      map[Direction]time.Time
	listeners      map[string]*entry
	warned         bool
	cancel         context.CancelFunc
	watchDone      chan struct{}
	watchErr       chan error

	subsMu           sync.Mutex
	subs             map[int]*runtime.SubQueue[Event]
	nextSubscriberID int
}

type Option func(*Tracker)

func WithExecutor(e Executor) Option {
	return func(t *Tracker) { t.executor = e }
}

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func WithDebounce(d time.Duration) Option {
	return func(t *Tracker) { t.debounce = d }
}

func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithMessage overrides DefaultNoConnectionMessage.
func WithMessage(msg string) Option {
	return func(t *Tracker) { t.message = msg }
}

func WithRecorder(r Recorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

func WithLogger(l *log.Entry) Option {
	return func(t *Tracker) { t.logger = l }
}

func New(source Source, opts ...Option) *Tracker {
	t := &Tracker{
		source:    source,
		executor:  Synchronous,
		clock:     clock.New(),
		debounce:  DefaultDebounce,
		message:   DefaultNoConnectionMessage,
		recorder:  nopRecorder{},
		listeners: make(map[string]*entry),
		lastFired: make(map[Direction]time.Time),
		subs:      make(map[int]*runtime.SubQueue[Event]),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.WithField("component", "connectivity")
	}
	if t.notifier == nil {
		t.notifier = LogNotifier{Logger: t.logger}
	}
	if t.recorder == nil {
		t.recorder = nopRecorder{}
	}
	return t
}

// Initialize subscribes to the source and takes an initial reading. The
// initial reading does not notify listeners. A second call before Close
// fails with ErrAlreadyInitialized.
func (t *Tracker) Initialize(ctx context.Context) error {
	t.mu.Lock()
	if t.initialized {
		t.mu.Unlock()
		return ErrAlreadyInitialized
	}
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	errCh := make(chan error, 1)
	t.initialized = true
	t.cancel = cancel
	t.watchDone = done
	t.watchErr = errCh
	t.warned = false
	t.lastFired = make(map[Direction]time.Time)
	t.mu.Unlock()

	t.refresh(watchCtx, false)

	go func() {
		defer close(done)
		err := t.source.Watch(watchCtx, func() {
			t.logger.Trace("Connectivity change signalled")
			t.refresh(watchCtx, true)
		})
		if err != nil && watchCtx.Err() == nil {
			t.logger.WithError(err).Error("Connectivity source failed")
			errCh <- err
		}
	}()

	t.logger.WithField("debounce", t.debounce).Info("Connectivity tracker initialized")
	return nil
}

// Run initializes the tracker and blocks until ctx is done or the source
// stops, then tears the tracker down.
func (t *Tracker) Run(ctx context.Context) error {
	if err := t.Initialize(ctx); err != nil {
		return err
	}
	t.mu.RLock()
	done, errCh := t.watchDone, t.watchErr
	t.mu.RUnlock()

	select {
	case <-ctx.Done():
	case <-done:
	}
	_ = t.Close()
	<-done

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Close unsubscribes from the source, drops every listener and closes all
// event subscriptions. It is safe to call more than once.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return nil
	}
	t.initialized = false
	// Cancel before unlocking so a refresh from this watch fails its ctx
	// check even if Initialize re-arms the tracker right after.
	t.cancel()
	t.cancel = nil
	for id, e := range t.listeners {
		e.release()
		delete(t.listeners, id)
	}
	t.classification = Uninitialized
	t.iface = ""
	t.changedAt = time.Time{}
	t.mu.Unlock()

	t.recorder.SetListeners(0)

	t.subsMu.Lock()
	for id, q := range t.subs {
		q.Close()
		delete(t.subs, id)
	}
	t.subsMu.Unlock()

	t.logger.Info("Connectivity tracker closed")
	return nil
}

func (t *Tracker) Classification() (Classification, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.initialized {
		return Uninitialized, ErrNotInitialized
	}
	return t.classification, nil
}

func (t *Tracker) IsConnected() (bool, error) {
	c, err := t.Classification()
	if err != nil {
		return false, err
	}
	return c.Connected(), nil
}

func (t *Tracker) IsOnWifi() (bool, error) {
	c, err := t.Classification()
	if err != nil {
		return false, err
	}
	return c == Wifi, nil
}

func (t *Tracker) IsOnCellular() (bool, error) {
	c, err := t.Classification()
	if err != nil {
		return false, err
	}
	return c == Cellular, nil
}

func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Status{
		Initialized:    t.initialized,
		Classification: t.classification,
		Connected:      t.classification.Connected(),
		Interface:      t.iface,
		ChangedAt:      t.changedAt,
		Listeners:      len(t.listeners),
	}
}

// AddListener registers l, replacing any earlier registration of the same
// handle. A listener whose scope has already ended is ignored.
func (t *Tracker) AddListener(l *Listener) error {
	if l == nil {
		return errors.New("connectivity: nil listener")
	}
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return ErrNotInitialized
	}
	if l.scopeEnded() {
		t.mu.Unlock()
		return nil
	}
	if old, ok := t.listeners[l.id]; ok {
		old.release()
	}
	e := &entry{listener: l}
	if l.scope != nil {
		e.stopScope = l.scope.OnEnd(func() { t.removeEntry(e) })
	}
	t.listeners[l.id] = e
	n := len(t.listeners)
	t.mu.Unlock()

	t.recorder.SetListeners(n)
	t.logger.WithField("listener", l.id).Debug("Listener registered")
	return nil
}

// Listen creates a listener and registers it.
func (t *Tracker) Listen(onConnected, onDisconnected func(), opts ...ListenerOption) (*Listener, error) {
	l := NewListener(onConnected, onDisconnected, opts...)
	if err := t.AddListener(l); err != nil {
		return nil, err
	}
	return l, nil
}

// RemoveListener unregisters l. Callbacks already dispatched for l but not
// yet run are skipped.
func (t *Tracker) RemoveListener(l *Listener) error {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return ErrNotInitialized
	}
	if l == nil {
		t.mu.Unlock()
		return nil
	}
	e, ok := t.listeners[l.id]
	if ok {
		delete(t.listeners, l.id)
	}
	n := len(t.listeners)
	t.mu.Unlock()

	if ok {
		e.release()
		t.recorder.SetListeners(n)
		t.logger.WithField("listener", l.id).Debug("Listener removed")
	}
	return nil
}

func (t *Tracker) removeEntry(e *entry) {
	t.mu.Lock()
	cur, ok := t.listeners[e.listener.id]
	if ok && cur == e {
		delete(t.listeners, e.listener.id)
	}
	n := len(t.listeners)
	t.mu.Unlock()

	if ok && cur == e {
		t.recorder.SetListeners(n)
		t.logger.WithFields(log.Fields{
			"listener": e.listener.id,
			"scope":    e.listener.scope.String(),
		}).Debug("Listener removed with its scope")
	}
}

func (t *Tracker) isCurrent(e *entry) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.initialized && t.listeners[e.listener.id] == e && !e.listener.scopeEnded()
}

// RunIfConnected runs task and returns true when connected. Otherwise it
// shows the no-connection message and returns false without running task.
func (t *Tracker) RunIfConnected(task func()) (bool, error) {
	connected, err := t.IsConnected()
	if err != nil {
		return false, err
	}
	if !connected {
		t.showNoConnection()
		return false, nil
	}
	if task != nil {
		task()
	}
	return true, nil
}

// WarnDisconnected shows the no-connection message if disconnected.
func (t *Tracker) WarnDisconnected() (bool, error) {
	connected, err := t.IsConnected()
	if err != nil {
		return false, err
	}
	if connected {
		return false, nil
	}
	t.showNoConnection()
	return true, nil
}

// WarnDisconnectedOnce is WarnDisconnected, but shows the message at most
// once until the network comes back.
func (t *Tracker) WarnDisconnectedOnce() (bool, error) {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return false, ErrNotInitialized
	}
	if t.classification.Connected() || t.warned {
		t.mu.Unlock()
		return false, nil
	}
	t.warned = true
	t.mu.Unlock()

	t.notifier.Notify(t.message)
	return true, nil
}

func (t *Tracker) showNoConnection() {
	t.mu.Lock()
	t.warned = true
	t.mu.Unlock()
	t.notifier.Notify(t.message)
}

// refresh re-reads the active network. When notify is set, listeners for
// the resulting direction fire unless that direction fired within the
// debounce window.
func (t *Tracker) refresh(ctx context.Context, notify bool) {
	network, ok := t.source.ActiveNetwork(ctx)
	next := Classify(network, ok)
	iface := ""
	if ok {
		iface = network.Name
	}
	now := t.clock.Now()
	dir := next.Direction()

	t.mu.Lock()
	if !t.initialized || ctx.Err() != nil {
		t.mu.Unlock()
		return
	}
	prev := t.classification
	changed := prev != next
	t.classification = next
	t.iface = iface
	if changed {
		t.changedAt = now
	}
	if next.Connected() {
		t.warned = false
	}

	fire := false
	var targets []*entry
	if notify {
		last, seen := t.lastFired[dir]
		if !seen || now.Sub(last) >= t.debounce {
			fire = true
			t.lastFired[dir] = now
			targets = make([]*entry, 0, len(t.listeners))
			for _, e := range t.listeners {
				targets = append(targets, e)
			}
		}
	}
	t.mu.Unlock()

	if changed {
		t.logger.WithFields(log.Fields{
			"from":      prev.String(),
			"to":        next.String(),
			"interface": iface,
		}).Info("Connectivity changed")
		t.recorder.ObserveClassification(prev, next)
		t.broadcast(Event{
			Previous:  prev,
			Current:   next,
			Connected: next.Connected(),
			Interface: iface,
			At:        now,
		})
	}

	if !notify {
		return
	}
	if !fire {
		t.recorder.ObserveSuppressed(dir)
		t.logger.WithField("direction", dir.String()).Debug("Notification suppressed by debounce")
		return
	}

	t.recorder.ObserveNotification(dir)
	for _, e := range targets {
		cb := e.listener.callback(dir)
		if cb == nil {
			continue
		}
		t.executor.Execute(func() {
			if !t.isCurrent(e) {
				return
			}
			cb()
		})
	}
}

// Subscribe streams classification changes. The current state is sent
// first as a snapshot event.
func (t *Tracker) Subscribe() (<-chan Event, func()) {
	sub := runtime.NewSubQueue[Event](8)

	// Register paused before reading state so no change is missed.
	t.subsMu.Lock()
	id := t.nextSubscriberID
	t.nextSubscriberID++
	t.subs[id] = sub
	t.subsMu.Unlock()

	status := t.Status()

	sub.OutOfBandSnapshotSend(Event{
		Previous:  status.Classification,
		Current:   status.Classification,
		Connected: status.Connected,
		Interface: status.Interface,
		At:        t.clock.Now(),
		Snapshot:  true,
	})
	sub.SetPaused(false)

	unsub := func() {
		t.subsMu.Lock()
		if q, ok := t.subs[id]; ok {
			delete(t.subs, id)
			q.Close()
		}
		t.subsMu.Unlock()
	}
	return sub.Chan(), unsub
}

func (t *Tracker) broadcast(ev Event) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	for _, sub := range t.subs {
		sub.Enqueue(ev)
	}
}
