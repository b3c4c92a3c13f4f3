// Package messagesync keeps a local mirror of the latest chat messages.
//
// Two producers feed one Reconciler: a periodic full refetch and a push feed
// of inserts and deletes. A single event loop goroutine owns the list, so
// results from both producers are applied one at a time in arrival order.
package messagesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/notify"
)

const (
	// DefaultLimit is the number of messages mirrored.
	DefaultLimit = 50
	// DefaultInterval is the time between full refetches.
	DefaultInterval = 3 * time.Second

	// MsgLoadFailed is the notification shown when a refetch fails.
	MsgLoadFailed = "Failed to load messages"
)

// ErrAlreadyStarted is returned by Start on a running or stopped Synchronizer.
var ErrAlreadyStarted = errors.New("synchronizer already started")

// Fetcher loads the newest messages. domain.MessageRepository satisfies it.
type Fetcher interface {
	Latest(ctx context.Context, limit int) ([]domain.Message, error)
}

// State is an immutable snapshot of the mirror.
type State struct {
	Messages []domain.Message
	// Loading stays true until the first refetch has completed, whether it
	// succeeded or not.
	Loading bool
}

// Listener observes every state the Synchronizer produces. Listeners run on
// the event loop and must return quickly.
type Listener func(State)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithInterval sets the refetch period.
func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLimit sets how many messages are mirrored.
func WithLimit(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithNotifier sets where fetch failures are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Synchronizer) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener registers a listener before the loop starts.
func WithListener(l Listener) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// Synchronizer mirrors the latest messages for one client session.
type Synchronizer struct {
	fetcher  Fetcher
	feed     Feed
	interval time.Duration
	limit    int
	notifier notify.Notifier
	logger   *slog.Logger

	events   chan event
	requests chan struct{}

	// owned by the event loop
	rec     *Reconciler
	loading bool

	mu        sync.RWMutex
	state     State
	listeners []Listener

	lifecycle  sync.Mutex
	started    bool
	stopped    bool
	cancel     context.CancelFunc
	cancelFeed func()
	done       chan struct{}
	inflight   sync.WaitGroup
}

// New creates a Synchronizer. feed may be nil, in which case only the
// periodic refetch keeps the mirror current.
func New(fetcher Fetcher, feed Feed, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		fetcher:  fetcher,
		feed:     feed,
		interval: DefaultInterval,
		limit:    DefaultLimit,
		notifier: notify.Discard,
		logger:   slog.Default(),
		events:   make(chan event),
		requests: make(chan struct{}, 1),
		state:    State{Loading: true},
		loading:  true,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rec = NewReconciler(s.limit)
	return s
}

// OnChange registers a listener. It may be called at any time.
func (s *Synchronizer) OnChange(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// State returns the latest snapshot.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start subscribes to the push feed, issues the first refetch and begins
// polling. A failing feed subscription is logged and polling continues.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.feed != nil {
		cancelFeed, err := s.feed.Subscribe(loopCtx, func(c Change) {
			s.post(loopCtx, pushEvent{change: c})
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Push feed unavailable, relying on polling", "event", "sync_feed_failure", "error", err)
		} else {
			s.cancelFeed = cancelFeed
		}
	}

	go s.run(loopCtx)
	return nil
}

// Stop cancels the ticker, the push subscription and any in-flight fetch,
// and waits for them to finish. Results arriving after Stop are dropped.
// Stop is idempotent and safe to call before Start.
func (s *Synchronizer) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.started || s.stopped {
		s.started = true
		s.stopped = true
		return
	}
	s.stopped = true

	s.cancel()
	<-s.done
	if s.cancelFeed != nil {
		s.cancelFeed()
	}
	s.inflight.Wait()
}

// Refetch requests an immediate full refetch. Requests made while one is
// already pending are merged.
func (s *Synchronizer) Refetch() {
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

type event interface{ isEvent() }

type fetchResult struct {
	messages []domain.Message
	err      error
}

type pushEvent struct {
	change Change
}

func (fetchResult) isEvent() {}
func (pushEvent) isEvent()   {}

func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetch(ctx)
		case <-s.requests:
			s.fetch(ctx)
		case ev := <-s.events:
			s.apply(ctx, ev)
		}
	}
}

// fetch runs the query off the loop and posts the result back.
func (s *Synchronizer) fetch(ctx context.Context) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		messages, err := s.fetcher.Latest(ctx, s.limit)
		s.post(ctx, fetchResult{messages: messages, err: err})
	}()
}

func (s *Synchronizer) post(ctx context.Context, ev event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *Synchronizer) apply(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case fetchResult:
		if e.err != nil {
			s.logger.WarnContext(ctx, "Failed to load messages", "event", "sync_fetch_failure", "error", e.err)
			s.notifier.Notify(ctx, notify.Error(MsgLoadFailed))
		} else {
			s.rec.ReplaceAll(e.messages)
		}
		s.loading = false

	case pushEvent:
		switch e.change.Kind {
		case ChangeInsert:
			s.rec.Prepend(e.change.Message)
		case ChangeDelete:
			if !s.rec.Remove(e.change.Message.ID) {
				return
			}
		default:
			return
		}
	}

	s.publish(State{Messages: s.rec.Messages(), Loading: s.loading})
}

func (s *Synchronizer) publish(st State) {
	s.mu.Lock()
	s.state = st
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}
