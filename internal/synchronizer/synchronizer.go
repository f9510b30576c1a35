package synchronizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"notifysync/internal/domain"
	"notifysync/internal/metrics"
	"notifysync/internal/model"
)

// Source is the remote side of one notification domain.
type Source interface {
	Fetch(ctx context.Context, token string) (model.Snapshot, error)
	MarkRead(ctx context.Context, token, id string) error
	MarkAllRead(ctx context.Context, token string) error
	Delete(ctx context.Context, token, id string) error
}

// Listener receives one call per notification observed unread for the first
// time. Calls happen after the snapshot carrying the item was published.
type Listener interface {
	NotificationArrived(ctx context.Context, src domain.Source, n model.Notification)
}

type ListenerFunc func(ctx context.Context, src domain.Source, n model.Notification)

func (f ListenerFunc) NotificationArrived(ctx context.Context, src domain.Source, n model.Notification) {
	f(ctx, src, n)
}

// State is the published mirror: list and unread count always travel together.
type State struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}

// Synchronizer mirrors the notification snapshot of one source. Each instance
// owns its seen-set and published state; nothing is shared between instances.
type Synchronizer struct {
	source   domain.Source
	remote   Source
	log      *zap.Logger
	metrics  *metrics.Metrics
	interval time.Duration

	mu sync.Mutex
	// token is the opaque bearer credential; empty means inactive.
	token string
	// generation changes on every reconfiguration and on teardown. A response
	// is applied only if its generation is still current.
	generation uint64
	// seq numbers fetch requests; applied is the newest one published.
	seq       uint64
	applied   uint64
	primed    bool
	seen      map[string]struct{}
	state     State
	closed    bool
	listeners []Listener

	reconfigure chan struct{}
}

func New(src domain.Source, remote Source, logger *zap.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		source:      src,
		remote:      remote,
		log:         logger.With(zap.String("source", string(src))),
		interval:    DefaultInterval,
		seen:        map[string]struct{}{},
		state:       State{Notifications: []model.Notification{}},
		reconfigure: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synchronizer) Source() domain.Source {
	return s.source
}

func (s *Synchronizer) Interval() time.Duration {
	return s.interval
}

// Subscribe registers l for new-item events.
func (s *Synchronizer) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// State returns a copy of the published mirror.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.Notification, len(s.state.Notifications))
	copy(items, s.state.Notifications)
	return State{Notifications: items, UnreadCount: s.state.UnreadCount}
}

func (s *Synchronizer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && !s.closed
}

// SetCredential reconfigures the synchronizer. Any change starts a fresh
// cycle: the seen-set and published state are cleared, responses to requests
// issued under the old credential are dropped, and the polling loop restarts
// (or stops when token is empty).
func (s *Synchronizer) SetCredential(token string) {
	s.mu.Lock()
	if token == s.token {
		s.mu.Unlock()
		return
	}
	s.token = token
	s.generation++
	s.primed = false
	s.seen = map[string]struct{}{}
	s.state = State{Notifications: []model.Notification{}}
	s.mu.Unlock()

	s.metrics.SetUnread(string(s.source), 0)
	s.log.Info("notification credential changed", zap.Bool("active", token != ""))

	select {
	case s.reconfigure <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done: once immediately on activation, then every
// interval. There is no jitter and no backoff; each tick is independent.
// After Run returns the synchronizer is torn down and never applies another
// response.
func (s *Synchronizer) Run(ctx context.Context) {
	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	activate := func() {
		stop()
		select {
		case <-s.reconfigure:
		default:
		}
		if !s.Active() {
			s.log.Debug("polling idle, no credential")
			return
		}
		ticker = time.NewTicker(s.interval)
		tick = ticker.C
		s.Fetch(ctx)
	}
	defer func() {
		stop()
		s.teardown()
	}()

	s.log.Info("polling started", zap.Duration("interval", s.interval))
	activate()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("polling stopped")
			return
		case <-tick:
			s.Fetch(ctx)
		case <-s.reconfigure:
			activate()
		}
	}
}

// Refresh fetches immediately in the caller's goroutine, independent of the
// timer.
func (s *Synchronizer) Refresh(ctx context.Context) {
	s.Fetch(ctx)
}

// Fetch runs one fetch cycle. It never reports an error: failures are logged
// and leave the published state as it was.
func (s *Synchronizer) Fetch(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.token == "" {
		s.mu.Unlock()
		return
	}
	token, gen := s.token, s.generation
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	ctx, span := otel.Tracer("synchronizer").Start(ctx, "synchronizer.fetch")
	span.SetAttributes(
		attribute.String("notification.source", string(s.source)),
		attribute.Int64("notification.seq", int64(seq)),
	)
	defer span.End()

	snap, err := s.remote.Fetch(ctx, token)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		s.metrics.ObserveFetch(string(s.source), metrics.ResultError)
		s.log.Error("fetch notifications failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	items := make([]model.Notification, len(snap.Notifications))
	copy(items, snap.Notifications)

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.metrics.ObserveFetch(string(s.source), metrics.ResultDiscarded)
		s.log.Debug("dropping response from previous configuration", zap.Uint64("seq", seq))
		return
	}
	if seq < s.applied {
		applied := s.applied
		s.mu.Unlock()
		s.metrics.ObserveFetch(string(s.source), metrics.ResultStale)
		s.log.Debug("dropping stale response", zap.Uint64("seq", seq), zap.Uint64("applied", applied))
		return
	}

	var fresh []model.Notification
	if s.primed {
		fresh = Detect(s.seen, items)
	}
	s.seen = IDs(items)
	s.primed = true
	SortNewestFirst(items)
	s.state = State{Notifications: items, UnreadCount: snap.UnreadCount}
	s.applied = seq
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.metrics.ObserveFetch(string(s.source), metrics.ResultOK)
	s.metrics.SetUnread(string(s.source), snap.UnreadCount)
	s.metrics.AddNewItems(string(s.source), len(fresh))
	span.SetAttributes(
		attribute.Int("notification.count", len(items)),
		attribute.Int("notification.unread", snap.UnreadCount),
		attribute.Int("notification.new", len(fresh)),
	)

	for _, n := range fresh {
		for _, l := range listeners {
			l.NotificationArrived(ctx, s.source, n)
		}
	}
}

// MarkAsRead marks one notification read remotely and, once confirmed,
// locally. The next successful fetch overwrites the local result.
func (s *Synchronizer) MarkAsRead(ctx context.Context, id string) {
	token, gen, ok := s.credential()
	if !ok {
		return
	}
	if err := s.remote.MarkRead(ctx, token, id); err != nil {
		s.mutationFailed("mark_read", err, zap.String("notification_id", id))
		return
	}

	s.apply(gen, "mark_read", func(st *State) {
		for i := range st.Notifications {
			if st.Notifications[i].ID != id {
				continue
			}
			if !st.Notifications[i].IsRead {
				st.Notifications[i].IsRead = true
				st.UnreadCount = max(0, st.UnreadCount-1)
			}
			return
		}
	})
}

func (s *Synchronizer) MarkAllAsRead(ctx context.Context) {
	token, gen, ok := s.credential()
	if !ok {
		return
	}
	if err := s.remote.MarkAllRead(ctx, token); err != nil {
		s.mutationFailed("mark_all_read", err)
		return
	}

	s.apply(gen, "mark_all_read", func(st *State) {
		for i := range st.Notifications {
			st.Notifications[i].IsRead = true
		}
		st.UnreadCount = 0
	})
}

// Delete removes a notification. Only sources that support deletion issue a
// request; for the others the call is logged and ignored.
func (s *Synchronizer) Delete(ctx context.Context, id string) {
	if !s.source.SupportsDelete() {
		s.log.Warn("delete not supported", zap.String("notification_id", id))
		return
	}
	token, gen, ok := s.credential()
	if !ok {
		return
	}
	if err := s.remote.Delete(ctx, token, id); err != nil {
		s.mutationFailed("delete", err, zap.String("notification_id", id))
		return
	}

	s.apply(gen, "delete", func(st *State) {
		for i, n := range st.Notifications {
			if n.ID != id {
				continue
			}
			st.Notifications = append(st.Notifications[:i:i], st.Notifications[i+1:]...)
			if !n.IsRead {
				st.UnreadCount = max(0, st.UnreadCount-1)
			}
			return
		}
	})
}

func (s *Synchronizer) credential() (string, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.token == "" {
		return "", 0, false
	}
	return s.token, s.generation, true
}

func (s *Synchronizer) apply(gen uint64, op string, mutate func(*State)) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.metrics.ObserveMutation(string(s.source), op, metrics.ResultDiscarded)
		return
	}
	mutate(&s.state)
	unread := s.state.UnreadCount
	s.mu.Unlock()

	s.metrics.ObserveMutation(string(s.source), op, metrics.ResultOK)
	s.metrics.SetUnread(string(s.source), unread)
}

func (s *Synchronizer) mutationFailed(op string, err error, fields ...zap.Field) {
	s.metrics.ObserveMutation(string(s.source), op, metrics.ResultError)
	s.log.Error("notification mutation failed", append(fields, zap.String("op", op), zap.Error(err))...)
}

func (s *Synchronizer) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}
