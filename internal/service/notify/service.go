package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/domain"
	"notifysync/internal/metrics"
	"notifysync/internal/model"
	"notifysync/internal/queue"
	"notifysync/internal/remote"
	"notifysync/internal/repository"
	"notifysync/internal/sse"
	"notifysync/internal/synchronizer"
)

const (
	publishTimeout = 5 * time.Second
	outboxSize     = 256
)

// outgoing is an alert waiting for the publish worker, tagged with the span
// of the fetch that detected it.
type outgoing struct {
	span trace.SpanContext
	msg  queue.Message
}

// Service owns one synchronizer per notification source and fans out every
// new-item event to the alert history, the SSE hub and the message queue.
type Service struct {
	syncs     map[domain.Source]*synchronizer.Synchronizer
	store     repository.AlertRepository
	hub       *sse.Hub
	publisher queue.Publisher
	outbox    chan outgoing
	prefix    string
	log       *zap.Logger
}

func NewService(
	cfg *config.Config,
	client *remote.Client,
	store repository.AlertRepository,
	hub *sse.Hub,
	publisher queue.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	svc := newService(store, hub, publisher, cfg.RabbitPublishPrefix, logger)
	tokens := map[domain.Source]string{
		domain.SourceAdmin: cfg.AdminToken,
		domain.SourceUser:  cfg.UserToken,
	}
	for _, src := range domain.Sources() {
		svc.add(synchronizer.New(src, client.For(src), logger,
			synchronizer.WithInterval(cfg.PollInterval),
			synchronizer.WithCredential(tokens[src]),
			synchronizer.WithMetrics(m),
		))
	}
	return svc
}

func newService(store repository.AlertRepository, hub *sse.Hub, publisher queue.Publisher, prefix string, logger *zap.Logger) *Service {
	return &Service{
		syncs:     map[domain.Source]*synchronizer.Synchronizer{},
		store:     store,
		hub:       hub,
		publisher: publisher,
		outbox:    make(chan outgoing, outboxSize),
		prefix:    prefix,
		log:       logger,
	}
}

func (s *Service) add(sc *synchronizer.Synchronizer) {
	sc.Subscribe(s)
	s.syncs[sc.Source()] = sc
}

// Run polls every source and publishes detected alerts until ctx is done.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.publishLoop(ctx)
	}()
	for _, sc := range s.syncs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.Run(ctx)
		}()
	}
	wg.Wait()
}

// NotificationArrived records and broadcasts one new item, then queues it for
// publishing. Every step is best effort; a failure in one does not skip the
// others.
func (s *Service) NotificationArrived(ctx context.Context, src domain.Source, n model.Notification) {
	alert := model.Alert{
		EventID:        uuid.NewString(),
		Source:         string(src),
		NotificationID: n.ID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
		DeliveredAt:    time.Now().UTC(),
	}
	log := s.log.With(
		zap.String("source", alert.Source),
		zap.String("notification_id", n.ID),
		zap.String("event_id", alert.EventID),
	)

	if created, err := s.store.CreateAlert(ctx, alert); err != nil {
		log.Error("store create alert failed", zap.Error(err))
	} else {
		alert = created
	}

	if !s.hub.Broadcast(alert) {
		log.Warn("sse broadcast queue full, alert dropped")
	}

	body, err := json.Marshal(alert)
	if err != nil {
		log.Error("marshal alert failed", zap.Error(err))
		return
	}
	msg := queue.Message{
		RoutingKey: s.routingKey(src, n.Type),
		MessageID:  alert.EventID,
		Body:       body,
	}
	// Publishing happens off the poll loop; a slow broker must not delay
	// the next fetch.
	select {
	case s.outbox <- outgoing{span: trace.SpanContextFromContext(ctx), msg: msg}:
	default:
		log.Warn("publish queue full, alert dropped")
	}
}

func (s *Service) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-s.outbox:
			s.publish(ctx, out)
		}
	}
}

func (s *Service) publish(ctx context.Context, out outgoing) {
	pubCtx, cancel := context.WithTimeout(trace.ContextWithSpanContext(ctx, out.span), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, out.msg); err != nil {
		s.log.Error("publish alert failed",
			zap.String("routing_key", out.msg.RoutingKey),
			zap.String("event_id", out.msg.MessageID),
			zap.Error(err),
		)
	}
}

// routingKey is <prefix>.<source>.<type>. Tags the backend is not known to
// emit map to "other" so the key space stays bounded.
func (s *Service) routingKey(src domain.Source, typ string) string {
	if !domain.IsKnownNotificationType(typ) {
		typ = "other"
	}
	return fmt.Sprintf("%s.%s.%s", s.prefix, src, typ)
}

func (s *Service) synchronizer(src domain.Source) (*synchronizer.Synchronizer, error) {
	sc, ok := s.syncs[src]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, string(src))
	}
	return sc, nil
}

func (s *Service) State(src domain.Source) (synchronizer.State, error) {
	sc, err := s.synchronizer(src)
	if err != nil {
		return synchronizer.State{}, err
	}
	return sc.State(), nil
}

// Refresh fetches src immediately and returns the state published afterwards.
func (s *Service) Refresh(ctx context.Context, src domain.Source) (synchronizer.State, error) {
	sc, err := s.synchronizer(src)
	if err != nil {
		return synchronizer.State{}, err
	}
	sc.Refresh(ctx)
	return sc.State(), nil
}

func (s *Service) MarkAsRead(ctx context.Context, src domain.Source, id string) (synchronizer.State, error) {
	sc, err := s.synchronizer(src)
	if err != nil {
		return synchronizer.State{}, err
	}
	sc.MarkAsRead(ctx, id)
	return sc.State(), nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, src domain.Source) (synchronizer.State, error) {
	sc, err := s.synchronizer(src)
	if err != nil {
		return synchronizer.State{}, err
	}
	sc.MarkAllAsRead(ctx)
	return sc.State(), nil
}

func (s *Service) Delete(ctx context.Context, src domain.Source, id string) (synchronizer.State, error) {
	sc, err := s.synchronizer(src)
	if err != nil {
		return synchronizer.State{}, err
	}
	sc.Delete(ctx, id)
	return sc.State(), nil
}

// SetCredential replaces the bearer token of src. An empty token deactivates
// polling for that source.
func (s *Service) SetCredential(src domain.Source, token string) error {
	sc, err := s.synchronizer(src)
	if err != nil {
		return err
	}
	sc.SetCredential(token)
	return nil
}

func (s *Service) ListHistory(ctx context.Context, src domain.Source, limit int) ([]model.Alert, error) {
	if _, err := s.synchronizer(src); err != nil {
		return nil, err
	}
	history, err := s.store.ListAlerts(ctx, string(src), limit)
	if err != nil {
		s.log.Error("store list alerts failed", zap.String("source", string(src)), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	return history, nil
}
