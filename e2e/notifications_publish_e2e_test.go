//go:build integration

package e2e

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/model"
	"notifysync/internal/queue/rabbitmq"
)

func TestPublishAndRefreshFlow(t *testing.T) {
	ctx := context.Background()
	amqpURL, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	tweak := func(cfg *config.Config) {
		cfg.RabbitMQURL = amqpURL
		cfg.RabbitExchange = "notifications"
		cfg.RabbitQueue = "notifysync.refresh"
		cfg.RabbitRefreshRoutingKey = "notifications.changed.*"
		cfg.RabbitConsumerTag = "notifysync"
	}
	cfg := &config.Config{}
	tweak(cfg)
	logger := zap.NewNop()

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()
	require.NoError(t, ch.ExchangeDeclare(cfg.RabbitExchange, "topic", true, false, false, false, nil))
	_, err = ch.QueueDeclare("alerts.e2e", true, false, false, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind("alerts.e2e", "alert.user.*", cfg.RabbitExchange, false, nil))
	deliveries, err := ch.Consume("alerts.e2e", "e2e", true, false, false, false, nil)
	require.NoError(t, err)

	s := newStack(t, time.Hour, rabbitmq.NewPublisher(cfg, logger), tweak)
	s.backend.set("utok", userSnapshot("u1"))
	s.waitForItems(t, "user", 1)

	consumer := rabbitmq.NewConsumer(s.cfg, s.svc, logger)
	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Start(consumeCtx)
	}()
	require.NoError(t, waitForConsumer(ctx, amqpURL, cfg.RabbitQueue, 5*time.Second))

	// The backend hints a change; the consumer refreshes without waiting
	// for the hour-long tick.
	s.backend.set("utok", userSnapshot("u1", "u2"))
	hint, err := json.Marshal(map[string]string{"source": "user"})
	require.NoError(t, err)
	require.NoError(t, ch.PublishWithContext(ctx, cfg.RabbitExchange, "notifications.changed.user", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        hint,
	}))

	select {
	case msg := <-deliveries:
		require.Equal(t, "alert.user.reservation_confirmed", msg.RoutingKey)
		require.NotEmpty(t, msg.MessageId)
		var alert model.Alert
		require.NoError(t, json.Unmarshal(msg.Body, &alert))
		require.Equal(t, "u2", alert.NotificationID)
		require.Equal(t, msg.MessageId, alert.EventID)
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for published alert")
	}

	cancel()
	select {
	case <-time.After(3 * time.Second):
		t.Fatalf("consumer did not stop")
	case <-errCh:
	}
}

func waitForConsumer(ctx context.Context, amqpURL, queue string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := amqp.Dial(amqpURL)
			if err != nil {
				continue
			}
			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				continue
			}
			q, err := ch.QueueInspect(queue)
			_ = ch.Close()
			_ = conn.Close()
			if err != nil {
				continue
			}
			if q.Consumers > 0 {
				return nil
			}
		}
	}
}

func setupRabbitMQContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.12-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	amqpURL := "amqp://guest:guest@" + host + ":" + port.Port() + "/"

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return amqpURL, cleanup
}
