package e2e

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/gamification"
	httpserver "notifysync/internal/http"
	"notifysync/internal/http/controller"
	"notifysync/internal/metrics"
	"notifysync/internal/model"
	"notifysync/internal/queue"
	"notifysync/internal/remote"
	"notifysync/internal/service/notify"
	"notifysync/internal/sse"
	"notifysync/internal/store/memory"
	"notifysync/internal/synchronizer"
)

func ginTestMode() {
	gin.SetMode(gin.TestMode)
}

type noopPublisher struct{}

func (n *noopPublisher) Publish(context.Context, queue.Message) error {
	return nil
}

// fakeBackend answers snapshot requests with the body registered for the
// caller's bearer token. Unknown tokens get 401.
type fakeBackend struct {
	mu     sync.Mutex
	bodies map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bodies: map[string]string{
		"atok": `{"notifications":[],"unreadCount":0}`,
		"utok": `{"notifications":[],"unreadCount":0}`,
	}}
}

func (b *fakeBackend) set(token, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[token] = body
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	body, ok := b.bodies[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_, _ = w.Write([]byte(body))
}

func userSnapshot(ids ...string) string {
	type item struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"createdAt"`
		IsRead    bool      `json:"isRead"`
	}
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	items := make([]item, 0, len(ids))
	for i, id := range ids {
		items = append(items, item{
			ID:        id,
			Type:      "reservation_confirmed",
			Title:     "Reserva " + id,
			Message:   "Sala " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	body, _ := json.Marshal(map[string]any{"notifications": items, "unreadCount": len(items)})
	return string(body)
}

type stack struct {
	server  *httptest.Server
	backend *fakeBackend
	svc     *notify.Service
	hub     *sse.Hub
	cfg     *config.Config
}

// newStack wires the full HTTP surface against a fake backend and starts
// the hub and both polling loops.
func newStack(t *testing.T, pollInterval time.Duration, publisher queue.Publisher, tweak func(*config.Config)) *stack {
	t.Helper()
	ginTestMode()

	backend := newFakeBackend()
	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	cfg := &config.Config{
		HTTPAddr:            ":0",
		APIBaseURL:          api.URL,
		APITimeout:          2 * time.Second,
		AdminToken:          "atok",
		UserToken:           "utok",
		PollInterval:        pollInterval,
		RabbitPublishPrefix: "alert",
		SSEHeartbeat:        5 * time.Second,
		HistoryLimit:        10,
		OTELServiceName:     "notifysync-e2e",
	}
	if tweak != nil {
		tweak(cfg)
	}
	if publisher == nil {
		publisher = &noopPublisher{}
	}

	logger := zap.NewNop()
	m := metrics.New()
	hub := sse.NewHub()
	svc := notify.NewService(cfg, remote.NewClient(cfg, logger), memory.New(logger), hub, publisher, m, logger)
	handler := controller.NewHandler(cfg, svc, hub, gamification.NewClient(cfg, logger), logger)
	router := httpserver.NewRouter(cfg, handler, m, logger)

	// Cleanups run last-in first-out: the server drains its open streams
	// before the hub and pollers stop.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	go hub.Run(ctx)
	go svc.Run(ctx)

	return &stack{server: server, backend: backend, svc: svc, hub: hub, cfg: cfg}
}

func (s *stack) state(t *testing.T, source string) synchronizer.State {
	t.Helper()
	res, err := http.Get(s.server.URL + "/sources/" + source + "/notifications")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var state synchronizer.State
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	return state
}

func (s *stack) waitForItems(t *testing.T, source string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(s.state(t, source).Notifications) == n
	}, 3*time.Second, 10*time.Millisecond)
}

func (s *stack) openSSE(t *testing.T, path string) (*sseReader, func()) {
	t.Helper()
	res, err := http.Get(s.server.URL + path)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	return newSSEReader(res.Body), func() { _ = res.Body.Close() }
}

func TestPollingDeliversNewNotificationsOverSSE(t *testing.T) {
	s := newStack(t, 20*time.Millisecond, nil, nil)
	s.backend.set("utok", userSnapshot("u1"))
	s.waitForItems(t, "user", 1)

	events, closeSSE := s.openSSE(t, "/sse/user?limit=0")
	defer closeSSE()
	// The hub registers the client before history is read; once the
	// subscriber count shows up, live alerts cannot be missed.
	require.Eventually(t, func() bool { return s.hub.Subscribers("user") == 1 }, time.Second, 5*time.Millisecond)

	s.backend.set("utok", userSnapshot("u1", "u2"))

	data, err := events.next(3 * time.Second)
	require.NoError(t, err)
	var alert model.Alert
	require.NoError(t, json.Unmarshal([]byte(data), &alert))
	require.Equal(t, "user", alert.Source)
	require.Equal(t, "u2", alert.NotificationID)
	require.Equal(t, "Reserva u2", alert.Title)
	require.NotEmpty(t, alert.EventID)

	state := s.state(t, "user")
	require.Equal(t, 2, state.UnreadCount)
	require.Equal(t, "u2", state.Notifications[0].ID)
	require.Equal(t, "u1", state.Notifications[1].ID)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newStack(t, 20*time.Millisecond, nil, nil)
	s.backend.set("utok", userSnapshot("u1"))
	s.waitForItems(t, "user", 1)

	res, err := http.Get(s.server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), `notifysync_fetches_total{result="ok",source="user"}`)
	require.Contains(t, string(body), `notifysync_unread_notifications{source="user"} 1`)
}

func TestHealth(t *testing.T) {
	s := newStack(t, time.Hour, nil, nil)
	res, err := http.Get(s.server.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

// sseReader keeps one buffered reader per stream so that consecutive reads
// do not lose buffered frames.
type sseReader struct {
	frames chan sseFrame
}

type sseFrame struct {
	data string
	err  error
}

func newSSEReader(body io.Reader) *sseReader {
	r := &sseReader{frames: make(chan sseFrame, 16)}
	go func() {
		reader := bufio.NewReader(body)
		var dataLines []string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				r.frames <- sseFrame{err: err}
				close(r.frames)
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				if len(dataLines) > 0 {
					r.frames <- sseFrame{data: strings.Join(dataLines, "\n")}
					dataLines = nil
				}
				continue
			}
			if strings.HasPrefix(line, ":") {
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			}
		}
	}()
	return r
}

func (r *sseReader) next(timeout time.Duration) (string, error) {
	select {
	case frame, ok := <-r.frames:
		if !ok {
			return "", io.EOF
		}
		return frame.data, frame.err
	case <-time.After(timeout):
		return "", context.DeadlineExceeded
	}
}
