package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/domain"
	"notifysync/internal/model"
)

var (
	ErrMalformedRecord   = errors.New("malformed notification record")
	ErrDeleteUnsupported = errors.New("delete is not supported for this source")
)

// StatusError is returned for any non-2xx answer. Notification endpoints do
// not carry a usable error body, so only the status is kept.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Client talks to the backend notification endpoints of every source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.APITimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logger,
	}
}

// For binds the client to one source.
func (c *Client) For(src domain.Source) *SourceClient {
	return &SourceClient{client: c, source: src}
}

// SourceClient issues the fetch and mutation requests of a single source.
type SourceClient struct {
	client *Client
	source domain.Source
}

type snapshotEnvelope struct {
	Notifications json.RawMessage `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
}

// Fetch returns the current snapshot, already transformed into display shape.
func (s *SourceClient) Fetch(ctx context.Context, token string) (model.Snapshot, error) {
	var env snapshotEnvelope
	if err := s.client.do(ctx, http.MethodGet, s.base(), token, &env); err != nil {
		return model.Snapshot{}, err
	}

	var (
		items []model.Notification
		err   error
	)
	switch s.source {
	case domain.SourceAdmin:
		items, err = decodeAdmin(env.Notifications)
	default:
		items, err = decodeUser(env.Notifications)
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%s notifications: %w", s.source, err)
	}
	return model.Snapshot{Notifications: items, UnreadCount: env.UnreadCount}, nil
}

func (s *SourceClient) MarkRead(ctx context.Context, token, id string) error {
	return s.client.do(ctx, http.MethodPost, s.base()+"/"+url.PathEscape(id)+"/mark-read", token, nil)
}

func (s *SourceClient) MarkAllRead(ctx context.Context, token string) error {
	return s.client.do(ctx, http.MethodPost, s.base()+"/mark-all-read", token, nil)
}

func (s *SourceClient) Delete(ctx context.Context, token, id string) error {
	if !s.source.SupportsDelete() {
		return fmt.Errorf("%w: %s", ErrDeleteUnsupported, s.source)
	}
	return s.client.do(ctx, http.MethodDelete, s.base()+"/"+url.PathEscape(id), token, nil)
}

func (s *SourceClient) base() string {
	return "/" + string(s.source) + "/notifications"
}

func (c *Client) do(ctx context.Context, method, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Debug("backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
		)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
