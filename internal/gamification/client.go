package gamification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/model"
)

// APIError is a non-2xx answer of the gamification endpoints. Message comes
// from the response body when the backend provides one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gamification api: %d %s", e.StatusCode, e.Message)
}

var ErrInvalidUpdate = errors.New("invalid customization update")

type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	log        *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.APITimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: validator.New(),
		log:      logger,
	}
}

func (c *Client) Profile(ctx context.Context, token string) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, http.MethodGet, "/gamification/profile", token, nil, &out)
	return out, err
}

func (c *Client) Achievements(ctx context.Context, token string) ([]model.Achievement, error) {
	var out []model.Achievement
	if err := c.do(ctx, http.MethodGet, "/gamification/achievements", token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Achievement{}
	}
	return out, nil
}

func (c *Client) Customization(ctx context.Context, token string) (model.Customization, error) {
	var out model.Customization
	err := c.do(ctx, http.MethodGet, "/gamification/customization", token, nil, &out)
	return out, err
}

// UpdateCustomization validates update before sending it and returns the
// customization stored by the backend.
func (c *Client) UpdateCustomization(ctx context.Context, token string, update model.CustomizationUpdate) (model.Customization, error) {
	if err := c.validate.Struct(update); err != nil {
		return model.Customization{}, fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}
	var out model.Customization
	err := c.do(ctx, http.MethodPut, "/gamification/customization", token, update, &out)
	return out, err
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			switch {
			case eb.Error != "":
				apiErr.Message = eb.Error
			case eb.Message != "":
				apiErr.Message = eb.Message
			}
		}
		c.log.Debug("gamification request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
