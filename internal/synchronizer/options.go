package synchronizer

import (
	"time"

	"notifysync/internal/metrics"
)

const DefaultInterval = 30 * time.Second

type Option func(*Synchronizer)

// WithInterval sets the polling period. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCredential activates the synchronizer with an initial bearer token.
func WithCredential(token string) Option {
	return func(s *Synchronizer) {
		s.token = token
	}
}

func WithListener(l Listener) Option {
	return func(s *Synchronizer) {
		s.listeners = append(s.listeners, l)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}
