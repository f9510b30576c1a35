package memory

import (
	"context"
	"time"

	"notifysync/internal/model"
)

func (s *Store) CreateAlert(_ context.Context, alert model.Alert) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert.ID = s.nextID
	s.nextID++
	if alert.DeliveredAt.IsZero() {
		alert.DeliveredAt = time.Now().UTC()
	}
	s.records = append(s.records, alert)
	return alert, nil
}

// ListAlerts returns the newest alerts of source first. A non-positive limit
// returns all of them.
func (s *Store) ListAlerts(_ context.Context, source string, limit int) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Alert
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if record.Source != source {
			continue
		}
		result = append(result, record)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
