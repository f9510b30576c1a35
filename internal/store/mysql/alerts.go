package mysql

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"notifysync/internal/db"
	"notifysync/internal/model"
)

func (s *Store) CreateAlert(ctx context.Context, alert model.Alert) (model.Alert, error) {
	if alert.DeliveredAt.IsZero() {
		alert.DeliveredAt = time.Now().UTC()
	}
	result, err := s.queries.CreateAlert(ctx, db.CreateAlertParams{
		EventID:        alert.EventID,
		Source:         alert.Source,
		NotificationID: alert.NotificationID,
		Type:           alert.Type,
		Title:          alert.Title,
		Message:        alert.Message,
		CreatedAt:      alert.CreatedAt.UTC(),
		DeliveredAt:    alert.DeliveredAt.UTC(),
	})
	if err != nil {
		s.log.Error("create alert failed", zap.String("event_id", alert.EventID), zap.Error(err))
		return model.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Alert{}, fmt.Errorf("create alert: last insert id: %w", err)
	}
	alert.ID = id
	return alert, nil
}

func (s *Store) ListAlerts(ctx context.Context, source string, limit int) ([]model.Alert, error) {
	if limit <= 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	rows, err := s.queries.ListAlertsBySource(ctx, db.ListAlertsBySourceParams{
		Source: source,
		Limit:  int32(limit),
	})
	if err != nil {
		s.log.Error("list alerts failed", zap.String("source", source), zap.Error(err))
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	alerts := make([]model.Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, model.Alert{
			ID:             row.ID,
			EventID:        row.EventID,
			Source:         row.Source,
			NotificationID: row.NotificationID,
			Type:           row.Type,
			Title:          row.Title,
			Message:        row.Message,
			CreatedAt:      row.CreatedAt,
			DeliveredAt:    row.DeliveredAt,
		})
	}
	return alerts, nil
}
