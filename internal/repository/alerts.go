package repository

import (
	"context"

	"notifysync/internal/model"
)

type AlertRepository interface {
	CreateAlert(ctx context.Context, alert model.Alert) (model.Alert, error)
	ListAlerts(ctx context.Context, source string, limit int) ([]model.Alert, error)
}
