package remote

import (
	"encoding/json"
	"fmt"

	"notifysync/internal/domain"
	"notifysync/internal/model"
)

const (
	titleUrgentClaim = "🚨 Reclamo Urgente"
	titleNewClaim    = "📝 Nuevo Reclamo"
)

// TransformAdmin synthesizes the display fields of a claim-linked record.
func TransformAdmin(rec model.AdminRecord) (model.Notification, error) {
	if rec.Claim == nil {
		return model.Notification{}, fmt.Errorf("%w: notification %q has no claim", ErrMalformedRecord, rec.ID)
	}

	title := titleNewClaim
	if rec.Type == domain.NotificationTypeUrgentClaim {
		title = titleUrgentClaim
	}
	return model.Notification{
		ID:        rec.ID,
		Type:      rec.Type,
		Title:     title,
		Message:   fmt.Sprintf("%s creó un reclamo: \"%s\"", rec.Claim.User.Name, rec.Claim.Title),
		CreatedAt: rec.CreatedAt,
		IsRead:    rec.IsRead,
		Priority:  rec.Claim.Priority,
		ClaimID:   rec.Claim.ID,
	}, nil
}

func decodeAdmin(raw json.RawMessage) ([]model.Notification, error) {
	var records []model.AdminRecord
	if err := unmarshalList(raw, &records); err != nil {
		return nil, err
	}
	items := make([]model.Notification, 0, len(records))
	for _, rec := range records {
		n, err := TransformAdmin(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, nil
}

func decodeUser(raw json.RawMessage) ([]model.Notification, error) {
	var records []model.UserRecord
	if err := unmarshalList(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func unmarshalList(raw json.RawMessage, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return nil
}
