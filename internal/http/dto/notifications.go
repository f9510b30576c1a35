package dto

import "notifysync/internal/model"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CredentialRequest replaces the bearer token of a source. An empty token
// deactivates it, so only presence of the field is required.
type CredentialRequest struct {
	Token *string `json:"token" binding:"required"`
}

type AlertsResponse struct {
	Source string        `json:"source"`
	Alerts []model.Alert `json:"alerts"`
}
