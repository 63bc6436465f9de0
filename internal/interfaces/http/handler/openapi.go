package handler

import "github.com/shopadmin/backoffice/internal/interfaces/http/dto"

// Envelope shapes referenced from the swag annotations. Handlers write
// dto.Response; these only give the generated document typed payloads.

// APIResponse is dto.Response with its data field typed as T.
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is what every failed request answers with.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
