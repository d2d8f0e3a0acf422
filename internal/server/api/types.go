package api

import "github.com/sunscout/sunscout/internal/server/history"

// EvaluateRequest is the body of POST /api/v1/evaluations.
type EvaluateRequest struct {
	Address string `json:"address"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status      string        `json:"status"`
	Evaluations history.Stats `json:"evaluations"`
}

// ErrorResponse is the uniform error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
