package models

import "time"

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status string    `json:"status" example:"healthy"`
	Store  string    `json:"store" example:"postgres"`
	Time   time.Time `json:"time" example:"2026-10-17T13:00:00Z"`
}
