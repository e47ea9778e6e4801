package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the lifecycle action performed on an entity
type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionConfirm  AuditAction = "confirm"
	AuditActionCancel   AuditAction = "cancel"
	AuditActionComplete AuditAction = "complete"
	AuditActionNoShow   AuditAction = "no_show"
	AuditActionActivate AuditAction = "activate"
)

// Entity types recorded in the audit log
const (
	EntityReservation = "reserva"
	EntityBlock       = "bloqueo"
)

// AuditLog is one lifecycle transition of a reservation or block
type AuditLog struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	EntityType string      `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID   `json:"entity_id" db:"entity_id"`
	Action     AuditAction `json:"action" db:"action"`
	FromStatus string      `json:"from_status,omitempty" db:"from_status"`
	ToStatus   string      `json:"to_status" db:"to_status"`
	Reason     string      `json:"motivo,omitempty" db:"reason"`
	UserID     *uuid.UUID  `json:"user_id,omitempty" db:"user_id"` // nil for system-initiated transitions
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
