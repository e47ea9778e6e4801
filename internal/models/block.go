package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockStatus is the lifecycle state of a block
type BlockStatus string

const (
	BlockScheduled BlockStatus = "programado"
	BlockActive    BlockStatus = "activo"
	BlockCompleted BlockStatus = "completado"
	BlockCancelled BlockStatus = "cancelado"
)

// IsLive reports whether the block still withdraws its scope from service
func (s BlockStatus) IsLive() bool {
	return s == BlockScheduled || s == BlockActive
}

// BlockType classifies a block
type BlockType string

const (
	BlockMaintenance    BlockType = "mantenimiento"
	BlockEvent          BlockType = "evento"
	BlockPrivateBooking BlockType = "reserva_privada"
	BlockOther          BlockType = "otro"
)

// Block withdraws a table, zone or floor from service for a time window.
// Exactly one of TableID, ZoneID and FloorID is set.
type Block struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Title        string      `json:"titulo" db:"title" example:"Pintura de terraza"`
	Description  string      `json:"descripcion" db:"description"`
	Type         BlockType   `json:"tipo" db:"type" example:"mantenimiento"`
	Status       BlockStatus `json:"estado" db:"status" example:"programado"`
	StartsAt     time.Time   `json:"fecha_inicio" db:"starts_at"`
	EndsAt       time.Time   `json:"fecha_fin" db:"ends_at"`
	TableID      *uuid.UUID  `json:"mesa_id" db:"table_id"`
	ZoneID       *uuid.UUID  `json:"zona_id" db:"zone_id"`
	FloorID      *uuid.UUID  `json:"piso_id" db:"floor_id"`
	Notes        string      `json:"notas" db:"notes"`
	Reason       string      `json:"motivo" db:"reason"`
	CancelReason *string     `json:"motivo_cancelacion,omitempty" db:"cancel_reason"`
	CreatedBy    *uuid.UUID  `json:"creado_por" db:"created_by"`
	CreatedAt    time.Time   `json:"fecha_creacion" db:"created_at"`
	UpdatedAt    time.Time   `json:"fecha_actualizacion" db:"updated_at"`

	// Location is the display label ("Piso Planta Baja"), filled on read
	Location string `json:"ubicacion" db:"-"`
	// DurationHours is computed from the window
	DurationHours float64 `json:"duracion_horas" db:"-"`
}

// LocationKind returns the hierarchy level the block targets
func (b *Block) LocationKind() LocationKind {
	switch {
	case b.TableID != nil:
		return LocationTable
	case b.ZoneID != nil:
		return LocationZone
	default:
		return LocationFloor
	}
}

// ComputeDuration fills DurationHours from the window
func (b *Block) ComputeDuration() {
	b.DurationHours = b.EndsAt.Sub(b.StartsAt).Hours()
}

// BlockRequest is the body of POST /blocks and PUT /blocks/{id}
type BlockRequest struct {
	Title        string       `json:"titulo" binding:"required,nospaces,max=150" example:"Pintura de terraza"`
	Description  string       `json:"descripcion" binding:"max=1000"`
	Type         BlockType    `json:"tipo" binding:"required,oneof=mantenimiento evento reserva_privada otro" example:"mantenimiento"`
	StartsAt     string       `json:"fecha_inicio" binding:"required" example:"2026-11-20T10:00:00-06:00"`
	EndsAt       string       `json:"fecha_fin" binding:"required" example:"2026-11-20T14:00:00-06:00"`
	LocationType LocationKind `json:"tipo_ubicacion" example:"piso"`
	TableID      *string      `json:"mesa_id"`
	ZoneID       *string      `json:"zona_id"`
	FloorID      *string      `json:"piso_id"`
	Notes        string       `json:"notas" binding:"max=1000"`
	Reason       string       `json:"motivo" binding:"max=500"`
}
