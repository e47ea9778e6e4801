package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pendiente"
	ReservationConfirmed ReservationStatus = "confirmada"
	ReservationCancelled ReservationStatus = "cancelada"
	ReservationCompleted ReservationStatus = "completada"
	ReservationNoShow    ReservationStatus = "no_show"
)

// IsLive reports whether the reservation still holds its table-time slot
func (s ReservationStatus) IsLive() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// ReservationType classifies a reservation
type ReservationType string

const (
	ReservationNormal      ReservationType = "normal"
	ReservationSpecial     ReservationType = "especial"
	ReservationCorporate   ReservationType = "corporativa"
	ReservationCelebration ReservationType = "celebracion"
)

// LocationKind discriminates which hierarchy level an entry targets
type LocationKind string

const (
	LocationTable LocationKind = "mesa"
	LocationZone  LocationKind = "zona"
	LocationFloor LocationKind = "piso"
)

// Reservation is a future seating commitment for a client
type Reservation struct {
	ID                  uuid.UUID         `json:"id" db:"id"`
	ClientName          string            `json:"cliente_nombre" db:"client_name"`
	ClientPhone         string            `json:"cliente_telefono" db:"client_phone"`
	ClientEmail         string            `json:"cliente_email,omitempty" db:"client_email"`
	Date                string            `json:"fecha_reserva" db:"reservation_date" example:"2026-11-20"`
	Time                string            `json:"hora_reserva" db:"reservation_time" example:"19:00"`
	DurationMinutes     int               `json:"duracion_estimada" db:"duration_minutes" example:"120"`
	PartySize           int               `json:"numero_personas" db:"party_size" example:"4"`
	Status              ReservationStatus `json:"estado" db:"status" example:"pendiente"`
	Type                ReservationType   `json:"tipo" db:"type" example:"normal"`
	ZoneID              uuid.UUID         `json:"zona_id" db:"zone_id"`
	TableID             *uuid.UUID        `json:"mesa_id" db:"table_id"`
	Notes               string            `json:"notas" db:"notes"`
	SpecialRequirements string            `json:"requerimientos_especiales" db:"special_requirements"`
	CancelReason        *string           `json:"motivo_cancelacion,omitempty" db:"cancel_reason"`
	StartsAt            time.Time         `json:"inicio" db:"starts_at"`
	EndsAt              time.Time         `json:"fin" db:"ends_at"`
	CreatedBy           *uuid.UUID        `json:"creado_por" db:"created_by"`
	CreatedAt           time.Time         `json:"fecha_creacion" db:"created_at"`
	UpdatedAt           time.Time         `json:"fecha_actualizacion" db:"updated_at"`

	// Location is the display label ("Mesa 5", "Zona Terraza"), filled on read
	Location string `json:"ubicacion" db:"-"`
}

// ReservationRequest is the body of POST /reservations and PUT /reservations/{id}
type ReservationRequest struct {
	ClientName          string          `json:"cliente_nombre" binding:"required,nospaces,max=150" example:"Ana López"`
	ClientPhone         string          `json:"cliente_telefono" binding:"required,max=30" example:"+52 55 1234 5678"`
	ClientEmail         string          `json:"cliente_email" binding:"omitempty,email,max=150"`
	Date                string          `json:"fecha_reserva" binding:"required,ymd" example:"2026-11-20"`
	Time                string          `json:"hora_reserva" binding:"required,hhmm" example:"19:00"`
	DurationMinutes     int             `json:"duracion_estimada" example:"120"`
	PartySize           int             `json:"numero_personas" example:"4"`
	Type                ReservationType `json:"tipo" binding:"omitempty,oneof=normal especial corporativa celebracion"`
	LocationType        LocationKind    `json:"tipo_ubicacion" example:"mesa"`
	TableID             *string         `json:"mesa_id"`
	ZoneID              *string         `json:"zona_id"`
	FloorID             *string         `json:"piso_id"`
	Notes               string          `json:"notas" binding:"max=1000"`
	SpecialRequirements string          `json:"requerimientos_especiales" binding:"max=1000"`
}

// TransitionRequest carries the motive for transitions that require one
type TransitionRequest struct {
	Reason string `json:"motivo" example:"Cliente llamó para cancelar"`
}
