package models

import (
	"time"

	"github.com/google/uuid"
)

// ZoneType classifies a zone
type ZoneType string

const (
	ZoneTypeReception    ZoneType = "recepcion"
	ZoneTypeInterior     ZoneType = "interior"
	ZoneTypeBar          ZoneType = "bar"
	ZoneTypeTerrace      ZoneType = "terraza"
	ZoneTypeVIP          ZoneType = "vip"
	ZoneTypePrivate      ZoneType = "privada"
	ZoneTypeKids         ZoneType = "infantil"
	ZoneTypeQuickService ZoneType = "servicio_rapido"
	ZoneTypeBusiness     ZoneType = "negocios"
)

// TableStatus is the live operational status of a table
type TableStatus string

const (
	TableAvailable   TableStatus = "disponible"
	TableOccupied    TableStatus = "ocupada"
	TableReserved    TableStatus = "reservada"
	TableCleaning    TableStatus = "limpieza"
	TableMaintenance TableStatus = "mantenimiento"
	TableOutOfOrder  TableStatus = "fuera_servicio"
	TableClosed      TableStatus = "cerrada"
)

// IsWithdrawn reports whether the status is one a block puts a table into
func (s TableStatus) IsWithdrawn() bool {
	return s == TableMaintenance || s == TableOutOfOrder
}

// Floor represents a top-level physical subdivision of the restaurant
type Floor struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"nombre" db:"name" example:"Planta Baja"`
	Description string     `json:"descripcion" db:"description"`
	Order       int        `json:"orden" db:"display_order"`
	Active      bool       `json:"activo" db:"active"`
	CreatedAt   time.Time  `json:"fecha_creacion" db:"created_at"`
	UpdatedAt   time.Time  `json:"fecha_actualizacion" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// Zone represents a named area within a floor
type Zone struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	FloorID     uuid.UUID  `json:"piso_id" db:"floor_id"`
	Name        string     `json:"nombre" db:"name" example:"Terraza"`
	Description string     `json:"descripcion" db:"description"`
	Type        ZoneType   `json:"tipo" db:"type" example:"terraza"`
	MaxCapacity int        `json:"capacidad_maxima" db:"max_capacity"`
	Order       int        `json:"orden" db:"display_order"`
	Active      bool       `json:"activo" db:"active"`
	Color       string     `json:"color,omitempty" db:"color"`
	Icon        string     `json:"icono,omitempty" db:"icon"`
	CreatedAt   time.Time  `json:"fecha_creacion" db:"created_at"`
	UpdatedAt   time.Time  `json:"fecha_actualizacion" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// Table represents the unit of seating
type Table struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ZoneID    uuid.UUID   `json:"zona_id" db:"zone_id"`
	Number    int         `json:"numero" db:"number" example:"5"`
	Capacity  int         `json:"capacidad" db:"capacity" example:"4"`
	Status    TableStatus `json:"estado" db:"status" example:"disponible"`
	Active    bool        `json:"activo" db:"active"`
	QRCode    *string     `json:"codigo_qr,omitempty" db:"qr_code"`
	Notes     string      `json:"notas" db:"notes"`
	CreatedAt time.Time   `json:"fecha_creacion" db:"created_at"`
	UpdatedAt time.Time   `json:"fecha_actualizacion" db:"updated_at"`
	DeletedAt *time.Time  `json:"-" db:"deleted_at"`
}

// CreateFloorRequest represents the request to create or update a floor
type CreateFloorRequest struct {
	Name        string `json:"nombre" binding:"required,nospaces,max=100" example:"Planta Baja"`
	Description string `json:"descripcion" binding:"max=500"`
	Order       int    `json:"orden" binding:"min=0"`
	Active      *bool  `json:"activo"`
}

// CreateZoneRequest represents the request to create or update a zone
type CreateZoneRequest struct {
	FloorID     string   `json:"piso_id" binding:"required,uuid"`
	Name        string   `json:"nombre" binding:"required,nospaces,max=100" example:"Terraza"`
	Description string   `json:"descripcion" binding:"max=500"`
	Type        ZoneType `json:"tipo" binding:"required,oneof=recepcion interior bar terraza vip privada infantil servicio_rapido negocios"`
	MaxCapacity int      `json:"capacidad_maxima" binding:"min=0"`
	Order       int      `json:"orden" binding:"min=0"`
	Active      *bool    `json:"activo"`
	Color       string   `json:"color" binding:"max=20"`
	Icon        string   `json:"icono" binding:"max=50"`
}

// CreateTableRequest represents the request to create or update a table
type CreateTableRequest struct {
	ZoneID   string  `json:"zona_id" binding:"required,uuid"`
	Number   int     `json:"numero" binding:"required,min=1" example:"5"`
	Capacity int     `json:"capacidad" binding:"required,min=1,max=50" example:"4"`
	Active   *bool   `json:"activo"`
	QRCode   *string `json:"codigo_qr" binding:"omitempty,max=255"`
	Notes    string  `json:"notas" binding:"max=500"`
}

// UpdateTableStatusRequest represents a waiter-driven status change
type UpdateTableStatusRequest struct {
	Status TableStatus `json:"estado" binding:"required,oneof=disponible ocupada reservada limpieza mantenimiento fuera_servicio cerrada" example:"ocupada"`
}
