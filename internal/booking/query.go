package booking

import (
	"context"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Listing window
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListParams are the raw listing filters as received on the query string.
// Every set filter must match.
type ListParams struct {
	Status   string `form:"estado"`
	Type     string `form:"tipo"`
	ZoneID   string `form:"zona_id"`
	TableID  string `form:"mesa_id"`
	From     string `form:"fecha_desde"`
	To       string `form:"fecha_hasta"`
	Location string `form:"ubicacion"`
	Limit    string `form:"limit"`
	Offset   string `form:"offset"`
}

// listWindow is the parsed, validated part shared by both listings
type listWindow struct {
	zoneID   *uuid.UUID
	tableID  *uuid.UUID
	from     *time.Time
	to       *time.Time
	location *string
	limit    int
	offset   int
}

func (s *Service) parseList(p ListParams) (*listWindow, error) {
	w := &listWindow{limit: DefaultListLimit}

	var err error
	if w.zoneID, err = optionalID(p.ZoneID, "zona_id"); err != nil {
		return nil, err
	}
	if w.tableID, err = optionalID(p.TableID, "mesa_id"); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(p.From); raw != "" {
		t, ok := s.parseBound(raw, false)
		if !ok {
			return nil, &ValidationError{Field: "fecha_desde", Message: "must be YYYY-MM-DD or RFC 3339"}
		}
		w.from = &t
	}
	if raw := strings.TrimSpace(p.To); raw != "" {
		t, ok := s.parseBound(raw, true)
		if !ok {
			return nil, &ValidationError{Field: "fecha_hasta", Message: "must be YYYY-MM-DD or RFC 3339"}
		}
		w.to = &t
	}
	if w.from != nil && w.to != nil && !w.from.Before(*w.to) {
		return nil, &ValidationError{Field: "fecha_hasta", Message: "must be after fecha_desde"}
	}

	if loc := strings.TrimSpace(p.Location); loc != "" {
		w.location = &loc
	}

	if raw := strings.TrimSpace(p.Limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, &ValidationError{Field: "limit", Message: "must be a positive integer"}
		}
		if n > MaxListLimit {
			n = MaxListLimit
		}
		w.limit = n
	}
	if raw := strings.TrimSpace(p.Offset); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &ValidationError{Field: "offset", Message: "must be a non-negative integer"}
		}
		w.offset = n
	}

	return w, nil
}

// parseBound reads a date filter. A bare date means the start of that day for
// fecha_desde and the start of the next day for fecha_hasta, so both ends are inclusive days.
func (s *Service) parseBound(raw string, upper bool) (time.Time, bool) {
	if day, err := time.ParseInLocation("2006-01-02", raw, s.loc); err == nil {
		if upper {
			day = day.AddDate(0, 0, 1)
		}
		return day, true
	}
	return ParseInstant(raw, s.loc)
}

func optionalID(raw, field string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ListReservations returns the reservations matching every given filter
func (s *Service) ListReservations(ctx context.Context, p ListParams) (*models.Page, error) {
	w, err := s.parseList(p)
	if err != nil {
		return nil, err
	}

	filter := repository.ReservationFilter{
		ZoneID:   w.zoneID,
		TableID:  w.tableID,
		From:     w.from,
		To:       w.to,
		Location: w.location,
		Limit:    &w.limit,
		Offset:   &w.offset,
	}
	if raw := strings.TrimSpace(p.Status); raw != "" {
		status := models.ReservationStatus(raw)
		switch status {
		case models.ReservationPending, models.ReservationConfirmed, models.ReservationCancelled,
			models.ReservationCompleted, models.ReservationNoShow:
		default:
			return nil, &ValidationError{Field: "estado", Message: "must be one of pendiente, confirmada, cancelada, completada, no_show"}
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(p.Type); raw != "" {
		typ := models.ReservationType(raw)
		switch typ {
		case models.ReservationNormal, models.ReservationSpecial, models.ReservationCorporate, models.ReservationCelebration:
		default:
			return nil, &ValidationError{Field: "tipo", Message: "must be one of normal, especial, corporativa, celebracion"}
		}
		filter.Type = &typ
	}

	items, err := s.repos.Reservations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Reservation{}
	}
	return &models.Page{Items: items, Limit: w.limit, Offset: w.offset}, nil
}

// ListBlocks returns the blocks matching every given filter. A zona_id filter also
// matches blocks on one of the zone's tables or on its floor.
func (s *Service) ListBlocks(ctx context.Context, p ListParams) (*models.Page, error) {
	w, err := s.parseList(p)
	if err != nil {
		return nil, err
	}
	if w.tableID != nil {
		return nil, &ValidationError{Field: "mesa_id", Message: "is not a block filter; use zona_id"}
	}

	filter := repository.BlockFilter{
		ZoneID:   w.zoneID,
		From:     w.from,
		To:       w.to,
		Location: w.location,
		Limit:    &w.limit,
		Offset:   &w.offset,
	}
	if raw := strings.TrimSpace(p.Status); raw != "" {
		status := models.BlockStatus(raw)
		switch status {
		case models.BlockScheduled, models.BlockActive, models.BlockCompleted, models.BlockCancelled:
		default:
			return nil, &ValidationError{Field: "estado", Message: "must be one of programado, activo, completado, cancelado"}
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(p.Type); raw != "" {
		typ := models.BlockType(raw)
		switch typ {
		case models.BlockMaintenance, models.BlockEvent, models.BlockPrivateBooking, models.BlockOther:
		default:
			return nil, &ValidationError{Field: "tipo", Message: "must be one of mantenimiento, evento, reserva_privada, otro"}
		}
		filter.Type = &typ
	}

	items, err := s.repos.Blocks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Block{}
	}
	return &models.Page{Items: items, Limit: w.limit, Offset: w.offset}, nil
}
