package booking

import (
	"context"
	"errors"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// reservationDraft is a validated reservation request before it touches the store
type reservationDraft struct {
	res     models.Reservation
	tableID *uuid.UUID
	zoneID  *uuid.UUID
}

func (s *Service) reservationDraft(req *models.ReservationRequest) (*reservationDraft, error) {
	if strings.TrimSpace(req.ClientName) == "" {
		return nil, &ValidationError{Field: "cliente_nombre", Message: "is required"}
	}
	if strings.TrimSpace(req.ClientPhone) == "" {
		return nil, &ValidationError{Field: "cliente_telefono", Message: "is required"}
	}
	if req.PartySize <= 0 {
		return nil, &ValidationError{Field: "numero_personas", Message: "must be greater than 0"}
	}

	typ := req.Type
	switch typ {
	case "":
		typ = models.ReservationNormal
	case models.ReservationNormal, models.ReservationSpecial, models.ReservationCorporate, models.ReservationCelebration:
	default:
		return nil, &ValidationError{Field: "tipo", Message: "must be one of normal, especial, corporativa, celebracion"}
	}

	tableID, zoneID, err := ReservationTarget{
		Kind:    req.LocationType,
		TableID: req.TableID,
		ZoneID:  req.ZoneID,
		FloorID: req.FloorID,
	}.Check()
	if err != nil {
		return nil, err
	}

	minutes := req.DurationMinutes
	if minutes == 0 {
		minutes = s.defaultMinutes
	}
	start, end, date, clock, err := ReservationWindow(req.Date, req.Time, minutes, s.loc)
	if err != nil {
		return nil, err
	}

	return &reservationDraft{
		res: models.Reservation{
			ClientName:          strings.TrimSpace(req.ClientName),
			ClientPhone:         strings.TrimSpace(req.ClientPhone),
			ClientEmail:         strings.TrimSpace(req.ClientEmail),
			Date:                date,
			Time:                clock,
			DurationMinutes:     minutes,
			PartySize:           req.PartySize,
			Type:                typ,
			Notes:               req.Notes,
			SpecialRequirements: req.SpecialRequirements,
			StartsAt:            start,
			EndsAt:              end,
		},
		tableID: tableID,
		zoneID:  zoneID,
	}, nil
}

func reservationRules(allowPast bool) WindowRules {
	return WindowRules{
		StartField:     "fecha_reserva",
		EndField:       "duracion_estimada",
		AllowPastStart: allowPast,
	}
}

// place resolves the draft's location, checks seating, locks the scope and rejects
// conflicts. self is the reservation being edited, uuid.Nil on create.
func (s *Service) place(ctx context.Context, d *reservationDraft, self uuid.UUID) error {
	scope, table, err := s.resolver.ResolveReservation(ctx, d.tableID, d.zoneID)
	if err != nil {
		return err
	}

	if table != nil {
		if !table.Active {
			return &ValidationError{Field: "mesa_id", Message: "table is not active"}
		}
		if d.res.PartySize > table.Capacity {
			return &ValidationError{
				Field:   "numero_personas",
				Message: "exceeds the table capacity of " + strconv.Itoa(table.Capacity),
			}
		}
		d.res.ZoneID = table.ZoneID
		d.res.TableID = &table.ID
	} else {
		d.res.ZoneID = *d.zoneID
		d.res.TableID = nil
	}

	if err := s.lock(ctx, scope); err != nil {
		return err
	}

	conflicts, err := s.detector.Find(ctx, Entry{
		Kind:  KindReservation,
		ID:    self,
		Start: d.res.StartsAt,
		End:   d.res.EndsAt,
		Scope: scope,
	})
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// CreateReservation books a new pendiente reservation
func (s *Service) CreateReservation(ctx context.Context, req *models.ReservationRequest, actor *uuid.UUID) (*models.Reservation, error) {
	d, err := s.reservationDraft(req)
	if err != nil {
		return nil, err
	}
	if err := ValidateWindow(d.res.StartsAt, d.res.EndsAt, s.now(), reservationRules(false)); err != nil {
		return nil, err
	}

	var out *models.Reservation
	o := &outbox{}
	err = s.inScope(ctx, func(ctx context.Context) error {
		if err := s.place(ctx, d, uuid.Nil); err != nil {
			return err
		}

		res := d.res
		res.Status = models.ReservationPending
		res.CreatedBy = actor
		if err := s.repos.Reservations.Create(ctx, &res); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityReservation, res.ID, models.AuditActionCreate, "", string(res.Status), "", actor); err != nil {
			return err
		}

		created, err := s.repos.Reservations.GetByID(ctx, res.ID)
		if err != nil {
			return err
		}
		out = created
		o.add(s.lifecycleEvent(events.ReservationPrefix, models.AuditActionCreate, res.ID, "", string(res.Status), ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// UpdateReservation replaces the editable fields of a live reservation. The past-start
// rule is waived once the stored reservation has started.
func (s *Service) UpdateReservation(ctx context.Context, id uuid.UUID, req *models.ReservationRequest, actor *uuid.UUID) (*models.Reservation, error) {
	d, err := s.reservationDraft(req)
	if err != nil {
		return nil, err
	}

	var out *models.Reservation
	o := &outbox{}
	err = s.inScope(ctx, func(ctx context.Context) error {
		existing, err := s.lockReservation(ctx, id)
		if err != nil {
			return err
		}
		if !existing.Status.IsLive() {
			return s.illegalReservation(existing, ActionUpdate)
		}

		now := s.now()
		started := !existing.StartsAt.After(now)
		if err := ValidateWindow(d.res.StartsAt, d.res.EndsAt, now, reservationRules(started)); err != nil {
			return err
		}
		if err := s.place(ctx, d, existing.ID); err != nil {
			return err
		}

		previousTable := existing.TableID
		updated := d.res
		updated.ID = existing.ID
		updated.Status = existing.Status
		updated.CancelReason = existing.CancelReason
		updated.CreatedBy = existing.CreatedBy
		if err := s.repos.Reservations.Update(ctx, &updated); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityReservation, id, models.AuditActionUpdate, string(existing.Status), string(updated.Status), "", actor); err != nil {
			return err
		}

		source := "reserva:" + id.String()
		if previousTable != nil && (updated.TableID == nil || *updated.TableID != *previousTable) {
			if err := s.restoreTables(ctx, o, []uuid.UUID{*previousTable}, id, source, reservedManaged); err != nil {
				return err
			}
		}
		if err := s.holdReservedTable(ctx, o, &updated); err != nil {
			return err
		}

		out, err = s.repos.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.add(s.lifecycleEvent(events.ReservationPrefix, models.AuditActionUpdate, id, string(existing.Status), string(updated.Status), ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// ConfirmReservation moves a pendiente reservation to confirmada
func (s *Service) ConfirmReservation(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Reservation, error) {
	return s.transitionReservation(ctx, id, ActionConfirm, "", actor)
}

// CancelReservation cancels a live reservation. A motive is mandatory.
func (s *Service) CancelReservation(ctx context.Context, id uuid.UUID, reason string, actor *uuid.UUID) (*models.Reservation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "motivo", Message: "is required to cancel"}
	}
	return s.transitionReservation(ctx, id, ActionCancel, reason, actor)
}

// CompleteReservation marks a confirmada reservation as served
func (s *Service) CompleteReservation(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Reservation, error) {
	return s.transitionReservation(ctx, id, ActionComplete, "", actor)
}

// NoShowReservation marks a confirmada reservation whose guests never arrived
func (s *Service) NoShowReservation(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Reservation, error) {
	return s.transitionReservation(ctx, id, ActionNoShow, "", actor)
}

func (s *Service) transitionReservation(ctx context.Context, id uuid.UUID, action Action, reason string, actor *uuid.UUID) (*models.Reservation, error) {
	var out *models.Reservation
	o := &outbox{}
	err := s.inScope(ctx, func(ctx context.Context) error {
		res, err := s.lockReservation(ctx, id)
		if err != nil {
			return err
		}

		to, ok := NextReservationStatus(res.Status, action)
		if !ok {
			return s.illegalReservation(res, action)
		}

		if res.TableID != nil {
			if err := s.lock(ctx, Scope{Tables: []uuid.UUID{*res.TableID}}); err != nil {
				return err
			}
		}

		from := res.Status
		res.Status = to
		if action == ActionCancel {
			res.CancelReason = &reason
		}
		if err := s.repos.Reservations.Update(ctx, res); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityReservation, id, models.AuditAction(action), string(from), string(to), reason, actor); err != nil {
			return err
		}

		if action == ActionConfirm {
			err = s.holdReservedTable(ctx, o, res)
		} else if res.TableID != nil {
			err = s.restoreTables(ctx, o, []uuid.UUID{*res.TableID}, id, "reserva:"+id.String(), reservedManaged)
		}
		if err != nil {
			return err
		}

		out, err = s.repos.Reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.add(s.lifecycleEvent(events.ReservationPrefix, models.AuditAction(action), id, string(from), string(to), reason))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// holdReservedTable marks the table of a confirmed reservation reservada while its
// window covers now and the table is otherwise free
func (s *Service) holdReservedTable(ctx context.Context, o *outbox, res *models.Reservation) error {
	if res.Status != models.ReservationConfirmed || res.TableID == nil {
		return nil
	}
	now := s.now()
	if now.Before(res.StartsAt) || !now.Before(res.EndsAt) {
		return nil
	}

	table, err := s.repos.Tables.GetByID(ctx, *res.TableID)
	if err != nil {
		return err
	}
	if table.Status != models.TableAvailable {
		return nil
	}
	return s.setTableStatus(ctx, o, table, models.TableReserved, "reserva:"+res.ID.String())
}

// GetReservation returns one reservation
func (s *Service) GetReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return s.getReservation(ctx, id)
}

// ReservationHistory returns the lifecycle audit trail of a reservation, oldest first
func (s *Service) ReservationHistory(ctx context.Context, id uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.getReservation(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.AuditLogs.ListByEntity(ctx, models.EntityReservation, id)
}

func (s *Service) getReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	res, err := s.repos.Reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "reserva", ID: id.String()}
	}
	return res, err
}

// lockReservation reads the reservation under its row lock. Status checks made inside a
// transaction must read through it.
func (s *Service) lockReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	res, err := s.repos.Reservations.GetForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "reserva", ID: id.String()}
	}
	return res, err
}

func (s *Service) illegalReservation(res *models.Reservation, action Action) error {
	err := &IllegalTransitionError{
		Entity:  models.EntityReservation,
		ID:      res.ID,
		From:    string(res.Status),
		Action:  string(action),
		Allowed: ReservationActionsFrom(res.Status),
	}
	log.Printf("booking: illegal transition: reserva %s is %s, attempted %s", res.ID, res.Status, action)
	return err
}
