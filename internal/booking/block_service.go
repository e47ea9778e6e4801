package booking

import (
	"context"
	"errors"
	"floorkeeper/internal/events"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

type blockDraft struct {
	block models.Block
	loc   Location
}

func (s *Service) blockDraft(req *models.BlockRequest) (*blockDraft, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "titulo", Message: "is required"}
	}
	switch req.Type {
	case models.BlockMaintenance, models.BlockEvent, models.BlockPrivateBooking, models.BlockOther:
	default:
		return nil, &ValidationError{Field: "tipo", Message: "must be one of mantenimiento, evento, reserva_privada, otro"}
	}

	loc, err := Target{
		Kind:    req.LocationType,
		TableID: req.TableID,
		ZoneID:  req.ZoneID,
		FloorID: req.FloorID,
	}.Check()
	if err != nil {
		return nil, err
	}

	start, end, err := ParseWindow(req.StartsAt, req.EndsAt, s.loc, BlockWindowRules)
	if err != nil {
		return nil, err
	}

	d := &blockDraft{
		block: models.Block{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Type:        req.Type,
			StartsAt:    start.In(s.loc),
			EndsAt:      end.In(s.loc),
			Notes:       req.Notes,
			Reason:      req.Reason,
		},
		loc: loc,
	}
	setBlockLocation(&d.block, loc)
	return d, nil
}

// setBlockLocation writes exactly one of the three location columns
func setBlockLocation(block *models.Block, loc Location) {
	id := loc.ID
	block.TableID, block.ZoneID, block.FloorID = nil, nil, nil
	switch loc.Kind {
	case models.LocationTable:
		block.TableID = &id
	case models.LocationZone:
		block.ZoneID = &id
	case models.LocationFloor:
		block.FloorID = &id
	}
}

// claim resolves a block location, locks it together with any extra scope and rejects
// conflicts. self is the block being edited or activated, uuid.Nil on create.
func (s *Service) claim(ctx context.Context, loc Location, start, end time.Time, self uuid.UUID, extra ...Scope) (Scope, error) {
	scope, err := s.resolver.Resolve(ctx, loc)
	if err != nil {
		return Scope{}, err
	}

	keys := scope.LockKeys()
	for _, e := range extra {
		keys = append(keys, e.LockKeys()...)
	}
	if err := s.repos.Tx.LockScope(ctx, keys); err != nil {
		return Scope{}, err
	}

	conflicts, err := s.detector.Find(ctx, Entry{
		Kind:  KindBlock,
		ID:    self,
		Start: start,
		End:   end,
		Scope: scope,
	})
	if err != nil {
		return Scope{}, err
	}
	if len(conflicts) > 0 {
		return Scope{}, &ConflictError{Conflicts: conflicts}
	}
	return scope, nil
}

// CreateBlock schedules a new programado block
func (s *Service) CreateBlock(ctx context.Context, req *models.BlockRequest, actor *uuid.UUID) (*models.Block, error) {
	d, err := s.blockDraft(req)
	if err != nil {
		return nil, err
	}
	if err := ValidateWindow(d.block.StartsAt, d.block.EndsAt, s.now(), BlockWindowRules); err != nil {
		return nil, err
	}

	var out *models.Block
	o := &outbox{}
	err = s.inScope(ctx, func(ctx context.Context) error {
		if _, err := s.claim(ctx, d.loc, d.block.StartsAt, d.block.EndsAt, uuid.Nil); err != nil {
			return err
		}

		block := d.block
		block.Status = models.BlockScheduled
		block.CreatedBy = actor
		if err := s.repos.Blocks.Create(ctx, &block); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityBlock, block.ID, models.AuditActionCreate, "", string(block.Status), "", actor); err != nil {
			return err
		}

		created, err := s.repos.Blocks.GetByID(ctx, block.ID)
		if err != nil {
			return err
		}
		out = created
		o.add(s.lifecycleEvent(events.BlockPrefix, models.AuditActionCreate, block.ID, "", string(block.Status), ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// UpdateBlock replaces the editable fields of a programado or activo block. Moving an
// active block withdraws its new tables and restores the ones it left.
func (s *Service) UpdateBlock(ctx context.Context, id uuid.UUID, req *models.BlockRequest, actor *uuid.UUID) (*models.Block, error) {
	d, err := s.blockDraft(req)
	if err != nil {
		return nil, err
	}

	var out *models.Block
	o := &outbox{}
	err = s.inScope(ctx, func(ctx context.Context) error {
		existing, err := s.lockBlock(ctx, id)
		if err != nil {
			return err
		}
		if !existing.Status.IsLive() {
			return s.illegalBlock(existing, ActionUpdate)
		}

		now := s.now()
		rules := BlockWindowRules
		rules.AllowPastStart = !existing.StartsAt.After(now)
		if err := ValidateWindow(d.block.StartsAt, d.block.EndsAt, now, rules); err != nil {
			return err
		}

		oldScope, err := s.resolver.scopeOfBlock(ctx, existing)
		if err != nil {
			return err
		}
		scope, err := s.claim(ctx, d.loc, d.block.StartsAt, d.block.EndsAt, existing.ID, oldScope)
		if err != nil {
			return err
		}

		updated := d.block
		updated.ID = existing.ID
		updated.Status = existing.Status
		updated.CancelReason = existing.CancelReason
		updated.CreatedBy = existing.CreatedBy
		if err := s.repos.Blocks.Update(ctx, &updated); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityBlock, id, models.AuditActionUpdate, string(existing.Status), string(updated.Status), "", actor); err != nil {
			return err
		}

		if updated.Status == models.BlockActive {
			if err := s.withdrawTables(ctx, o, scope.Tables, &updated); err != nil {
				return err
			}
			released := make([]uuid.UUID, 0)
			for _, t := range oldScope.Tables {
				if !containsID(scope.Tables, t) {
					released = append(released, t)
				}
			}
			if err := s.restoreTables(ctx, o, released, id, "bloqueo:"+id.String(), withdrawnManaged); err != nil {
				return err
			}
		}

		out, err = s.repos.Blocks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.add(s.lifecycleEvent(events.BlockPrefix, models.AuditActionUpdate, id, string(existing.Status), string(updated.Status), ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// ActivateBlock puts a programado block into effect. Conflicts are checked again since
// the hierarchy or the bookings may have changed since the block was created.
func (s *Service) ActivateBlock(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Block, error) {
	var out *models.Block
	o := &outbox{}
	err := s.inScope(ctx, func(ctx context.Context) error {
		block, err := s.lockBlock(ctx, id)
		if err != nil {
			return err
		}

		to, ok := NextBlockStatus(block.Status, ActionActivate)
		if !ok {
			return s.illegalBlock(block, ActionActivate)
		}
		if !s.now().Before(block.EndsAt) {
			return &ValidationError{Field: "fecha_fin", Message: "block window has already ended"}
		}

		scope, err := s.claim(ctx, blockLocation(block), block.StartsAt, block.EndsAt, block.ID)
		if err != nil {
			return err
		}

		from := block.Status
		block.Status = to
		if err := s.repos.Blocks.Update(ctx, block); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityBlock, id, models.AuditActionActivate, string(from), string(to), "", actor); err != nil {
			return err
		}
		if err := s.withdrawTables(ctx, o, scope.Tables, block); err != nil {
			return err
		}

		out, err = s.repos.Blocks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.add(s.lifecycleEvent(events.BlockPrefix, models.AuditActionActivate, id, string(from), string(to), ""))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// CompleteBlock ends an activo block and restores its tables
func (s *Service) CompleteBlock(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Block, error) {
	return s.finishBlock(ctx, id, ActionComplete, "", actor)
}

// CancelBlock cancels a programado or activo block. A motive is mandatory.
func (s *Service) CancelBlock(ctx context.Context, id uuid.UUID, reason string, actor *uuid.UUID) (*models.Block, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "motivo", Message: "is required to cancel"}
	}
	return s.finishBlock(ctx, id, ActionCancel, reason, actor)
}

func (s *Service) finishBlock(ctx context.Context, id uuid.UUID, action Action, reason string, actor *uuid.UUID) (*models.Block, error) {
	var out *models.Block
	o := &outbox{}
	err := s.inScope(ctx, func(ctx context.Context) error {
		block, err := s.lockBlock(ctx, id)
		if err != nil {
			return err
		}

		to, ok := NextBlockStatus(block.Status, action)
		if !ok {
			return s.illegalBlock(block, action)
		}

		scope, err := s.resolver.scopeOfBlock(ctx, block)
		if err != nil {
			return err
		}
		if err := s.lock(ctx, scope); err != nil {
			return err
		}

		from := block.Status
		block.Status = to
		if action == ActionCancel {
			block.CancelReason = &reason
		}
		if err := s.repos.Blocks.Update(ctx, block); err != nil {
			return err
		}
		if err := s.audit(ctx, models.EntityBlock, id, models.AuditAction(action), string(from), string(to), reason, actor); err != nil {
			return err
		}
		if from == models.BlockActive {
			if err := s.restoreTables(ctx, o, scope.Tables, id, "bloqueo:"+id.String(), withdrawnManaged); err != nil {
				return err
			}
		}

		out, err = s.repos.Blocks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.add(s.lifecycleEvent(events.BlockPrefix, models.AuditAction(action), id, string(from), string(to), reason))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}

// GetBlock returns one block
func (s *Service) GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	return s.getBlock(ctx, id)
}

// BlockHistory returns the lifecycle audit trail of a block, oldest first
func (s *Service) BlockHistory(ctx context.Context, id uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.getBlock(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.AuditLogs.ListByEntity(ctx, models.EntityBlock, id)
}

func (s *Service) getBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	block, err := s.repos.Blocks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "bloqueo", ID: id.String()}
	}
	return block, err
}

// lockBlock reads the block under its row lock
func (s *Service) lockBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	block, err := s.repos.Blocks.GetForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "bloqueo", ID: id.String()}
	}
	return block, err
}

func (s *Service) illegalBlock(block *models.Block, action Action) error {
	err := &IllegalTransitionError{
		Entity:  models.EntityBlock,
		ID:      block.ID,
		From:    string(block.Status),
		Action:  string(action),
		Allowed: BlockActionsFrom(block.Status),
	}
	log.Printf("booking: illegal transition: bloqueo %s is %s, attempted %s", block.ID, block.Status, action)
	return err
}
