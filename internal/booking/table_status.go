package booking

import (
	"context"
	"errors"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"

	"github.com/google/uuid"
)

// SetTableStatus records a status change made on the floor (a waiter seating guests or
// marking a table for cleaning). It takes the table lock so it cannot interleave with a
// block activation or release touching the same table.
func (s *Service) SetTableStatus(ctx context.Context, id uuid.UUID, status models.TableStatus, actor *uuid.UUID) (*models.Table, error) {
	var out *models.Table
	o := &outbox{}
	err := s.inScope(ctx, func(ctx context.Context) error {
		if err := s.lock(ctx, Scope{Tables: []uuid.UUID{id}}); err != nil {
			return err
		}

		table, err := s.repos.Tables.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "mesa", ID: id.String()}
		}
		if err != nil {
			return err
		}

		source := "personal"
		if actor != nil {
			source = "personal:" + actor.String()
		}
		if err := s.setTableStatus(ctx, o, table, status, source); err != nil {
			return err
		}
		out = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, o)
	return out, nil
}
