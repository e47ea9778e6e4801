package booking

import (
	"context"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"log"
	"time"

	"github.com/google/uuid"
)

// SweepJobName identifies the lifecycle sweep in the scheduler
const SweepJobName = "lifecycle-sweep"

// Sweeper moves blocks along their lifecycle as their windows start and end, and marks
// tables reservada once a confirmed reservation's window arrives. Each step runs through
// the normal transactional path; a failing entry is logged and left as it was.
type Sweeper struct {
	svc *Service
}

// NewSweeper creates the sweep job for svc
func NewSweeper(svc *Service) *Sweeper {
	return &Sweeper{svc: svc}
}

// Name implements scheduler.Job
func (w *Sweeper) Name() string {
	return SweepJobName
}

// Run implements scheduler.Job
func (w *Sweeper) Run(ctx context.Context) error {
	now := w.svc.now()

	completed, err := w.completeEnded(ctx, now)
	if err != nil {
		return err
	}
	activated, err := w.activateStarted(ctx, now)
	if err != nil {
		return err
	}
	held, err := w.holdArrived(ctx, now)
	if err != nil {
		return err
	}

	if completed+activated+held > 0 {
		log.Printf("Sweep: completed %d blocks, activated %d blocks, held %d tables", completed, activated, held)
	}
	return nil
}

func (w *Sweeper) completeEnded(ctx context.Context, now time.Time) (int, error) {
	status := models.BlockActive
	blocks, err := w.svc.repos.Blocks.List(ctx, repository.BlockFilter{Status: &status, EndsBy: &now})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, b := range blocks {
		if _, err := w.svc.CompleteBlock(ctx, b.ID, nil); err != nil {
			log.Printf("Sweep: failed to complete block %s: %v", b.ID, err)
			continue
		}
		n++
	}
	return n, nil
}

func (w *Sweeper) activateStarted(ctx context.Context, now time.Time) (int, error) {
	status := models.BlockScheduled
	upTo := now.Add(time.Nanosecond)
	blocks, err := w.svc.repos.Blocks.List(ctx, repository.BlockFilter{Status: &status, To: &upTo})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, b := range blocks {
		if !now.Before(b.EndsAt) {
			continue
		}
		if _, err := w.svc.ActivateBlock(ctx, b.ID, nil); err != nil {
			log.Printf("Sweep: failed to activate block %s: %v", b.ID, err)
			continue
		}
		n++
	}
	return n, nil
}

func (w *Sweeper) holdArrived(ctx context.Context, now time.Time) (int, error) {
	live, err := w.svc.repos.Reservations.ListLive(ctx, now, now.Add(time.Nanosecond))
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range live {
		res := &live[i]
		if res.Status != models.ReservationConfirmed || res.TableID == nil {
			continue
		}

		o := &outbox{}
		err := w.svc.inScope(ctx, func(ctx context.Context) error {
			if err := w.svc.lock(ctx, Scope{Tables: []uuid.UUID{*res.TableID}}); err != nil {
				return err
			}
			return w.svc.holdReservedTable(ctx, o, res)
		})
		if err != nil {
			log.Printf("Sweep: failed to hold table for reservation %s: %v", res.ID, err)
			continue
		}
		if len(o.events) > 0 {
			n++
		}
		w.svc.flush(ctx, o)
	}
	return n, nil
}
