package postgres

import (
	"errors"
	"floorkeeper/internal/repository"

	"github.com/lib/pq"
)

// mapError translates driver errors into repository sentinels
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code.Name() {
	case "unique_violation":
		return repository.ErrConflict
	case "foreign_key_violation":
		return repository.ErrNotFound
	case "lock_not_available":
		return repository.ErrLockTimeout
	case "check_violation":
		return repository.ErrConflict
	}
	return err
}
