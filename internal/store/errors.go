package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"TalentHive/internal/apperr"
)

// mapError turns driver and ORM failures into engine error kinds.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.KindNotFound, op, "record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return apperr.Wrap(apperr.KindConflict, op, err)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return apperr.Wrap(apperr.KindConflict, op, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return apperr.Wrap(apperr.KindConflict, op, err)
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "serialization"):
		return apperr.Wrap(apperr.KindConflict, op, err)
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func versionConflict(op, entity string) error {
	return apperr.Conflict(op, "%s was modified concurrently, reload and retry", entity)
}
