package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/domain/errs"
)

// MapError maps storage failures into coded errors. Already coded errors pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(errs.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Wrap(errs.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return errs.Wrap(errs.CodeConflict, op, err) // unique_violation
		case "23503":
			return errs.Wrap(errs.CodePreconditionFailed, op, err) // foreign_key_violation
		case "23502", "23514", "22P02":
			return errs.Wrap(errs.CodeValidation, op, err) // not_null/check/invalid_text_representation
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return errs.Wrap(errs.CodeConflict, op, err)
	default:
		return errs.Wrap(errs.CodeInternal, op, err)
	}
}
