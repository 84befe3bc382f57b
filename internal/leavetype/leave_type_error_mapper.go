package leavetype

import (
	"errors"

	leavetypeerrors "go-hrms/internal/leavetype/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavetypeerrors.ErrLeaveTypeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return leavetypeerrors.ErrLeaveTypeNameExists
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return leavetypeerrors.ErrLeaveTypeNameExists
	}

	return err
}
