package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	repo "storefront/internal/repository"
)

// Postgres "lock_not_available", raised when SET LOCAL lock_timeout fires.
const pgLockNotAvailable = "55P03"

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translateErr maps driver errors onto the repository sentinels so the
// usecases never see gorm or pgx types.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return repo.ErrLockTimeout
	}
	return err
}
