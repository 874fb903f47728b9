package inventory

import (
	"context"
	"errors"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
)

// withTransaction runs fn inside an explicit transaction of uow.
// The transaction commits when fn succeeds and rolls back on error or panic,
// so buffered events are only published for committed work.
func withTransaction(ctx context.Context, uow inventory.UnitOfWork, fn func() error) (err error) {
	if err := uow.BeginTransaction(ctx); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(); err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return uow.Commit(ctx)
}
