package stock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxAttempts = 4
	baseBackoff = 25 * time.Millisecond
)

// PgLedger reserves against menu_items.available_quantity inside a
// serializable transaction: read every quantity, reject the whole batch on
// any shortage, otherwise write the decrements and commit. A commit that
// lost a race with another reservation fails with a serialization error and
// the whole attempt is replayed with jittered backoff.
type PgLedger struct{ DB *pgxpool.Pool }

func (l *PgLedger) ReserveAll(ctx context.Context, reqs []Request) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := l.tryReserve(ctx, reqs)
		if !isSerializationFailure(err) {
			return err
		}
		select {
		case <-time.After(jitteredBackoff(attempt)):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
	}
	return ErrContention
}

func (l *PgLedger) tryReserve(ctx context.Context, reqs []Request) error {
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var shortages []Shortage
	for _, req := range reqs {
		var available int
		err := tx.QueryRow(ctx,
			`SELECT available_quantity FROM menu_items WHERE item_id=$1`,
			req.ItemID).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown item counts as zero stock, not an internal error.
			available = 0
		} else if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if available < req.Qty {
			shortages = append(shortages, Shortage{
				ItemID: req.ItemID, Requested: req.Qty, Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return &OutOfStockError{Shortages: shortages} // rollback via defer
	}

	for _, req := range reqs {
		if _, err := tx.Exec(ctx, `
			UPDATE menu_items SET available_quantity = available_quantity - $2
			WHERE item_id=$1`, req.ItemID, req.Qty); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *PgLedger) Release(ctx context.Context, itemID string, qty int) error {
	_, err := l.DB.Exec(ctx, `
		UPDATE menu_items SET available_quantity = available_quantity + $2
		WHERE item_id=$1`, itemID, qty)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// 40001 serialization_failure, 40P01 deadlock_detected.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func jitteredBackoff(attempt int) time.Duration {
	d := baseBackoff << attempt
	return d + time.Duration(rand.Int63n(int64(d)))
}
