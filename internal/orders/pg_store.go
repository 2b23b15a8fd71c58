package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists orders in two tables: one row per order plus one row per
// frozen line. Line rows carry the checkout-time name and price so later
// catalog edits cannot rewrite history.
type PgStore struct{ DB *pgxpool.Pool }

var ErrIllegalTransition = errors.New("illegal status transition")

func (s *PgStore) Create(ctx context.Context, o *Order) (*Order, error) {
	// Idempotency: the order id is client-generated, so a retry after a
	// timeout finds the first attempt here instead of double-inserting.
	existing, err := s.GetByID(ctx, o.OrderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	persisted := *o
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(order_id, bill_id, roll_number, payment_method,
		                   status, transaction_id, total_amount, queue_position)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		o.OrderID, o.BillID, o.RollNumber, o.PaymentMethod,
		o.Status, o.TransactionID, o.TotalAmount, o.QueuePosition,
	).Scan(&persisted.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for i, ln := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, line_no, item_id, name, unit_price, quantity)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.OrderID, i, ln.ItemID, ln.Name, ln.UnitPrice, ln.Quantity,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &persisted, nil
}

func (s *PgStore) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := s.DB.QueryRow(ctx, `
		SELECT order_id, bill_id, roll_number, payment_method, status,
		       transaction_id, total_amount, queue_position, created_at
		FROM orders WHERE order_id=$1`, orderID,
	).Scan(&o.OrderID, &o.BillID, &o.RollNumber, &o.PaymentMethod, &o.Status,
		&o.TransactionID, &o.TotalAmount, &o.QueuePosition, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	o.Lines, err = s.linesFor(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PgStore) QueryByCustomer(ctx context.Context, rollNumber string) ([]Order, error) {
	return s.query(ctx, `
		SELECT order_id, bill_id, roll_number, payment_method, status,
		       transaction_id, total_amount, queue_position, created_at
		FROM orders WHERE roll_number=$1`, rollNumber)
}

func (s *PgStore) QueryOpen(ctx context.Context) ([]Order, error) {
	return s.query(ctx, `
		SELECT order_id, bill_id, roll_number, payment_method, status,
		       transaction_id, total_amount, queue_position, created_at
		FROM orders WHERE status <> $1`, StatusCompleted)
}

// UpdateStatus advances status with the machine enforced both here and by a
// guard on the current value, so two staff terminals racing cannot skip a
// state or resurrect a completed order.
func (s *PgStore) UpdateStatus(ctx context.Context, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return ErrIllegalTransition
	}
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET status=$3 WHERE order_id=$1 AND status=$2`,
		orderID, from, to)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if ct.RowsAffected() != 1 {
		return ErrIllegalTransition
	}
	return nil
}

func (s *PgStore) query(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []Order
	ids := make([]string, 0, 8)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.OrderID, &o.BillID, &o.RollNumber, &o.PaymentMethod,
			&o.Status, &o.TransactionID, &o.TotalAmount, &o.QueuePosition, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		out = append(out, o)
		ids = append(ids, o.OrderID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(out) == 0 {
		return out, nil
	}

	byOrder, err := s.linesByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = byOrder[out[i].OrderID]
	}
	return out, nil
}

func (s *PgStore) linesFor(ctx context.Context, orderIDs []string) ([]OrderLine, error) {
	byOrder, err := s.linesByOrder(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	return byOrder[orderIDs[0]], nil
}

func (s *PgStore) linesByOrder(ctx context.Context, orderIDs []string) (map[string][]OrderLine, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT order_id, item_id, name, unit_price, quantity
		FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, line_no`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	byOrder := map[string][]OrderLine{}
	for rows.Next() {
		var id string
		var ln OrderLine
		if err := rows.Scan(&id, &ln.ItemID, &ln.Name, &ln.UnitPrice, &ln.Quantity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		byOrder[id] = append(byOrder[id], ln)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return byOrder, nil
}
