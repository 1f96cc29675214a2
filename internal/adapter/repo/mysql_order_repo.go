package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

var ErrNotFound = errors.New("order not found")

// MySQLOrderStore persists orders in the orders table. Line items travel as a
// JSON column; they are written once at creation and never updated.
type MySQLOrderStore struct{ db *sql.DB }

func NewMySQLOrderStore(db *sql.DB) *MySQLOrderStore { return &MySQLOrderStore{db: db} }

func (s *MySQLOrderStore) Create(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO orders (id, customer_phone, status, total, items_json, created_at, updated_at)
VALUES (?,?,?,?,?,?,NOW())
`, o.ID, o.CustomerPhone, string(o.Status), o.Total.String(), items, o.CreatedAt)
	return err
}

func (s *MySQLOrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, customer_phone, status, total, items_json, created_at
FROM orders WHERE id=?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (s *MySQLOrderStore) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, customer_phone, status, total, items_json, created_at
FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *MySQLOrderStore) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
		total  string
		items  []byte
	)
	if err := row.Scan(&o.ID, &o.CustomerPhone, &status, &total, &items, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse order total: %w", err)
	}
	o.Total = t
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}

var _ usecase.OrderStore = (*MySQLOrderStore)(nil)
