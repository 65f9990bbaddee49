// Package stock owns inventory access and the pre-commit reservation check.
package stock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kbelhadj/gestock/models"
)

// Registry is the stock collaborator consumed by the ledger and sales log.
// GetByID returns nil without error when the item does not exist.
type Registry interface {
	GetByID(ctx context.Context, id int) (*models.Item, error)
	GetByShop(ctx context.Context, shopID string) ([]models.Item, error)
	SetQuantity(ctx context.Context, id, quantity int) error
	// DeductQuantity atomically decrements an item's quantity by delta in a
	// single conditional statement, closing the check-then-act window between
	// the reservation check and the commit. The result may go negative when
	// the operator confirmed an over-commit.
	DeductQuantity(ctx context.Context, id, delta int) error
}

// ErrItemNotFound is returned by quantity mutations on unknown items.
var ErrItemNotFound = errors.New("item not found")

// SQLRegistry implements Registry over the shop database.
type SQLRegistry struct {
	db *sql.DB
}

// NewSQLRegistry returns a Registry backed by db.
func NewSQLRegistry(db *sql.DB) *SQLRegistry {
	return &SQLRegistry{db: db}
}

const itemSelectQuery = `SELECT id, shop_id, name, category, price, quantity, created_at, updated_at FROM items`

func scanItem(scanner interface{ Scan(...any) error }) (models.Item, error) {
	var it models.Item
	err := scanner.Scan(&it.ID, &it.ShopID, &it.Name, &it.Category, &it.Price,
		&it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (r *SQLRegistry) GetByID(ctx context.Context, id int) (*models.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, itemSelectQuery+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading item %d: %w", id, err)
	}
	return &it, nil
}

func (r *SQLRegistry) GetByShop(ctx context.Context, shopID string) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, itemSelectQuery+" WHERE shop_id = ? ORDER BY name", shopID)
	if err != nil {
		return nil, fmt.Errorf("listing items for shop %s: %w", shopID, err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SQLRegistry) SetQuantity(ctx context.Context, id, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		quantity, id)
	if err != nil {
		return fmt.Errorf("setting quantity for item %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *SQLRegistry) DeductQuantity(ctx context.Context, id, delta int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, id)
	if err != nil {
		return fmt.Errorf("deducting %d from item %d: %w", delta, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}
