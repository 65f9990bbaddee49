package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kbelhadj/gestock/models"
)

// Store is the persistence collaborator for credits. Implementations must
// keep a failed write free of partial effects (the aggregate stays in its
// prior state).
type Store interface {
	InsertCredit(ctx context.Context, c *models.Credit) error
	GetCredit(ctx context.Context, id string) (*models.Credit, error)
	ListCredits(ctx context.Context, shopID string, f ListFilter) ([]models.Credit, error)
	InsertPayment(ctx context.Context, p *models.Payment) error
	SetStatus(ctx context.Context, id, status string, closed bool) error
	DeleteCredit(ctx context.Context, id string) error
}

// ListFilter narrows a credit listing.
type ListFilter struct {
	Status string // derived status to match, empty for all
	Search string // matches customer name, first name or phone
}

// Key returns a stable cache-key fragment for the filter.
func (f ListFilter) Key() string {
	return f.Status + "|" + f.Search
}

// SQLStore implements Store over the shop database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// creditSelectQuery pulls the frozen total alongside the live payment sum,
// so derived amounts are always recomputed from rows, never trusted as
// stored.
const creditSelectQuery = `SELECT c.id, c.shop_id, c.customer_name, c.customer_first_name,
	c.customer_phone, c.customer_address, c.appointment_date, c.total_amount,
	c.closed, c.created_at,
	COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.credit_id = c.id), 0)
	FROM credits c`

func scanCredit(scanner interface{ Scan(...any) error }) (models.Credit, error) {
	var c models.Credit
	var closed int
	var paid models.Money
	err := scanner.Scan(&c.ID, &c.ShopID, &c.Customer.Name, &c.Customer.FirstName,
		&c.Customer.Phone, &c.Customer.Address, &c.AppointmentDate, &c.TotalAmount,
		&closed, &c.CreatedAt, &paid)
	if err != nil {
		return c, err
	}
	c.Closed = closed == 1
	c.PaidAmount = paid
	c.RemainingAmount = c.TotalAmount - paid
	c.Status = models.StatusFor(c.TotalAmount, paid, c.Closed)
	return c, nil
}

func (s *SQLStore) InsertCredit(ctx context.Context, c *models.Credit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning credit insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO credits
		(id, shop_id, customer_name, customer_first_name, customer_phone, customer_address,
		 appointment_date, total_amount, status, closed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		c.ID, c.ShopID, c.Customer.Name, c.Customer.FirstName, c.Customer.Phone,
		c.Customer.Address, c.AppointmentDate, c.TotalAmount,
		models.StatusFor(c.TotalAmount, c.PaidAmount, false))
	if err != nil {
		return fmt.Errorf("inserting credit: %w", err)
	}

	for _, l := range c.Lines {
		_, err = tx.ExecContext(ctx, `INSERT INTO credit_lines
			(credit_id, item_id, name, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, l.ItemID, l.Name, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("inserting credit line: %w", err)
		}
	}

	for _, p := range c.Payments {
		_, err = tx.ExecContext(ctx, `INSERT INTO payments
			(id, credit_id, amount, date, comment)
			VALUES (?, ?, ?, ?, ?)`,
			p.ID, c.ID, p.Amount, p.Date, p.Comment)
		if err != nil {
			return fmt.Errorf("inserting initial payment: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) GetCredit(ctx context.Context, id string) (*models.Credit, error) {
	c, err := scanCredit(s.db.QueryRowContext(ctx, creditSelectQuery+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCreditNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading credit %s: %w", id, err)
	}
	if err := s.loadLines(ctx, &c); err != nil {
		return nil, err
	}
	if err := s.loadPayments(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) loadLines(ctx context.Context, c *models.Credit) error {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, name, quantity, unit_price
		FROM credit_lines WHERE credit_id = ? ORDER BY id`, c.ID)
	if err != nil {
		return fmt.Errorf("reading lines for credit %s: %w", c.ID, err)
	}
	defer rows.Close()

	c.Lines = c.Lines[:0]
	for rows.Next() {
		var l models.CreditLine
		if err := rows.Scan(&l.ItemID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return err
		}
		l.LineTotal = models.Money(l.Quantity) * l.UnitPrice
		c.Lines = append(c.Lines, l)
	}
	return rows.Err()
}

// loadPayments restores the append order, which is also chronological.
func (s *SQLStore) loadPayments(ctx context.Context, c *models.Credit) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, credit_id, amount, date, comment, created_at
		FROM payments WHERE credit_id = ? ORDER BY created_at, id`, c.ID)
	if err != nil {
		return fmt.Errorf("reading payments for credit %s: %w", c.ID, err)
	}
	defer rows.Close()

	c.Payments = c.Payments[:0]
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.CreditID, &p.Amount, &p.Date, &p.Comment, &p.CreatedAt); err != nil {
			return err
		}
		c.Payments = append(c.Payments, p)
	}
	return rows.Err()
}

func (s *SQLStore) ListCredits(ctx context.Context, shopID string, f ListFilter) ([]models.Credit, error) {
	query := creditSelectQuery
	conditions := []string{"c.shop_id = ?"}
	args := []any{shopID}

	if f.Search != "" {
		conditions = append(conditions, "(c.customer_name LIKE ? OR c.customer_first_name LIKE ? OR c.customer_phone LIKE ?)")
		t := "%" + f.Search + "%"
		args = append(args, t, t, t)
	}
	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY c.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing credits for shop %s: %w", shopID, err)
	}
	defer rows.Close()

	var credits []models.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		// Status filter is applied on the derived value, not the stored
		// column, so a stale column can never leak a wrong bucket.
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range credits {
		if err := s.loadLines(ctx, &credits[i]); err != nil {
			return nil, err
		}
		if err := s.loadPayments(ctx, &credits[i]); err != nil {
			return nil, err
		}
	}
	return credits, nil
}

func (s *SQLStore) InsertPayment(ctx context.Context, p *models.Payment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO payments
		(id, credit_id, amount, date, comment)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CreditID, p.Amount, p.Date, p.Comment)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (s *SQLStore) SetStatus(ctx context.Context, id, status string, closed bool) error {
	closedInt := 0
	if closed {
		closedInt = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE credits SET status = ?, closed = ? WHERE id = ?`, status, closedInt, id)
	if err != nil {
		return fmt.Errorf("updating status for credit %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCreditNotFound
	}
	return nil
}

func (s *SQLStore) DeleteCredit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting credit %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCreditNotFound
	}
	return nil
}
