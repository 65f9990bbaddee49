// Package ledger owns the credit aggregate: creation against available
// stock, append-only payments, derived settlement status, closure and
// deletion. It performs no implicit retry — a failed mutation leaves the
// aggregate in its prior state and the caller decides whether to retry.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbelhadj/gestock/cache"
	"github.com/kbelhadj/gestock/models"
	"github.com/kbelhadj/gestock/stock"
)

// Ledger coordinates the credit store, the stock registry and the read
// cache.
type Ledger struct {
	store Store
	stock stock.Registry
	lists *cache.Cache[[]models.Credit]
	stats *cache.Cache[models.CreditStats]
	now   func() time.Time
}

// New wires a Ledger. ttl bounds how stale cached reads may get.
func New(store Store, reg stock.Registry, ttl time.Duration) *Ledger {
	return &Ledger{
		store: store,
		stock: reg,
		lists: cache.New[[]models.Credit](ttl),
		stats: cache.New[models.CreditStats](ttl),
		now:   time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Caches exposes the underlying caches for metric wiring.
func (l *Ledger) Caches() (*cache.Cache[[]models.Credit], *cache.Cache[models.CreditStats]) {
	return l.lists, l.stats
}

// invalidate drops every cached read that the shop's mutation could have
// staled. Values are never patched in place.
func (l *Ledger) invalidate(shopID string) {
	l.lists.InvalidatePrefix(shopID)
	l.stats.InvalidatePrefix(shopID)
}

// CheckStock runs the advisory reservation check for the UI's confirm step.
func (l *Ledger) CheckStock(ctx context.Context, lines []models.CreditLineInput) (stock.Report, error) {
	report, _, err := stock.Check(ctx, l.stock, lines)
	if err != nil {
		return stock.Report{}, fmt.Errorf("stock check: %w", err)
	}
	return report, nil
}

// Create validates the input, re-checks stock against a fresh snapshot and
// persists the credit with its line snapshots and optional first payment.
// Lines with zero available stock block the whole creation; over-requested
// lines require input.Confirm. On success the requested quantities — not
// clamped to available — are deducted from stock, which can drive an item
// negative when the operator confirmed an over-commit.
func (l *Ledger) Create(ctx context.Context, input models.CreditInput) (*models.Credit, error) {
	if msg := input.Validate(); msg != "" {
		return nil, &ValidationError{Msg: msg}
	}

	// Fresh snapshot right before the commit: time has passed since any
	// earlier advisory check and stock may have moved.
	report, items, err := stock.Check(ctx, l.stock, input.Lines)
	if err != nil {
		return nil, fmt.Errorf("stock check: %w", err)
	}
	if report.Blocking() {
		return nil, &StockUnavailableError{Lines: report.Problems()}
	}
	if report.NeedsConfirm() && !input.Confirm {
		return nil, &StockWarningError{Lines: report.Problems()}
	}

	credit := &models.Credit{
		ID:              uuid.NewString(),
		ShopID:          input.ShopID,
		Customer:        input.Customer,
		AppointmentDate: input.AppointmentDate,
		CreatedAt:       l.now(),
	}
	for _, li := range input.Lines {
		it := items[li.ItemID]
		line := models.CreditLine{
			ItemID:    li.ItemID,
			Name:      it.Name,
			Quantity:  li.Quantity,
			UnitPrice: it.Price,
			LineTotal: models.Money(li.Quantity) * it.Price,
		}
		credit.Lines = append(credit.Lines, line)
		credit.TotalAmount += line.LineTotal
	}

	if input.InitialPayment != nil {
		if input.InitialPayment.Amount > credit.TotalAmount {
			return nil, &OverpaymentError{Max: credit.TotalAmount}
		}
		credit.Payments = append(credit.Payments, l.newPayment(credit.ID, *input.InitialPayment))
	}
	credit.Recompute()

	if err := l.store.InsertCredit(ctx, credit); err != nil {
		return nil, err
	}

	// Atomic per-line decrements; no read-modify-write between check and
	// commit. A failure here leaves the credit record in place and is
	// reported distinctly so the operator can reconcile stock by hand.
	for _, li := range input.Lines {
		if err := l.stock.DeductQuantity(ctx, li.ItemID, li.Quantity); err != nil {
			return nil, &PartialCommitError{CreditID: credit.ID, Err: err}
		}
	}

	l.invalidate(credit.ShopID)
	return credit, nil
}

func (l *Ledger) newPayment(creditID string, in models.PaymentInput) models.Payment {
	date := in.Date
	if date == "" {
		date = l.now().Format("2006-01-02")
	}
	return models.Payment{
		ID:        uuid.NewString(),
		CreditID:  creditID,
		Amount:    in.Amount,
		Date:      date,
		Comment:   in.Comment,
		CreatedAt: l.now(),
	}
}

// AddPayment appends a payment to the credit and recomputes the derived
// amounts. A payment that would push the paid amount above the total is
// rejected with OverpaymentError and nothing changes.
func (l *Ledger) AddPayment(ctx context.Context, creditID string, input models.PaymentInput) (*models.Credit, error) {
	if msg := input.Validate(); msg != "" {
		return nil, &ValidationError{Msg: msg}
	}

	credit, err := l.store.GetCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}
	if input.Amount > credit.RemainingAmount {
		return nil, &OverpaymentError{Max: credit.RemainingAmount}
	}

	p := l.newPayment(creditID, input)
	if err := l.store.InsertPayment(ctx, &p); err != nil {
		return nil, err
	}

	credit.Payments = append(credit.Payments, p)
	credit.Recompute()
	// Defensive overwrite of the stored column so it can never drift from
	// the amounts that justify it.
	if err := l.store.SetStatus(ctx, creditID, credit.Status, credit.Closed); err != nil {
		return nil, err
	}

	l.invalidate(credit.ShopID)
	return credit, nil
}

// Close marks a fully settled credit completed. The current design only
// offers closing once the balance reaches zero; there is no override path.
func (l *Ledger) Close(ctx context.Context, creditID string) (*models.Credit, error) {
	credit, err := l.store.GetCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}
	if credit.RemainingAmount > 0 {
		return nil, ErrNotSettled
	}
	credit.Closed = true
	credit.Recompute()
	if err := l.store.SetStatus(ctx, creditID, credit.Status, true); err != nil {
		return nil, err
	}
	l.invalidate(credit.ShopID)
	return credit, nil
}

// Delete removes the credit and its payments. Deleted credits never restore
// deducted stock: deletion is a write-off, not an undo.
func (l *Ledger) Delete(ctx context.Context, creditID string) error {
	credit, err := l.store.GetCredit(ctx, creditID)
	if err != nil {
		return err
	}
	if err := l.store.DeleteCredit(ctx, creditID); err != nil {
		return err
	}
	l.invalidate(credit.ShopID)
	return nil
}

// Get returns one credit with recomputed amounts. Never cached: single-credit
// reads are authoritative.
func (l *Ledger) Get(ctx context.Context, creditID string) (*models.Credit, error) {
	return l.store.GetCredit(ctx, creditID)
}

// List returns the shop's credits, served from cache within the TTL window.
func (l *Ledger) List(ctx context.Context, shopID string, f ListFilter) ([]models.Credit, error) {
	key := shopID + "|" + f.Key()
	if credits, ok := l.lists.Get(key); ok {
		return credits, nil
	}
	credits, err := l.store.ListCredits(ctx, shopID, f)
	if err != nil {
		return nil, err
	}
	if credits == nil {
		credits = []models.Credit{}
	}
	l.lists.Put(key, credits)
	return credits, nil
}

// Search matches credits by customer name, first name or phone.
func (l *Ledger) Search(ctx context.Context, shopID, term string) ([]models.Credit, error) {
	return l.List(ctx, shopID, ListFilter{Search: term})
}

// Stats aggregates counts per status and amount sums across the shop's
// credits, recomputed from current amounts and cached no longer than the TTL.
func (l *Ledger) Stats(ctx context.Context, shopID string) (models.CreditStats, error) {
	if st, ok := l.stats.Get(shopID); ok {
		return st, nil
	}
	credits, err := l.store.ListCredits(ctx, shopID, ListFilter{})
	if err != nil {
		return models.CreditStats{}, err
	}

	var st models.CreditStats
	for _, c := range credits {
		st.Total++
		switch c.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusPartial:
			st.Partial++
		case models.StatusCompleted:
			st.Completed++
		}
		st.TotalAmount += c.TotalAmount
		st.PaidAmount += c.PaidAmount
		if c.RemainingAmount > 0 {
			st.RemainingOwed += c.RemainingAmount
		}
	}
	l.stats.Put(shopID, st)
	return st, nil
}
