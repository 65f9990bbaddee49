package ledger

import (
	"errors"
	"fmt"

	"github.com/kbelhadj/gestock/models"
	"github.com/kbelhadj/gestock/stock"
)

var (
	// ErrCreditNotFound is returned when a credit id resolves to nothing.
	ErrCreditNotFound = errors.New("credit not found")
	// ErrNotSettled is returned by Close on a credit with a remaining balance.
	ErrNotSettled = errors.New("credit has a remaining balance")
)

// ValidationError reports invalid input. Raised locally, before any
// collaborator is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StockUnavailableError blocks credit creation: one or more lines have zero
// available stock. No writes were performed.
type StockUnavailableError struct {
	Lines []stock.LineCheck
}

func (e *StockUnavailableError) Error() string {
	return fmt.Sprintf("%d line(s) reference unavailable stock", len(e.Lines))
}

// StockWarningError is advisory: some lines request more than available but
// none are at zero. The operator must re-submit with confirmation before the
// commit proceeds. No writes were performed.
type StockWarningError struct {
	Lines []stock.LineCheck
}

func (e *StockWarningError) Error() string {
	return fmt.Sprintf("%d line(s) over-request available stock, confirmation required", len(e.Lines))
}

// OverpaymentError rejects a payment that would push the paid amount above
// the credit total. Max is the largest acceptable amount.
type OverpaymentError struct {
	Max models.Money
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds remaining balance (max %d)", e.Max)
}

// PartialCommitError reports that the credit record was written but the
// subsequent stock deduction failed. There is no automatic rollback of the
// first write; the operator must reconcile stock manually.
type PartialCommitError struct {
	CreditID string
	Err      error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("credit %s was recorded but stock deduction failed: %v", e.CreditID, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }
