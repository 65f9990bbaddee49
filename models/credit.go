package models

import "time"

// Credit statuses. Status is derived from amounts — see StatusFor — and is
// never trusted as stored.
const (
	StatusPending   = "pending"
	StatusPartial   = "partial"
	StatusCompleted = "completed"
)

// Customer identifies the client a credit is recorded against.
type Customer struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// CreditLine is a single item snapshot within a credit. Name and unit price
// are copied at creation time so later item edits never rewrite history.
type CreditLine struct {
	ItemID    int    `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	LineTotal Money  `json:"line_total"`
}

// Credit is a deferred-payment sale: fixed lines, growing payments.
// TotalAmount is computed once at creation and frozen; PaidAmount,
// RemainingAmount and Status are recomputed from the payment rows on every
// read.
type Credit struct {
	ID              string       `json:"id"`
	ShopID          string       `json:"shop_id"`
	Customer        Customer     `json:"customer"`
	AppointmentDate *string      `json:"appointment_date"`
	Lines           []CreditLine `json:"lines"`
	Payments        []Payment    `json:"payments"`
	TotalAmount     Money        `json:"total_amount"`
	PaidAmount      Money        `json:"paid_amount"`
	RemainingAmount Money        `json:"remaining_amount"`
	Status          string       `json:"status"`
	Closed          bool         `json:"closed"`
	CreatedAt       time.Time    `json:"created_at"`
}

// StatusFor derives the settlement status from amounts. A closed credit is
// completed regardless of its balance (explicit write-off).
func StatusFor(total, paid Money, closed bool) string {
	switch {
	case closed, total-paid <= 0:
		return StatusCompleted
	case paid == 0:
		return StatusPending
	default:
		return StatusPartial
	}
}

// Recompute fills the derived fields from TotalAmount and the payment rows.
func (c *Credit) Recompute() {
	var paid Money
	for _, p := range c.Payments {
		paid += p.Amount
	}
	c.PaidAmount = paid
	c.RemainingAmount = c.TotalAmount - paid
	c.Status = StatusFor(c.TotalAmount, paid, c.Closed)
}

// CreditLineInput is one requested line at credit-creation time.
type CreditLineInput struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// CreditInput is used for creating a credit.
type CreditInput struct {
	ShopID          string            `json:"shop_id"`
	Customer        Customer          `json:"customer"`
	AppointmentDate *string           `json:"appointment_date"`
	Lines           []CreditLineInput `json:"lines"`
	InitialPayment  *PaymentInput     `json:"initial_payment"`
	// Confirm acknowledges an insufficient-stock warning from a previous
	// attempt and lets the over-commit proceed.
	Confirm bool `json:"confirm"`
}

func (c *CreditInput) Validate() string {
	if c.Customer.Name == "" {
		return "customer name is required"
	}
	if c.Customer.FirstName == "" {
		return "customer first name is required"
	}
	if c.Customer.Address == "" {
		return "customer address is required"
	}
	if len(c.Lines) == 0 {
		return "at least one line is required"
	}
	for _, l := range c.Lines {
		if l.ItemID <= 0 {
			return "line item_id is required"
		}
		if l.Quantity <= 0 {
			return "line quantity must be positive"
		}
	}
	if c.InitialPayment != nil {
		if msg := c.InitialPayment.Validate(); msg != "" {
			return "initial payment: " + msg
		}
	}
	if c.ShopID == "" {
		c.ShopID = DefaultShopID
	}
	return ""
}

// CreditStats aggregates a shop's credits by settlement status.
type CreditStats struct {
	Total          int   `json:"total"`
	Pending        int   `json:"pending"`
	Partial        int   `json:"partial"`
	Completed      int   `json:"completed"`
	TotalAmount    Money `json:"total_amount"`
	PaidAmount     Money `json:"paid_amount"`
	RemainingOwed  Money `json:"remaining_owed"`
}
