package models

import "time"

// Payment is one installment against a credit. Payments are append-only:
// there is no edit or delete, corrections are made by adding an adjusting
// payment.
type Payment struct {
	ID        string    `json:"id"`
	CreditID  string    `json:"credit_id"`
	Amount    Money     `json:"amount"`
	Date      string    `json:"date"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentInput is used for recording a payment.
type PaymentInput struct {
	Amount  Money   `json:"amount"`
	Date    string  `json:"date"`
	Comment *string `json:"comment"`
}

func (p *PaymentInput) Validate() string {
	if p.Amount <= 0 {
		return "amount must be positive"
	}
	return ""
}
