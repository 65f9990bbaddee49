package models

import "time"

// Document kinds carrying a sequence number.
const (
	DocQuote   = "quote"
	DocInvoice = "invoice"
)

// Document is a finalized quote or invoice. Number is issued exactly once by
// the sequencer when the document is created; re-finalizing the same logical
// document would burn a number, so callers create a document only on the
// operator's explicit action.
type Document struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shop_id"`
	Kind      string    `json:"kind"`
	Number    string    `json:"number"`
	Customer  string    `json:"customer"`
	Total     Money     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentInput is used for finalizing a quote or invoice.
type DocumentInput struct {
	ShopID   string `json:"shop_id"`
	Kind     string `json:"kind"`
	Customer string `json:"customer"`
	Total    Money  `json:"total"`
}

func (d *DocumentInput) Validate() string {
	switch d.Kind {
	case DocQuote, DocInvoice:
	default:
		return "kind must be one of: quote, invoice"
	}
	if d.Total < 0 {
		return "total must be non-negative"
	}
	if d.ShopID == "" {
		d.ShopID = DefaultShopID
	}
	return ""
}
