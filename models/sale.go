package models

import "time"

// SaleLine is a single item snapshot within a direct sale.
type SaleLine struct {
	ItemID    int    `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	LineTotal Money  `json:"line_total"`
}

// Sale is a cash sale settled at creation — no payment schedule. Stock is
// deducted immediately through the same reservation path as credits.
type Sale struct {
	ID          string     `json:"id"`
	ShopID      string     `json:"shop_id"`
	Customer    string     `json:"customer"`
	Lines       []SaleLine `json:"lines"`
	TotalAmount Money      `json:"total_amount"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SaleInput is used for recording a sale.
type SaleInput struct {
	ShopID   string            `json:"shop_id"`
	Customer string            `json:"customer"`
	Lines    []CreditLineInput `json:"lines"`
	Confirm  bool              `json:"confirm"`
}

func (s *SaleInput) Validate() string {
	if len(s.Lines) == 0 {
		return "at least one line is required"
	}
	for _, l := range s.Lines {
		if l.ItemID <= 0 {
			return "line item_id is required"
		}
		if l.Quantity <= 0 {
			return "line quantity must be positive"
		}
	}
	if s.ShopID == "" {
		s.ShopID = DefaultShopID
	}
	return ""
}
