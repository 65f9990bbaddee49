package models

import "time"

// Item represents an inventory item held by a shop. Quantity is mutated only
// by stock-deduction operations (credit creation, direct sales); the ledger
// never writes it directly.
type Item struct {
	ID        int       `json:"id"`
	ShopID    string    `json:"shop_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     Money     `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemInput is used for creating/updating items.
type ItemInput struct {
	ShopID   string `json:"shop_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    Money  `json:"price"`
	Quantity int    `json:"quantity"`
}

func (i *ItemInput) Validate() string {
	if i.Name == "" {
		return "name is required"
	}
	if i.Price < 0 {
		return "price must be non-negative"
	}
	if i.Quantity < 0 {
		return "quantity must be non-negative"
	}
	if i.ShopID == "" {
		i.ShopID = DefaultShopID
	}
	return ""
}

// DefaultShopID is used when a request does not name a shop. Single-shop
// deployments never set one.
const DefaultShopID = "main"
