package models

import "testing"

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		total  Money
		paid   Money
		closed bool
		want   string
	}{
		{"nothing paid", 2500, 0, false, StatusPending},
		{"partially paid", 2500, 1000, false, StatusPartial},
		{"fully paid", 2500, 2500, false, StatusCompleted},
		{"zero total", 0, 0, false, StatusCompleted},
		{"closed with balance", 2500, 100, true, StatusCompleted},
		{"closed unpaid", 2500, 0, true, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.total, tt.paid, tt.closed); got != tt.want {
				t.Errorf("StatusFor(%d, %d, %v) = %q, want %q", tt.total, tt.paid, tt.closed, got, tt.want)
			}
		})
	}
}

func TestCreditRecompute(t *testing.T) {
	c := Credit{
		TotalAmount: 2500,
		Payments: []Payment{
			{Amount: 1000},
			{Amount: 1500},
		},
	}
	c.Recompute()

	if c.PaidAmount != 2500 {
		t.Errorf("PaidAmount = %d, want 2500", c.PaidAmount)
	}
	if c.RemainingAmount != 0 {
		t.Errorf("RemainingAmount = %d, want 0", c.RemainingAmount)
	}
	if c.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", c.Status, StatusCompleted)
	}
}

func TestCreditInputValidate(t *testing.T) {
	valid := func() CreditInput {
		return CreditInput{
			Customer: Customer{Name: "Doe", FirstName: "Jane", Address: "12 rue du Marché"},
			Lines:    []CreditLineInput{{ItemID: 1, Quantity: 2}},
		}
	}

	in := valid()
	if msg := in.Validate(); msg != "" {
		t.Fatalf("valid input rejected: %q", msg)
	}

	tests := []struct {
		name   string
		mutate func(*CreditInput)
	}{
		{"missing name", func(c *CreditInput) { c.Customer.Name = "" }},
		{"missing first name", func(c *CreditInput) { c.Customer.FirstName = "" }},
		{"missing address", func(c *CreditInput) { c.Customer.Address = "" }},
		{"no lines", func(c *CreditInput) { c.Lines = nil }},
		{"zero quantity", func(c *CreditInput) { c.Lines[0].Quantity = 0 }},
		{"missing item id", func(c *CreditInput) { c.Lines[0].ItemID = 0 }},
		{"bad initial payment", func(c *CreditInput) { c.InitialPayment = &PaymentInput{Amount: 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			if msg := in.Validate(); msg == "" {
				t.Error("expected a validation message, got none")
			}
		})
	}
}

func TestCreditInputDefaultsShop(t *testing.T) {
	in := CreditInput{
		Customer: Customer{Name: "Doe", FirstName: "Jane", Address: "12 rue du Marché"},
		Lines:    []CreditLineInput{{ItemID: 1, Quantity: 1}},
	}
	if msg := in.Validate(); msg != "" {
		t.Fatalf("unexpected validation error: %q", msg)
	}
	if in.ShopID != DefaultShopID {
		t.Errorf("ShopID = %q, want %q", in.ShopID, DefaultShopID)
	}
}

func TestPaymentInputValidate(t *testing.T) {
	if msg := (&PaymentInput{Amount: -1}).Validate(); msg == "" {
		t.Error("negative amount accepted")
	}
	if msg := (&PaymentInput{Amount: 0}).Validate(); msg == "" {
		t.Error("zero amount accepted")
	}
	if msg := (&PaymentInput{Amount: 100}).Validate(); msg != "" {
		t.Errorf("positive amount rejected: %q", msg)
	}
}

func TestDocumentInputValidate(t *testing.T) {
	if msg := (&DocumentInput{Kind: "receipt"}).Validate(); msg == "" {
		t.Error("unknown kind accepted")
	}
	in := DocumentInput{Kind: DocQuote}
	if msg := in.Validate(); msg != "" {
		t.Errorf("quote rejected: %q", msg)
	}
	if in.ShopID != DefaultShopID {
		t.Errorf("ShopID = %q, want %q", in.ShopID, DefaultShopID)
	}
}
