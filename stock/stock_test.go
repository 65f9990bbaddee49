package stock

import (
	"context"
	"database/sql"
	"testing"

	"github.com/kbelhadj/gestock/db"
	"github.com/kbelhadj/gestock/models"
)

func TestCheckLines(t *testing.T) {
	items := map[int]models.Item{
		1: {ID: 1, Name: "fabric", Quantity: 10},
		2: {ID: 2, Name: "thread", Quantity: 3},
		3: {ID: 3, Name: "buttons", Quantity: 0},
		4: {ID: 4, Name: "zipper", Quantity: -1},
	}

	tests := []struct {
		name    string
		itemID  int
		qty     int
		verdict Verdict
	}{
		{"enough stock", 1, 5, VerdictOK},
		{"exactly enough", 1, 10, VerdictOK},
		{"over-requested", 2, 5, VerdictInsufficient},
		{"zero stock", 3, 1, VerdictUnavailable},
		{"negative stock", 4, 1, VerdictUnavailable},
		{"unknown item", 99, 1, VerdictUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := CheckLines([]models.CreditLineInput{{ItemID: tt.itemID, Quantity: tt.qty}}, items)
			if got := report.Lines[0].Verdict; got != tt.verdict {
				t.Errorf("verdict = %q, want %q", got, tt.verdict)
			}
		})
	}
}

func TestReportClassification(t *testing.T) {
	items := map[int]models.Item{
		1: {ID: 1, Quantity: 10},
		2: {ID: 2, Quantity: 3},
		3: {ID: 3, Quantity: 0},
	}

	allOK := CheckLines([]models.CreditLineInput{{ItemID: 1, Quantity: 1}}, items)
	if allOK.Blocking() || allOK.NeedsConfirm() {
		t.Error("all-ok report should neither block nor need confirmation")
	}

	warn := CheckLines([]models.CreditLineInput{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 5},
	}, items)
	if warn.Blocking() {
		t.Error("insufficient-only report must not block")
	}
	if !warn.NeedsConfirm() {
		t.Error("insufficient-only report must need confirmation")
	}
	if got := len(warn.Problems()); got != 1 {
		t.Errorf("Problems() returned %d lines, want 1", got)
	}

	blocked := CheckLines([]models.CreditLineInput{
		{ItemID: 2, Quantity: 5},
		{ItemID: 3, Quantity: 1},
	}, items)
	if !blocked.Blocking() {
		t.Error("report with an unavailable line must block")
	}
	if blocked.NeedsConfirm() {
		t.Error("blocking report must not also ask for confirmation")
	}
}

func newTestRegistry(t *testing.T) (*SQLRegistry, *sql.DB) {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(d); err != nil {
		t.Fatal(err)
	}
	return NewSQLRegistry(d), d
}

func insertItem(t *testing.T, d *sql.DB, name string, qty int, price models.Money) int {
	t.Helper()
	res, err := d.Exec(`INSERT INTO items (shop_id, name, price, quantity) VALUES ('main', ?, ?, ?)`,
		name, price, qty)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

func TestSQLRegistry(t *testing.T) {
	reg, d := newTestRegistry(t)
	ctx := context.Background()

	id := insertItem(t, d, "fabric", 3, 1000)

	it, err := reg.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if it == nil || it.Quantity != 3 {
		t.Fatalf("GetByID = %+v, want quantity 3", it)
	}

	if it, err := reg.GetByID(ctx, 9999); err != nil || it != nil {
		t.Errorf("GetByID on unknown item = %v, %v; want nil, nil", it, err)
	}

	items, err := reg.GetByShop(ctx, "main")
	if err != nil || len(items) != 1 {
		t.Fatalf("GetByShop = %d items, %v; want 1, nil", len(items), err)
	}

	if err := reg.SetQuantity(ctx, id, 7); err != nil {
		t.Fatal(err)
	}
	it, _ = reg.GetByID(ctx, id)
	if it.Quantity != 7 {
		t.Errorf("quantity after SetQuantity = %d, want 7", it.Quantity)
	}

	if err := reg.SetQuantity(ctx, 9999, 1); err != ErrItemNotFound {
		t.Errorf("SetQuantity on unknown item = %v, want ErrItemNotFound", err)
	}
}

func TestDeductQuantityCanGoNegative(t *testing.T) {
	reg, d := newTestRegistry(t)
	ctx := context.Background()

	id := insertItem(t, d, "thread", 3, 200)

	// A confirmed over-commit deducts the requested quantity, not the
	// available one.
	if err := reg.DeductQuantity(ctx, id, 5); err != nil {
		t.Fatal(err)
	}
	it, _ := reg.GetByID(ctx, id)
	if it.Quantity != -2 {
		t.Errorf("quantity after over-deduct = %d, want -2", it.Quantity)
	}

	if err := reg.DeductQuantity(ctx, 9999, 1); err != ErrItemNotFound {
		t.Errorf("DeductQuantity on unknown item = %v, want ErrItemNotFound", err)
	}
}
