package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kbelhadj/gestock/metrics"
	"github.com/kbelhadj/gestock/models"
	"github.com/kbelhadj/gestock/stock"
)

// ListSales lists a shop's sales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        shop_id  query     string  false  "Shop (defaults to main)"
// @Success      200      {object}  Response{data=[]models.Sale}
// @Router       /sales [get]
// @Security     BasicAuth
func ListSales(w http.ResponseWriter, r *http.Request) {
	shop := shopID(r)
	if sales, ok := SalesCache.Get(shop); ok {
		writeJSON(w, http.StatusOK, sales)
		return
	}

	rows, err := DB.Query(`SELECT id, shop_id, customer, total_amount, created_at
		FROM sales WHERE shop_id = ? ORDER BY created_at DESC`, shop)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.ShopID, &s.Customer, &s.TotalAmount, &s.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sales = append(sales, s)
	}
	if sales == nil {
		sales = []models.Sale{}
	}

	for i := range sales {
		lrows, err := DB.Query(`SELECT item_id, name, quantity, unit_price
			FROM sale_lines WHERE sale_id = ? ORDER BY id`, sales[i].ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for lrows.Next() {
			var l models.SaleLine
			if err := lrows.Scan(&l.ItemID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
				lrows.Close()
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			l.LineTotal = models.Money(l.Quantity) * l.UnitPrice
			sales[i].Lines = append(sales[i].Lines, l)
		}
		lrows.Close()
	}

	SalesCache.Put(shop, sales)
	writeJSON(w, http.StatusOK, sales)
}

// CreateSale records a direct cash sale
// @Summary      Create sale
// @Description  Record a settled sale and deduct stock through the same reservation path as credits. Same 409/422 stock semantics as credit creation.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        sale  body      models.SaleInput  true  "Sale contents"
// @Success      201   {object}  Response{data=models.Sale}
// @Failure      400   {object}  Response{error=string}
// @Failure      409   {object}  Response{error=string}
// @Failure      422   {object}  Response{error=string}
// @Router       /sales [post]
// @Security     BasicAuth
func CreateSale(w http.ResponseWriter, r *http.Request) {
	var input models.SaleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	report, items, err := stock.Check(r.Context(), Stock, input.Lines)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report.Blocking() {
		writeErrorData(w, http.StatusUnprocessableEntity, "stock_unavailable",
			"some lines reference unavailable stock", report.Problems())
		return
	}
	if report.NeedsConfirm() && !input.Confirm {
		metrics.StockWarnings.Inc()
		writeErrorData(w, http.StatusConflict, "stock_warning",
			"some lines over-request available stock, confirmation required", report.Problems())
		return
	}

	sale := models.Sale{
		ID:        uuid.NewString(),
		ShopID:    input.ShopID,
		Customer:  input.Customer,
		CreatedAt: time.Now(),
	}
	for _, li := range input.Lines {
		it := items[li.ItemID]
		line := models.SaleLine{
			ItemID:    li.ItemID,
			Name:      it.Name,
			Quantity:  li.Quantity,
			UnitPrice: it.Price,
			LineTotal: models.Money(li.Quantity) * it.Price,
		}
		sale.Lines = append(sale.Lines, line)
		sale.TotalAmount += line.LineTotal
	}

	tx, err := DB.Begin()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sales (id, shop_id, customer, total_amount)
		VALUES (?, ?, ?, ?)`, sale.ID, sale.ShopID, sale.Customer, sale.TotalAmount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, l := range sale.Lines {
		_, err = tx.Exec(`INSERT INTO sale_lines (sale_id, item_id, name, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`, sale.ID, l.ItemID, l.Name, l.Quantity, l.UnitPrice)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Deduct requested quantities after the sale record, mirroring credit
	// creation: a deduction failure is a partial commit the operator must
	// reconcile by hand.
	for _, li := range input.Lines {
		if err := Stock.DeductQuantity(r.Context(), li.ItemID, li.Quantity); err != nil {
			metrics.PartialCommits.Inc()
			slog.Error("partial commit, stock needs manual reconciliation",
				"sale_id", sale.ID, "error", err)
			writeErrorData(w, http.StatusInternalServerError, "partial_commit",
				"sale was recorded but stock deduction failed", map[string]string{"sale_id": sale.ID})
			return
		}
	}

	SalesCache.InvalidatePrefix(sale.ShopID)
	metrics.SalesRecorded.Inc()
	writeJSON(w, http.StatusCreated, sale)
}
