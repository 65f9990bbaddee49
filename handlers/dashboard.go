package handlers

import (
	"net/http"

	"github.com/kbelhadj/gestock/models"
)

type dashboardData struct {
	TotalItems     int `json:"total_items"`
	TotalCredits   int `json:"total_credits"`
	TotalSales     int `json:"total_sales"`
	TotalDocuments int `json:"total_documents"`

	Credits models.CreditStats `json:"credits"`

	SalesRevenue  models.Money `json:"sales_revenue"`
	LowStockItems int          `json:"low_stock_items"` // quantity <= 2
	OutOfStock    int          `json:"out_of_stock"`

	RecentSales []map[string]any `json:"recent_sales"`
}

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get totals for items, credits, sales and documents, credit settlement stats and recent sales.
// @Tags         dashboard
// @Produce      json
// @Param        shop_id  query     string  false  "Shop (defaults to main)"
// @Success      200      {object}  Response{data=dashboardData}
// @Router       /dashboard [get]
// @Security     BasicAuth
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	shop := shopID(r)
	var d dashboardData

	DB.QueryRow("SELECT COUNT(*) FROM items WHERE shop_id = ?", shop).Scan(&d.TotalItems)
	DB.QueryRow("SELECT COUNT(*) FROM credits WHERE shop_id = ?", shop).Scan(&d.TotalCredits)
	DB.QueryRow("SELECT COUNT(*) FROM sales WHERE shop_id = ?", shop).Scan(&d.TotalSales)
	DB.QueryRow("SELECT COUNT(*) FROM documents WHERE shop_id = ?", shop).Scan(&d.TotalDocuments)

	DB.QueryRow("SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE shop_id = ?", shop).Scan(&d.SalesRevenue)
	DB.QueryRow("SELECT COUNT(*) FROM items WHERE shop_id = ? AND quantity > 0 AND quantity <= 2", shop).Scan(&d.LowStockItems)
	DB.QueryRow("SELECT COUNT(*) FROM items WHERE shop_id = ? AND quantity <= 0", shop).Scan(&d.OutOfStock)

	stats, err := Ledger.Stats(r.Context(), shop)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	d.Credits = stats

	// Recent 5 sales
	rows, err := DB.Query(`SELECT id, customer, total_amount, created_at
		FROM sales WHERE shop_id = ? ORDER BY created_at DESC LIMIT 5`, shop)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var id, customer, createdAt string
			var amount models.Money
			rows.Scan(&id, &customer, &amount, &createdAt)
			d.RecentSales = append(d.RecentSales, map[string]any{
				"id":           id,
				"customer":     customer,
				"total_amount": amount,
				"created_at":   createdAt,
			})
		}
	}
	if d.RecentSales == nil {
		d.RecentSales = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, d)
}
