package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kbelhadj/gestock/models"
)

const itemSelectQuery = `SELECT id, shop_id, name, category, price, quantity, created_at, updated_at FROM items`

func scanItem(scanner interface{ Scan(...any) error }) (models.Item, error) {
	var it models.Item
	err := scanner.Scan(&it.ID, &it.ShopID, &it.Name, &it.Category, &it.Price,
		&it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func getItemByID(id int) (models.Item, error) {
	return scanItem(DB.QueryRow(itemSelectQuery+" WHERE id = ?", id))
}

// ListItems lists inventory items
// @Summary      List items
// @Description  Get the shop's inventory items.
// @Tags         items
// @Produce      json
// @Param        shop_id  query     string  false  "Shop (defaults to main)"
// @Param        search   query     string  false  "Search by name or category"
// @Success      200      {object}  Response{data=[]models.Item}
// @Router       /items [get]
// @Security     BasicAuth
func ListItems(w http.ResponseWriter, r *http.Request) {
	query := itemSelectQuery
	conditions := []string{"shop_id = ?"}
	args := []any{shopID(r)}

	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(name LIKE ? OR category LIKE ?)")
		s := "%" + search + "%"
		args = append(args, s, s)
	}
	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY name"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		items = append(items, it)
	}
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem retrieves a single item by ID
// @Summary      Get item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  Response{data=models.Item}
// @Failure      404  {object}  Response{error=string}
// @Router       /items/{id} [get]
// @Security     BasicAuth
func GetItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	it, err := getItemByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// CreateItem creates a new inventory item
// @Summary      Create item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        item  body      models.ItemInput  true  "Item contents"
// @Success      201   {object}  Response{data=models.Item}
// @Failure      400   {object}  Response{error=string}
// @Router       /items [post]
// @Security     BasicAuth
func CreateItem(w http.ResponseWriter, r *http.Request) {
	var input models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`INSERT INTO items (shop_id, name, category, price, quantity)
		VALUES (?, ?, ?, ?, ?)`,
		input.ShopID, input.Name, input.Category, input.Price, input.Quantity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	id, _ := res.LastInsertId()
	it, err := getItemByID(int(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created item: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// UpdateItem updates an existing item
// @Summary      Update item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Item ID"
// @Param        item  body      models.ItemInput  true  "Updated item contents"
// @Success      200   {object}  Response{data=models.Item}
// @Failure      404   {object}  Response{error=string}
// @Router       /items/{id} [put]
// @Security     BasicAuth
func UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE items SET name = ?, category = ?, price = ?, quantity = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.Category, input.Price, input.Quantity, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	it, err := getItemByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated item: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItem deletes an item
// @Summary      Delete item
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /items/{id} [delete]
// @Security     BasicAuth
func DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// CheckStock runs the advisory reservation check
// @Summary      Check stock availability
// @Description  Classify requested quantities against live stock. Purely advisory: re-run automatically at credit/sale creation.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        lines  body      []models.CreditLineInput  true  "Requested lines"
// @Success      200    {object}  Response{data=stock.Report}
// @Failure      400    {object}  Response{error=string}
// @Router       /stock/check [post]
// @Security     BasicAuth
func CheckStock(w http.ResponseWriter, r *http.Request) {
	var lines []models.CreditLineInput
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "at least one line is required")
		return
	}
	report, err := Ledger.CheckStock(r.Context(), lines)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}
