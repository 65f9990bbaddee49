package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kbelhadj/gestock/ledger"
	"github.com/kbelhadj/gestock/metrics"
	"github.com/kbelhadj/gestock/models"
)

// ListCredits lists a shop's credits
// @Summary      List credits
// @Description  Get the shop's credits with recomputed amounts and status.
// @Tags         credits
// @Produce      json
// @Param        shop_id  query     string  false  "Shop (defaults to main)"
// @Param        status   query     string  false  "Filter by derived status (pending, partial, completed)"
// @Param        search   query     string  false  "Search by customer name, first name or phone"
// @Success      200      {object}  Response{data=[]models.Credit}
// @Router       /credits [get]
// @Security     BasicAuth
func ListCredits(w http.ResponseWriter, r *http.Request) {
	f := ledger.ListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	credits, err := Ledger.List(r.Context(), shopID(r), f)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credits)
}

// GetCredit retrieves a single credit by ID
// @Summary      Get credit
// @Tags         credits
// @Produce      json
// @Param        id   path      string  true  "Credit ID"
// @Success      200  {object}  Response{data=models.Credit}
// @Failure      404  {object}  Response{error=string}
// @Router       /credits/{id} [get]
// @Security     BasicAuth
func GetCredit(w http.ResponseWriter, r *http.Request) {
	credit, err := Ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credit)
}

// CreateCredit creates a credit against available stock
// @Summary      Create credit
// @Description  Validate the customer and lines, re-check stock and persist the credit. Returns 422 when a line has no stock at all; 409 with the per-line report when lines over-request stock and the request did not set confirm.
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        credit  body      models.CreditInput  true  "Credit contents"
// @Success      201     {object}  Response{data=models.Credit}
// @Failure      400     {object}  Response{error=string}
// @Failure      409     {object}  Response{error=string}
// @Failure      422     {object}  Response{error=string}
// @Router       /credits [post]
// @Security     BasicAuth
func CreateCredit(w http.ResponseWriter, r *http.Request) {
	var input models.CreditInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	credit, err := Ledger.Create(r.Context(), input)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	metrics.CreditsCreated.Inc()
	writeJSON(w, http.StatusCreated, credit)
}

// AddPayment appends a payment to a credit
// @Summary      Add payment
// @Description  Record an installment. Payments exceeding the remaining balance are rejected with the maximum acceptable amount.
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Credit ID"
// @Param        payment  body      models.PaymentInput  true  "Payment contents"
// @Success      200      {object}  Response{data=models.Credit}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Failure      422      {object}  Response{error=string}
// @Router       /credits/{id}/payments [post]
// @Security     BasicAuth
func AddPayment(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	credit, err := Ledger.AddPayment(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	metrics.PaymentsRecorded.Inc()
	writeJSON(w, http.StatusOK, credit)
}

// CloseCredit closes a settled credit
// @Summary      Close credit
// @Description  Mark a fully settled credit completed. Closing is only offered once the remaining balance is zero.
// @Tags         credits
// @Produce      json
// @Param        id   path      string  true  "Credit ID"
// @Success      200  {object}  Response{data=models.Credit}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /credits/{id}/close [post]
// @Security     BasicAuth
func CloseCredit(w http.ResponseWriter, r *http.Request) {
	credit, err := Ledger.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credit)
}

// DeleteCredit deletes a credit
// @Summary      Delete credit
// @Description  Remove a credit and its payments. Stock deducted at creation is NOT restored: deletion is a write-off, not an undo.
// @Tags         credits
// @Produce      json
// @Param        id   path      string  true  "Credit ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /credits/{id} [delete]
// @Security     BasicAuth
func DeleteCredit(w http.ResponseWriter, r *http.Request) {
	if err := Ledger.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLedgerError(w, err)
		return
	}
	metrics.CreditsDeleted.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// CreditStats aggregates the shop's credits
// @Summary      Credit statistics
// @Description  Counts per status and amount sums, recomputed from current amounts.
// @Tags         credits
// @Produce      json
// @Param        shop_id  query     string  false  "Shop (defaults to main)"
// @Success      200      {object}  Response{data=models.CreditStats}
// @Router       /credits/stats [get]
// @Security     BasicAuth
func CreditStats(w http.ResponseWriter, r *http.Request) {
	st, err := Ledger.Stats(r.Context(), shopID(r))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
