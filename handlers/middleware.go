package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kbelhadj/gestock/cache"
	"github.com/kbelhadj/gestock/ledger"
	"github.com/kbelhadj/gestock/metrics"
	"github.com/kbelhadj/gestock/models"
	"github.com/kbelhadj/gestock/sequence"
	"github.com/kbelhadj/gestock/stock"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Shared collaborators used by all handlers, assigned once in main.
var (
	DB         *sql.DB
	Ledger     *ledger.Ledger
	Stock      stock.Registry
	Seq        *sequence.Sequencer
	SalesCache *cache.Cache[[]models.Sale]
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

// writeErrorData writes an error response that also carries structured data,
// e.g. the per-line stock report the operator needs to correct input.
func writeErrorData(w http.ResponseWriter, status int, code, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data, Error: msg, Code: code})
}

// writeLedgerError maps ledger errors onto HTTP statuses. Validation and
// stock-availability problems come back as structured results the operator
// can act on; collaborator failures surface verbatim.
func writeLedgerError(w http.ResponseWriter, err error) {
	var (
		verr *ledger.ValidationError
		uerr *ledger.StockUnavailableError
		werr *ledger.StockWarningError
		oerr *ledger.OverpaymentError
		perr *ledger.PartialCommitError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, ledger.ErrCreditNotFound):
		writeError(w, http.StatusNotFound, "credit not found")
	case errors.As(err, &uerr):
		writeErrorData(w, http.StatusUnprocessableEntity, "stock_unavailable", err.Error(), uerr.Lines)
	case errors.As(err, &werr):
		metrics.StockWarnings.Inc()
		writeErrorData(w, http.StatusConflict, "stock_warning", err.Error(), werr.Lines)
	case errors.As(err, &oerr):
		writeErrorData(w, http.StatusUnprocessableEntity, "overpayment", err.Error(),
			map[string]models.Money{"max_amount": oerr.Max})
	case errors.Is(err, ledger.ErrNotSettled):
		writeError(w, http.StatusConflict, "credit has a remaining balance and cannot be closed")
	case errors.As(err, &perr):
		metrics.PartialCommits.Inc()
		slog.Error("partial commit, stock needs manual reconciliation",
			"credit_id", perr.CreditID, "error", perr.Err)
		writeErrorData(w, http.StatusInternalServerError, "partial_commit", err.Error(),
			map[string]string{"credit_id": perr.CreditID})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// BasicAuth is middleware that enforces HTTP Basic Authentication.
func BasicAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// If no credentials are configured, skip auth
		if user == "" && pass == "" {
			slog.Warn("auth credentials not set, API is unauthenticated")
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				w.Header().Set("WWW-Authenticate", `Basic realm="gestock"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// shopID extracts the shop from the query string, defaulting for single-shop
// deployments.
func shopID(r *http.Request) string {
	if s := r.URL.Query().Get("shop_id"); s != "" {
		return s
	}
	return models.DefaultShopID
}
