package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kbelhadj/gestock/metrics"
	"github.com/kbelhadj/gestock/models"
)

// NextDocumentNumber previews the next document number
// @Summary      Preview next document number
// @Description  Compute the number the next finalized quote/invoice would get, without consuming it. Safe to call any number of times.
// @Tags         documents
// @Produce      json
// @Param        kind  query     string  true  "Document kind (quote or invoice)"
// @Success      200   {object}  Response{data=map[string]string}
// @Failure      400   {object}  Response{error=string}
// @Router       /documents/next-number [get]
// @Security     BasicAuth
func NextDocumentNumber(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != models.DocQuote && kind != models.DocInvoice {
		writeError(w, http.StatusBadRequest, "kind must be one of: quote, invoice")
		return
	}
	number, err := Seq.Preview(kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"kind": kind, "number": number})
}

// ListDocuments lists finalized documents
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        shop_id  query     string  false  "Shop (defaults to main)"
// @Param        kind     query     string  false  "Filter by kind"
// @Success      200      {object}  Response{data=[]models.Document}
// @Router       /documents [get]
// @Security     BasicAuth
func ListDocuments(w http.ResponseWriter, r *http.Request) {
	query := `SELECT id, shop_id, kind, number, customer, total, created_at
		FROM documents WHERE shop_id = ?`
	args := []any{shopID(r)}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ShopID, &d.Kind, &d.Number, &d.Customer, &d.Total, &d.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		docs = append(docs, d)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// CreateDocument finalizes a quote or invoice
// @Summary      Finalize document
// @Description  Commit the next sequence number for the kind and record the document. The commit is not idempotent: one call per finalized document.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        document  body      models.DocumentInput  true  "Document contents"
// @Success      201       {object}  Response{data=models.Document}
// @Failure      400       {object}  Response{error=string}
// @Router       /documents [post]
// @Security     BasicAuth
func CreateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	number, err := Seq.Next(input.Kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc := models.Document{
		ID:        uuid.NewString(),
		ShopID:    input.ShopID,
		Kind:      input.Kind,
		Number:    number,
		Customer:  input.Customer,
		Total:     input.Total,
		CreatedAt: time.Now(),
	}
	_, err = DB.Exec(`INSERT INTO documents (id, shop_id, kind, number, customer, total)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ShopID, doc.Kind, doc.Number, doc.Customer, doc.Total)
	if err != nil {
		// The number was already consumed; the resulting gap is accepted,
		// never reused.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.SequenceCommits.WithLabelValues(doc.Kind).Inc()
	writeJSON(w, http.StatusCreated, doc)
}
