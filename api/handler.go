package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"fencecost/adapters/storage"
	"fencecost/api/envelope"
	"fencecost/core/output"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// inputHashHeader carries the envelope hash of a priced request
const inputHashHeader = "X-Input-Hash"

// handleEstimate handles POST /estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req EstimateRequest
	if !s.decode(w, r, &req) {
		return
	}

	env, err := s.normalizer.Normalize(envelope.RawInput{
		Kind:       output.KindEstimate,
		Lines:      rawLines(req.LineItems),
		LaborHours: req.LaborHours,
		LaborRate:  req.LaborRate,
		MarginPct:  req.MarginPct,
		Customer:   req.CustomerName,
		Project:    req.ProjectName,
	})
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	// Execute engine (NO COST LOGIC HERE)
	breakdown, err := s.engine.Estimate(env.Lines, env.Labor, env.MarginPct)
	s.respondEstimate(w, r, env, breakdown, err, req.QuoteOptions, start)
}

// handleFenceEstimate handles POST /estimate_fence
func (s *Server) handleFenceEstimate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req FenceEstimateRequest
	if !s.decode(w, r, &req) {
		return
	}

	env, err := s.normalizer.Normalize(envelope.RawInput{
		Kind: output.KindEstimate,
		Fence: &envelope.RawFence{
			LengthFt:   req.FenceLengthFt,
			Style:      req.Style,
			PostsPerFt: req.PostsPerFt,
			Gates:      req.Gates,
		},
		LaborHours: req.LaborHours,
		LaborRate:  req.LaborRate,
		MarginPct:  req.MarginPct,
		Customer:   req.CustomerName,
		Project:    req.ProjectName,
	})
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	breakdown, err := s.engine.EstimateFence(*env.Fence, env.Labor, env.MarginPct)
	s.respondEstimate(w, r, env, breakdown, err, req.QuoteOptions, start)
}

func (s *Server) respondEstimate(w http.ResponseWriter, r *http.Request, env *envelope.Envelope,
	b *types.EstimateBreakdown, err error, opts QuoteOptions, start time.Time) {
	entry := envelope.CreateAuditEntry(env, middleware.GetReqID(r.Context()), r.RemoteAddr)
	defer func() {
		entry.SetDuration(time.Since(start))
		_ = s.audit.Log(entry)
	}()

	if err != nil {
		entry.MarkFailed(err)
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	q := s.newQuote(env, b)
	resp := NewEstimateResponse(b)

	if opts.IncludePDF {
		name := opts.Format
		if name == "" {
			name = string(output.FormatPDF)
		}
		f, err := s.formats.Get(output.Format(name))
		if err != nil {
			entry.MarkFailed(err)
			s.writeError(w, r, err, http.StatusBadRequest)
			return
		}
		var buf bytes.Buffer
		if err := f.Render(&buf, q); err != nil {
			entry.MarkFailed(err)
			s.writeError(w, r, err, http.StatusInternalServerError)
			return
		}
		resp.PDFBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	}

	if opts.Save {
		id, err := s.save(r, q)
		if err != nil {
			entry.MarkFailed(err)
			s.writeError(w, r, err, http.StatusInternalServerError)
			return
		}
		resp.QuoteID = id
		entry.QuoteID = id
	}

	entry.Total = types.RoundMoney(b.Total).StringFixed(types.MoneyPlaces)
	w.Header().Set(inputHashHeader, env.InputHash)
	writeJSON(w, http.StatusOK, resp)
}

// handlePurchaseOrder handles POST /po; the document format comes from
// ?format= and defaults to pdf
func (s *Server) handlePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PORequest
	if !s.decode(w, r, &req) {
		return
	}

	env, err := s.normalizer.Normalize(envelope.RawInput{
		Kind:     output.KindPurchaseOrder,
		Lines:    rawLines(req.LineItems),
		Customer: req.CustomerName,
		Project:  req.ProjectName,
	})
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	entry := envelope.CreateAuditEntry(env, middleware.GetReqID(r.Context()), r.RemoteAddr)
	defer func() {
		entry.SetDuration(time.Since(start))
		_ = s.audit.Log(entry)
	}()

	f, err := s.formatParam(r, output.FormatPDF)
	if err != nil {
		entry.MarkFailed(err)
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	breakdown, err := s.engine.PurchaseOrder(env.Lines)
	if err != nil {
		entry.MarkFailed(err)
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	q := s.newQuote(env, breakdown)
	entry.Total = types.RoundMoney(breakdown.Total).StringFixed(types.MoneyPlaces)
	w.Header().Set(inputHashHeader, env.InputHash)
	if err := s.writeDocument(w, f, q); err != nil {
		entry.MarkFailed(err)
		s.writeError(w, r, err, http.StatusInternalServerError)
	}
}

// handleListQuotes handles GET /quotes
func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}

	query := r.URL.Query()
	filter := &storage.ListFilter{
		Customer: query.Get("customer"),
		Project:  query.Get("project"),
		Kind:     output.Kind(query.Get("kind")),
	}
	var err error
	if filter.Limit, err = intParam(query.Get("limit"), "limit"); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	if filter.Offset, err = intParam(query.Get("offset"), "offset"); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	if filter.Since, err = storage.ParseTime(query.Get("since"), "since"); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	if filter.Until, err = storage.ParseTime(query.Get("until"), "until"); err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	quotes, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}

	summaries := make([]QuoteSummary, 0, len(quotes))
	for _, q := range quotes {
		summaries = append(summaries, NewQuoteSummary(q))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": summaries,
		"count":  len(summaries),
	})
}

// handleGetQuote handles GET /quotes/{id}; ?format= renders the stored quote
// as a document instead of JSON
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}

	stored, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") != "" {
		f, err := s.formatParam(r, output.FormatPDF)
		if err != nil {
			s.writeError(w, r, err, http.StatusBadRequest)
			return
		}
		if err := s.writeDocument(w, f, stored.Quote); err != nil {
			s.writeError(w, r, err, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, NewQuoteResponse(stored))
}

// handleDeleteQuote handles DELETE /quotes/{id}
func (s *Server) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}

	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCatalog handles GET /catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewCatalogResponse(s.engine.Catalog()))
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"catalog_items": s.engine.Catalog().Len(),
		"store":         s.store != nil,
	})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": s.version,
		"formats": s.formats.Formats(),
	})
}

func (s *Server) newQuote(env *envelope.Envelope, b *types.EstimateBreakdown) *output.Quote {
	q := output.NewQuote(b)
	q.Kind = env.Kind
	q.Customer = env.Customer
	q.Project = env.Project
	q.Currency = s.currency
	return q
}

func (s *Server) save(r *http.Request, q *output.Quote) (string, error) {
	if s.store == nil {
		return "", errors.Config("quote storage is not configured", nil)
	}
	stored := storage.NewStoredQuote(q)
	if err := s.store.Save(r.Context(), stored); err != nil {
		return "", err
	}
	return stored.ID, nil
}

func (s *Server) formatParam(r *http.Request, fallback output.Format) (output.Formatter, error) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(fallback)
	}
	return s.formats.Get(output.Format(name))
}

// writeDocument renders q fully before writing so render failures can still
// produce an error response
func (s *Server) writeDocument(w http.ResponseWriter, f output.Formatter, q *output.Quote) error {
	var buf bytes.Buffer
	if err := f.Render(&buf, q); err != nil {
		return err
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.Filename(q, f)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store != nil {
		return true
	}
	WriteError(r.Context(), w, NewAPIError("STORE_DISABLED", "quote storage is not configured", http.StatusServiceUnavailable))
	return false
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(r.Context(), w, NewAPIError(codeInvalidJSON, "invalid request body: "+err.Error(), http.StatusBadRequest))
		return false
	}
	return true
}

// writeError maps err to the JSON envelope; lookupStatus is the status for
// not-found errors on this route
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, lookupStatus int) {
	apiErr := fromError(err, lookupStatus)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	WriteError(r.Context(), w, apiErr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func rawLines(items []LineItemRequest) []envelope.RawLine {
	lines := make([]envelope.RawLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, envelope.RawLine{SKU: item.SKU, Quantity: item.Quantity})
	}
	return lines
}

func intParam(value, name string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.Validation(name, "%s must be a non-negative integer", name)
	}
	return n, nil
}
