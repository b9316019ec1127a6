package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"dotplatform/internal/domain/payroll"
	"dotplatform/internal/domain/payslip"
	"dotplatform/internal/transport/http/api"
	"dotplatform/internal/transport/http/middleware"
	"dotplatform/internal/transport/http/shared"
)

const (
	FormatJSON = "json"
	FormatText = "text"
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

var reportFormats = []string{FormatJSON, FormatText, FormatHTML, FormatPDF}

// RunQueue runs payroll for a whole business, queued or on the request.
type RunQueue interface {
	EnqueuePayrollRun(businessID string, year, month int) bool
	RunPayrollNow(ctx context.Context, businessID string, year, month int) (payroll.RunSummary, error)
}

const runsEndpoint = "payroll.runs"

type Handler struct {
	Service  *payroll.Service
	Payslips *payslip.Generator
	Files    *payslip.FileStore
	Runs     RunQueue

	// Idempotency, when set, replays run requests that repeat an
	// Idempotency-Key.
	Idempotency middleware.IdempotencyStore
}

// NewHandler wires the payroll routes. files and runs may be nil; the
// storage option and run endpoint are then unavailable. Set Idempotency
// afterwards to replay repeated run requests.
func NewHandler(service *payroll.Service, payslips *payslip.Generator, files *payslip.FileStore, runs RunQueue) *Handler {
	return &Handler{Service: service, Payslips: payslips, Files: files, Runs: runs}
}

type batchPayload struct {
	Inputs []payroll.PayrollInput `json:"inputs"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type runPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Post("/calculate/batch", h.handleCalculateBatch)
		r.Post("/report", h.handleReport)
		r.Post("/payslips/archive", h.handleArchive)
		r.Post("/statements", h.handleIssueStatement)
		r.Post("/statements/{statementID}/status", h.handleUpdateStatus)
		r.Route("/businesses/{businessID}", func(r chi.Router) {
			r.Get("/employees/{userID}/periods/{year}/{month}", h.handlePeriodCalculation)
			r.Post("/employees/{userID}/periods/{year}/{month}/statement", h.handleIssuePeriodStatement)
			r.Get("/statements", h.handleListStatements)
			r.Post("/runs", h.handleEnqueueRun)
			r.Get("/payslips/{period}/{fileName}", h.handleDownloadPayslip)
		})
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var input payroll.PayrollInput
	if !decode(w, r, &input) {
		return
	}
	calc, err := h.Service.Calculate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalculateBatch(w http.ResponseWriter, r *http.Request) {
	var payload batchPayload
	if !decode(w, r, &payload) {
		return
	}
	if len(payload.Inputs) == 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "inputs", Reason: "must not be empty"}})
		return
	}
	calcs, err := h.Service.CalculateBatch(r.Context(), payload.Inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, calcs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = FormatJSON
	}
	v := shared.NewValidator()
	v.Enum("format", format, reportFormats, "must be one of json, text, html, pdf")
	if v.Reject(w, reqID) {
		return
	}

	var input payroll.PayrollInput
	if !decode(w, r, &input) {
		return
	}
	calc, err := h.Service.Calculate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !calc.Valid() {
		failInvalidCalculation(w, reqID, calc)
		return
	}
	report := payslip.FormatPayrollReport(calc.Result)

	switch format {
	case FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(payslip.GenerateTextReport(report)))
	case FormatHTML:
		body, err := payslip.GenerateHTMLReport(report)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	case FormatPDF:
		data, err := h.Payslips.GeneratePDF(report)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if wantsStore(r) {
			stored, err := h.store(r, func() (string, error) { return h.Files.SavePDF(r.Context(), report, data) })
			if err != nil {
				writeError(w, r, err)
				return
			}
			w.Header().Set("X-Payslip-Path", stored)
		}
		writeFile(w, "application/pdf", payslip.FileName(report), data)
	default:
		api.Success(w, report, reqID)
	}
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload batchPayload
	if !decode(w, r, &payload) {
		return
	}
	if len(payload.Inputs) == 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "inputs", Reason: "must not be empty"}})
		return
	}
	calcs, err := h.Service.CalculateBatch(r.Context(), payload.Inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reports := make([]payslip.Report, 0, len(calcs))
	var issues []shared.ValidationIssue
	for i, calc := range calcs {
		if !calc.Valid() {
			for _, msg := range append(append([]string{}, calc.InputValidation.Errors...), calc.ResultValidation.Errors...) {
				issues = append(issues, shared.ValidationIssue{Field: fmt.Sprintf("inputs[%d]", i), Reason: msg})
			}
			continue
		}
		reports = append(reports, payslip.FormatPayrollReport(calc.Result))
	}
	if len(issues) > 0 {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_payroll", "payroll input failed validation",
			map[string]any{"fields": issues}, reqID)
		return
	}
	first := reports[0]
	if wantsStore(r) {
		for i, report := range reports[1:] {
			if report.BusinessID != first.BusinessID || report.PeriodKey != first.PeriodKey {
				shared.FailValidation(w, reqID, []shared.ValidationIssue{{
					Field:  fmt.Sprintf("inputs[%d]", i+1),
					Reason: "stored archives must share one business and pay month",
				}})
				return
			}
		}
	}

	data, err := h.Payslips.GenerateBulkPDFZip(reports)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if wantsStore(r) {
		stored, err := h.store(r, func() (string, error) {
			return h.Files.SaveZip(r.Context(), first.BusinessID, first.PeriodKey, data)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("X-Payslip-Path", stored)
	}
	writeFile(w, "application/zip", fmt.Sprintf("payslips_%s.zip", first.PeriodKey), data)
}

func (h *Handler) handlePeriodCalculation(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}
	calc, err := h.Service.CalculateForPeriod(r.Context(), chi.URLParam(r, "businessID"), chi.URLParam(r, "userID"), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleIssueStatement(w http.ResponseWriter, r *http.Request) {
	var input payroll.PayrollInput
	if !decode(w, r, &input) {
		return
	}
	calc, err := h.Service.Calculate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, calc)
}

func (h *Handler) handleIssuePeriodStatement(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}
	calc, err := h.Service.CalculateForPeriod(r.Context(), chi.URLParam(r, "businessID"), chi.URLParam(r, "userID"), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, calc)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, calc payroll.Calculation) {
	reqID := middleware.GetRequestID(r.Context())
	if !calc.Valid() {
		failInvalidCalculation(w, reqID, calc)
		return
	}
	saved, err := h.Service.IssueStatement(r.Context(), calc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := map[string]any{
		"id":          saved.ID,
		"status":      payroll.StatusDraft,
		"created":     saved.Created,
		"changed":     saved.Changed,
		"calculation": calc,
	}
	if saved.Created {
		api.Created(w, body, reqID)
		return
	}
	api.Success(w, body, reqID)
}

func (h *Handler) handleListStatements(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year, month, _ := v.Period(r.URL.Query().Get("year"), r.URL.Query().Get("month"), payroll.MinValidYear, payroll.MaxValidYear)
	if v.Reject(w, reqID) {
		return
	}
	items, err := h.Service.ListStatements(r.Context(), chi.URLParam(r, "businessID"), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []payroll.StoredStatement{}
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload statusPayload
	if !decode(w, r, &payload) {
		return
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	v := shared.NewValidator()
	v.Required("status", status, "is required")
	v.Enum("status", status, []string{payroll.StatusDraft, payroll.StatusConfirmed, payroll.StatusPaid}, "must be draft, confirmed or paid")
	if v.Reject(w, reqID) {
		return
	}

	statementID := chi.URLParam(r, "statementID")
	if err := h.Service.UpdateStatementStatus(r.Context(), statementID, status); err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": statementID, "status": status}, reqID)
}

func (h *Handler) handleEnqueueRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if h.Runs == nil {
		api.Fail(w, http.StatusServiceUnavailable, "jobs_unavailable", "payroll runs are not enabled", reqID)
		return
	}
	var payload runPayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Year < payroll.MinValidYear || payload.Year > payroll.MaxValidYear {
		v.Add("year", fmt.Sprintf("must be between %d and %d", payroll.MinValidYear, payroll.MaxValidYear))
	}
	if payload.Month < 1 || payload.Month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	if v.Reject(w, reqID) {
		return
	}

	businessID := chi.URLParam(r, "businessID")
	sync := r.URL.Query().Get("sync") == "true"
	key := strings.TrimSpace(r.Header.Get(middleware.IdempotencyKeyHeader))
	hash := middleware.RequestHash(fmt.Appendf(nil, "%s:%04d-%02d:%t", businessID, payload.Year, payload.Month, sync))
	if h.replay(w, r, businessID, key, hash) {
		return
	}

	if sync {
		summary, err := h.Runs.RunPayrollNow(r.Context(), businessID, payload.Year, payload.Month)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.remember(r, businessID, key, hash, summary)
		api.Success(w, summary, reqID)
		return
	}

	if !h.Runs.EnqueuePayrollRun(businessID, payload.Year, payload.Month) {
		api.Fail(w, http.StatusServiceUnavailable, "job_queue_full", "payroll run queue is full", reqID)
		return
	}
	queued := map[string]any{
		"businessId": businessID,
		"period":     fmt.Sprintf("%04d-%02d", payload.Year, payload.Month),
		"status":     "queued",
	}
	h.remember(r, businessID, key, hash, queued)
	api.Accepted(w, queued, reqID)
}

// replay answers a repeated Idempotency-Key with the stored response and
// reports whether the request was handled.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request, scope, key, hash string) bool {
	if key == "" || h.Idempotency == nil {
		return false
	}
	reqID := middleware.GetRequestID(r.Context())
	stored, found, err := h.Idempotency.Check(r.Context(), scope, runsEndpoint, key, hash)
	if errors.Is(err, middleware.ErrIdempotencyConflict) {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", "Idempotency-Key was used for a different request", reqID)
		return true
	}
	if err != nil {
		slog.Warn("idempotency check failed", "requestId", reqID, "err", err)
		return false
	}
	if !found {
		return false
	}
	w.Header().Set("Idempotent-Replayed", "true")
	api.Success(w, stored, reqID)
	return true
}

func (h *Handler) remember(r *http.Request, scope, key, hash string, response any) {
	if key == "" || h.Idempotency == nil {
		return
	}
	encoded, err := json.Marshal(response)
	if err != nil {
		slog.Warn("idempotency response marshal failed", "err", err)
		return
	}
	if err := h.Idempotency.Save(r.Context(), scope, runsEndpoint, key, hash, encoded); err != nil {
		slog.Warn("idempotency save failed", "requestId", middleware.GetRequestID(r.Context()), "err", err)
	}
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if h.Files == nil {
		writeError(w, r, errStorageDisabled)
		return
	}
	fileName := chi.URLParam(r, "fileName")
	contentType := "application/pdf"
	if strings.HasSuffix(fileName, ".zip") {
		contentType = "application/zip"
	}
	rc, err := h.Files.Open(r.Context(), path.Join(chi.URLParam(r, "businessID"), chi.URLParam(r, "period"), fileName))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("payslip download interrupted", "file", fileName, "requestId", reqID, "err", err)
	}
}

func (h *Handler) store(r *http.Request, save func() (string, error)) (string, error) {
	if h.Files == nil {
		return "", errStorageDisabled
	}
	stored, err := save()
	if err != nil {
		return "", err
	}
	slog.Info("payslip stored", "path", stored, "requestId", middleware.GetRequestID(r.Context()))
	return stored, nil
}

var errStorageDisabled = errors.New("payslip storage is not configured")

func wantsStore(r *http.Request) bool {
	return r.URL.Query().Get("store") == "true"
}

func periodParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	v := shared.NewValidator()
	year, month, _ := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"), payroll.MinValidYear, payroll.MaxValidYear)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return 0, 0, false
	}
	return year, month, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func failInvalidCalculation(w http.ResponseWriter, reqID string, calc payroll.Calculation) {
	api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_payroll", "payroll input failed validation",
		map[string]any{
			"inputErrors":  calc.InputValidation.Errors,
			"resultErrors": calc.ResultValidation.Errors,
			"warnings":     append(append([]string{}, calc.InputValidation.Warnings...), calc.ResultValidation.Warnings...),
		}, reqID)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, payroll.ErrStatementNotFound):
		api.Fail(w, http.StatusNotFound, "statement_not_found", "pay statement not found", reqID)
	case errors.Is(err, payroll.ErrStatementLocked):
		api.Fail(w, http.StatusConflict, "statement_locked", "pay statement is no longer a draft", reqID)
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		api.Fail(w, http.StatusConflict, "invalid_status_transition", err.Error(), reqID)
	case errors.Is(err, payroll.ErrInvalidInput):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_payroll", err.Error(), reqID)
	case errors.Is(err, payslip.ErrIncompleteData):
		api.Fail(w, http.StatusUnprocessableEntity, "incomplete_payslip", err.Error(), reqID)
	case errors.Is(err, payslip.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "payslip_not_found", "payslip not found", reqID)
	case errors.Is(err, payslip.ErrInvalidPath):
		api.Fail(w, http.StatusBadRequest, "invalid_path", "invalid payslip path", reqID)
	case errors.Is(err, errStorageDisabled):
		api.Fail(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error(), reqID)
	default:
		slog.Error("payroll request failed", "method", r.Method, "path", r.URL.Path, "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll request failed", reqID)
	}
}
