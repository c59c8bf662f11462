package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/work-reports/pkg/adapters"
	"github.com/de-tools/work-reports/pkg/models/api"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxRequestBytes = 1 << 20

type Handler struct {
	reports report.Service
	history report.History
	now     func() time.Time
}

func NewHandler(reports report.Service, history report.History) *Handler {
	return &Handler{
		reports: reports,
		history: history,
		now:     time.Now,
	}
}

// GenerateReport renders a report and returns the PDF as an attachment.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var body api.GenerateReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&body); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: request body: %v", domain.ErrInvalidArgument, err))
		return
	}
	req, err := h.generateRequest(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.reports.GenerateReport(ctx, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	download := result.Delivery.Download
	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", download.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Body)))
	if record := result.Delivery.Record; record != nil {
		w.Header().Set("X-Report-ID", record.ID)
		if record.StoragePath != nil {
			w.Header().Set("X-Storage-Path", *record.StoragePath)
		}
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(download.Body); err != nil {
		logger.Error().
			Err(err).
			Str("company_id", body.CompanyID).
			Msg("failed to write report body")
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	records, err := h.history.List(ctx, query.Get("company_id"), query.Get("on_behalf_of"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, adapters.MapDomainGeneratedReportsToAPI(records))
}

func (h *Handler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	signed, err := h.history.DownloadURL(ctx, id, r.URL.Query().Get("on_behalf_of"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, api.SignedURL{URL: signed.URL, ExpiresAt: signed.ExpiresAt})
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.history.Delete(ctx, id, r.URL.Query().Get("on_behalf_of")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generateRequest(body api.GenerateReportRequest) (report.GenerateRequest, error) {
	if body.CompanyID == "" {
		return report.GenerateRequest{}, fmt.Errorf("%w: company_id is required", domain.ErrInvalidArgument)
	}
	period, err := domain.ParsePeriod(body.Period)
	if err != nil {
		return report.GenerateRequest{}, err
	}
	reportDate := h.now().UTC().Truncate(24 * time.Hour)
	if body.ReportDate != "" {
		if reportDate, err = domain.ParseReportDate(body.ReportDate); err != nil {
			return report.GenerateRequest{}, err
		}
	}
	return report.GenerateRequest{
		CompanyID:  body.CompanyID,
		Period:     period,
		ReportDate: reportDate,
		OnBehalfOf: body.OnBehalfOf,
		Persist:    body.Persist,
	}, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	h.writeJSON(w, r, status, adapters.MapDomainErrorToAPI(err))
}

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPreconditionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTemplateMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStorageUploadFailed), errors.Is(err, domain.ErrMetadataWriteFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
