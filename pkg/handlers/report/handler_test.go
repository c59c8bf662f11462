package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/work-reports/pkg/models/api"
	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GenerateReport(ctx context.Context, req report.GenerateRequest) (*report.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.GenerateResult), args.Error(1)
}

func (m *mockService) Preview(ctx context.Context, req report.GenerateRequest) (*report.Preview, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Preview), args.Error(1)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) List(ctx context.Context, companyID, onBehalfOf string) ([]domain.GeneratedArtifactRecord, error) {
	args := m.Called(ctx, companyID, onBehalfOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeneratedArtifactRecord), args.Error(1)
}

func (m *mockHistory) Delete(ctx context.Context, id, onBehalfOf string) error {
	return m.Called(ctx, id, onBehalfOf).Error(0)
}

func (m *mockHistory) DownloadURL(ctx context.Context, id, onBehalfOf string) (*report.SignedURL, error) {
	args := m.Called(ctx, id, onBehalfOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SignedURL), args.Error(1)
}

var (
	march      = domain.Period{Year: 2025, Month: time.March}
	reportDate = time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	pdfBody    = []byte("%PDF-1.3 test")
)

func setupHandler(service *mockService, history *mockHistory) *Handler {
	h := NewHandler(service, history)
	h.now = func() time.Time { return time.Date(2025, 4, 2, 15, 30, 0, 0, time.UTC) }
	return h
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGenerateReport(t *testing.T) {
	path := "u1/c1/2025-03.pdf"
	tests := []struct {
		name            string
		body            string
		setupMock       func(*mockService)
		expectedStatus  int
		expectedStorage string
	}{
		{
			name: "ephemeral report",
			body: `{"company_id": "c1", "period": "2025-03", "report_date": "2025-04-02"}`,
			setupMock: func(m *mockService) {
				m.On("GenerateReport", mock.Anything, report.GenerateRequest{
					CompanyID:  "c1",
					Period:     march,
					ReportDate: reportDate,
				}).Return(&report.GenerateResult{
					Artifact: pdfBody,
					Delivery: &report.DeliveryResult{Download: report.NewDownload(march, pdfBody)},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "persisted report defaults the date to today",
			body: `{"company_id": "c1", "period": "2025-03-01", "persist": true}`,
			setupMock: func(m *mockService) {
				m.On("GenerateReport", mock.Anything, report.GenerateRequest{
					CompanyID:  "c1",
					Period:     march,
					ReportDate: reportDate,
					Persist:    true,
				}).Return(&report.GenerateResult{
					Artifact: pdfBody,
					Delivery: &report.DeliveryResult{
						Download: report.NewDownload(march, pdfBody),
						Record:   &domain.GeneratedArtifactRecord{ID: "r1", StoragePath: &path, Persisted: true},
					},
				}, nil)
			},
			expectedStatus:  http.StatusOK,
			expectedStorage: path,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockService)
			tt.setupMock(service)
			h := setupHandler(service, new(mockHistory))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.GenerateReport(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename=work-report-2025-03.pdf", rec.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.expectedStorage, rec.Header().Get("X-Storage-Path"))
			assert.Equal(t, pdfBody, rec.Body.Bytes())
			service.AssertExpectations(t)
		})
	}
}

func TestGenerateReport_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedKind   string
	}{
		{name: "broken json", body: `{"company_id":`, expectedStatus: http.StatusBadRequest, expectedKind: "invalid_argument"},
		{name: "missing company", body: `{"period": "2025-03"}`, expectedStatus: http.StatusBadRequest, expectedKind: "invalid_argument"},
		{name: "bad period", body: `{"company_id": "c1", "period": "March"}`, expectedStatus: http.StatusBadRequest, expectedKind: "invalid_argument"},
		{name: "bad date", body: `{"company_id": "c1", "period": "2025-03", "report_date": "02.04.2025"}`, expectedStatus: http.StatusBadRequest, expectedKind: "invalid_argument"},
		{name: "not configured", serviceErr: domain.ErrNotConfigured, expectedStatus: http.StatusUnprocessableEntity, expectedKind: "not_configured"},
		{name: "no work records", serviceErr: domain.ErrNoWorkRecords, expectedStatus: http.StatusUnprocessableEntity, expectedKind: "no_work_records"},
		{name: "company not found", serviceErr: fmt.Errorf("company c9: %w", domain.ErrNotFound), expectedStatus: http.StatusNotFound, expectedKind: "not_found"},
		{name: "denied", serviceErr: domain.ErrAuthorizationDenied, expectedStatus: http.StatusForbidden, expectedKind: "authorization_denied"},
		{name: "malformed template", serviceErr: domain.ErrTemplateMalformed, expectedStatus: http.StatusUnprocessableEntity, expectedKind: "template_malformed"},
		{name: "render failed", serviceErr: domain.ErrRenderFailed, expectedStatus: http.StatusInternalServerError, expectedKind: "render_failed"},
		{name: "upload failed", serviceErr: domain.ErrStorageUploadFailed, expectedStatus: http.StatusBadGateway, expectedKind: "storage_upload_failed"},
		{name: "metadata failed", serviceErr: domain.ErrMetadataWriteFailed, expectedStatus: http.StatusBadGateway, expectedKind: "metadata_write_failed"},
		{name: "unexpected", serviceErr: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedKind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockService)
			if tt.serviceErr != nil {
				service.On("GenerateReport", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}
			body := tt.body
			if body == "" {
				body = `{"company_id": "c1", "period": "2025-03"}`
			}
			h := setupHandler(service, new(mockHistory))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.GenerateReport(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var response api.Error
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, tt.expectedKind, response.Kind)
			service.AssertExpectations(t)
		})
	}
}

func TestListReports(t *testing.T) {
	path := "u1/c1/2025-03.pdf"
	createdAt := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	history := new(mockHistory)
	history.On("List", mock.Anything, "c1", "u1").Return([]domain.GeneratedArtifactRecord{
		{
			ID:          "r1",
			ActorID:     "u1",
			CompanyID:   "c1",
			CompanyName: "Acme",
			Period:      march,
			ReportDate:  reportDate,
			StoragePath: &path,
			Persisted:   true,
			CreatedAt:   createdAt,
		},
	}, nil)
	h := setupHandler(new(mockService), history)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?company_id=c1&on_behalf_of=u1", nil)
	rec := httptest.NewRecorder()

	h.ListReports(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response []api.GeneratedReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, []api.GeneratedReport{
		{
			ID:          "r1",
			CompanyID:   "c1",
			CompanyName: "Acme",
			Period:      "2025-03",
			ReportDate:  "2025-04-02",
			StoragePath: &path,
			Persisted:   true,
			CreatedAt:   createdAt,
		},
	}, response)
	history.AssertExpectations(t)
}

func TestListReports_Empty(t *testing.T) {
	history := new(mockHistory)
	history.On("List", mock.Anything, "", "").Return([]domain.GeneratedArtifactRecord{}, nil)
	h := setupHandler(new(mockService), history)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	rec := httptest.NewRecorder()

	h.ListReports(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetDownloadURL(t *testing.T) {
	expiresAt := time.Date(2025, 4, 2, 11, 0, 0, 0, time.UTC)
	tests := []struct {
		name           string
		setupMock      func(*mockHistory)
		expectedStatus int
	}{
		{
			name: "signed",
			setupMock: func(m *mockHistory) {
				m.On("DownloadURL", mock.Anything, "r1", "").
					Return(&report.SignedURL{URL: "https://bucket/u1/c1/2025-03.pdf?sig", ExpiresAt: expiresAt}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown report",
			setupMock: func(m *mockHistory) {
				m.On("DownloadURL", mock.Anything, "r1", "").Return(nil, domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := new(mockHistory)
			tt.setupMock(history)
			h := setupHandler(new(mockService), history)

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/reports/r1/download-url", nil), "id", "r1")
			rec := httptest.NewRecorder()

			h.GetDownloadURL(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var response api.SignedURL
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Equal(t, "https://bucket/u1/c1/2025-03.pdf?sig", response.URL)
				assert.True(t, expiresAt.Equal(response.ExpiresAt))
			}
			history.AssertExpectations(t)
		})
	}
}

func TestDeleteReport(t *testing.T) {
	history := new(mockHistory)
	history.On("Delete", mock.Anything, "r1", "u1").Return(nil).Once()
	h := setupHandler(new(mockService), history)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/reports/r1?on_behalf_of=u1", nil), "id", "r1")
	rec := httptest.NewRecorder()

	h.DeleteReport(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	history.AssertExpectations(t)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("wrapped: %w", domain.ErrNotFound)))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(domain.ErrPreconditionFailed))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(domain.ErrLocalDeliveryFailed))
}
