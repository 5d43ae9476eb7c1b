package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arwscan/arwscan/internal/model"
	"github.com/arwscan/arwscan/internal/platform/errs"
)

// mockProvider implements InspectionProvider for testing.
type mockProvider struct {
	result *model.InspectionReport
	err    error
}

func (m *mockProvider) Inspect(_ context.Context, _ string) (*model.InspectionReport, error) {
	return m.result, m.err
}

// mockStore records archived reports.
type mockStore struct {
	saved []*model.InspectionReport
	err   error
}

func (m *mockStore) SaveReport(report *model.InspectionReport) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, report)
	return nil
}

// mockHistory implements HistoryReader.
type mockHistory struct {
	reports  []*model.InspectionReport
	err      error
	gotLimit int
}

func (m *mockHistory) Recent(limit int) ([]*model.InspectionReport, error) {
	m.gotLimit = limit
	return m.reports, m.err
}

func newTestMux(provider InspectionProvider, store ReportStore, history HistoryReader) *http.ServeMux {
	logger := slog.Default()
	svc := NewService(provider, store, logger)
	transport := NewTransport(svc, history, logger)
	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	return mux
}

func sampleReport() *model.InspectionReport {
	return &model.InspectionReport{
		ID:    "report-1",
		URL:   "https://example.com",
		Title: "Example",
		Compliance: model.ComplianceResult{
			Score:      55,
			Components: []string{"machine-view", "llms.txt"},
		},
		ArwCompliant: true,
	}
}

func TestHandleInspect_Success(t *testing.T) {
	provider := &mockProvider{result: sampleReport()}
	store := &mockStore{}
	mux := newTestMux(provider, store, nil)

	body := `{"url": "https://example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/inspect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result model.InspectionReport
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Title != "Example" {
		t.Errorf("Title = %q, want %q", result.Title, "Example")
	}
	if result.Compliance.Score != 55 {
		t.Errorf("Compliance.Score = %d, want 55", result.Compliance.Score)
	}

	if len(store.saved) != 1 {
		t.Errorf("archived %d reports, want 1", len(store.saved))
	}
}

func TestHandleInspect_SaveFailureDoesNotFailRequest(t *testing.T) {
	provider := &mockProvider{result: sampleReport()}
	store := &mockStore{err: errors.New("disk full")}
	mux := newTestMux(provider, store, nil)

	body := `{"url": "https://example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/inspect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (archive failure must be silent)", rec.Code, http.StatusOK)
	}
}

func TestHandleInspect_EmptyURL(t *testing.T) {
	mux := newTestMux(&mockProvider{}, nil, nil)

	body := `{"url": ""}`
	req := httptest.NewRequest(http.MethodPost, "/inspect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleInspect_MalformedJSON(t *testing.T) {
	mux := newTestMux(&mockProvider{}, nil, nil)

	body := `{invalid json`
	req := httptest.NewRequest(http.MethodPost, "/inspect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleInspect_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "invalid input",
			err:        &errs.AppError{Kind: errs.InvalidInput, Message: "bad url"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unreachable",
			err:        &errs.AppError{Kind: errs.Unreachable, Message: "cannot reach"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "timeout",
			err:        &errs.AppError{Kind: errs.Timeout, Message: "timed out", Cause: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "parsing failed",
			err:        &errs.AppError{Kind: errs.ParsingFailed, Message: "bad html"},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&mockProvider{err: tt.err}, nil, nil)

			body := `{"url": "https://example.com"}`
			req := httptest.NewRequest(http.MethodPost, "/inspect", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleInspect_WrongMethod(t *testing.T) {
	mux := newTestMux(&mockProvider{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/inspect", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	// ServeMux returns 405 for method mismatch.
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleHistory(t *testing.T) {
	history := &mockHistory{reports: []*model.InspectionReport{sampleReport()}}
	mux := newTestMux(&mockProvider{}, nil, history)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if history.gotLimit != 20 {
		t.Errorf("limit = %d, want default 20", history.gotLimit)
	}

	var reports []*model.InspectionReport
	if err := json.NewDecoder(rec.Body).Decode(&reports); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != "report-1" {
		t.Errorf("reports = %+v", reports)
	}
}

func TestHandleHistory_CustomLimit(t *testing.T) {
	history := &mockHistory{}
	mux := newTestMux(&mockProvider{}, nil, history)

	req := httptest.NewRequest(http.MethodGet, "/history?limit=5", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if history.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", history.gotLimit)
	}
}

func TestHandleHistory_InvalidLimit(t *testing.T) {
	tests := []string{"0", "101", "-3", "abc"}

	for _, limit := range tests {
		t.Run(limit, func(t *testing.T) {
			mux := newTestMux(&mockProvider{}, nil, &mockHistory{})

			req := httptest.NewRequest(http.MethodGet, "/history?limit="+limit, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleHistory_Disabled(t *testing.T) {
	mux := newTestMux(&mockProvider{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleHistory_StoreError(t *testing.T) {
	mux := newTestMux(&mockProvider{}, nil, &mockHistory{err: errors.New("db closed")})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
