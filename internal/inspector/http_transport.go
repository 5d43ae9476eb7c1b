package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arwscan/arwscan/internal/model"
	"github.com/arwscan/arwscan/internal/platform/errs"
)

const inspectTimeout = 60 * time.Second

var errURLRequired = errors.New("the \"url\" field is required")

// HistoryReader lists recently archived reports for the history endpoint.
type HistoryReader interface {
	Recent(limit int) ([]*model.InspectionReport, error)
}

// Transport handles HTTP requests for page inspection.
type Transport struct {
	service *Service
	history HistoryReader
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
// history may be nil when the history store is disabled.
func NewTransport(service *Service, history HistoryReader, logger *slog.Logger) *Transport {
	return &Transport{service: service, history: history, logger: logger}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /inspect", t.handleInspect)
	mux.HandleFunc("GET /history", t.handleHistory)
}

type inspectRequest struct {
	URL string `json:"url"`
}

func (r inspectRequest) validate() error {
	if r.URL == "" {
		return errURLRequired
	}
	return nil
}

func (t *Transport) handleInspect(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req inspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "Invalid request body. Please send a JSON object with a \"url\" field.")
		return
	}

	if err := req.validate(); err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), inspectTimeout)
	defer cancel()

	report, err := t.service.Inspect(ctx, req.URL)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleHistory(w http.ResponseWriter, r *http.Request) {
	if t.history == nil {
		t.renderError(w, http.StatusNotFound, "Report history is disabled.")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			t.renderError(w, http.StatusBadRequest, "The \"limit\" parameter must be an integer between 1 and 100.")
			return
		}
		limit = parsed
	}

	reports, err := t.history.Recent(limit)
	if err != nil {
		t.logger.Error("failed to read report history", "error", err)
		t.renderError(w, http.StatusInternalServerError, "Failed to read report history.")
		return
	}
	if reports == nil {
		reports = []*model.InspectionReport{}
	}

	t.renderJSON(w, http.StatusOK, reports)
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case errs.InvalidInput:
			status = http.StatusBadRequest
		case errs.Unreachable:
			status = http.StatusBadGateway
		case errs.Timeout:
			status = http.StatusGatewayTimeout
		case errs.ParsingFailed, errs.Unknown:
			// 500 Internal Server Error
		}
		t.renderError(w, status, appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
