package inspector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arwscan/arwscan/internal/model"
	"github.com/arwscan/arwscan/internal/platform/errs"
	"github.com/arwscan/arwscan/internal/platform/requestid"
)

// ReportStore persists finished reports. The core engine never touches
// persistence; a save failure is logged and otherwise ignored.
type ReportStore interface {
	SaveReport(report *model.InspectionReport) error
}

// Service orchestrates an InspectionProvider, archives its reports, and
// logs outcomes.
type Service struct {
	provider InspectionProvider
	store    ReportStore
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider. store may
// be nil when report history is disabled.
func NewService(provider InspectionProvider, store ReportStore, logger *slog.Logger) *Service {
	return &Service{provider: provider, store: store, logger: logger}
}

// Inspect delegates to the provider, archives the report, and logs the outcome.
func (s *Service) Inspect(ctx context.Context, targetURL string) (*model.InspectionReport, error) {
	logger := s.logger.With("url", targetURL, "request_id", requestid.FromContext(ctx))

	report, err := s.provider.Inspect(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "Inspection timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		attrs := []any{"error", err}
		var appErr *errs.AppError
		if errors.As(err, &appErr) {
			attrs = append(attrs, "error_kind", appErr.Kind.String())
			if appErr.UpstreamStatus != 0 {
				attrs = append(attrs, "target_status", appErr.UpstreamStatus)
			}
		}
		logger.Error("inspection failed", attrs...)
		return nil, err
	}

	if s.store != nil {
		if saveErr := s.store.SaveReport(report); saveErr != nil {
			logger.Warn("failed to archive report", "error", saveErr)
		}
	}

	logger.Info("inspection complete",
		"report_id", report.ID,
		"compliance_score", report.Compliance.Score,
		"geo_score", report.Score.Value,
		"arw_compliant", report.ArwCompliant,
		"machine_view", report.MachineView.Found,
		"protocols", len(report.Protocols),
		"mcp_servers", len(report.McpServers),
	)
	return report, nil
}
