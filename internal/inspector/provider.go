package inspector

import (
	"context"

	"github.com/arwscan/arwscan/internal/model"
)

// InspectionProvider defines the contract for any discovery-and-scoring engine.
type InspectionProvider interface {
	Inspect(ctx context.Context, targetURL string) (*model.InspectionReport, error)
}
