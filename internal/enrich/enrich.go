// Package enrich turns raw flight-event narratives into classified,
// summarized results. Two interchangeable backends satisfy the same
// contract: a deterministic rule engine and a model-backed pipeline.
package enrich

import (
	"context"
	"fmt"

	"github.com/setevik/flightdesk/internal/config"
	"github.com/setevik/flightdesk/internal/report"
)

// Service is the enrichment contract. ProcessText never fails: backends
// degrade to a sentinel Result instead of surfacing errors, so one bad
// record cannot abort an ingestion batch.
type Service interface {
	ProcessText(ctx context.Context, rawText string) report.Result
}

// New selects the active enrichment backend from configuration. An
// unknown or incomplete selection is fatal and must be surfaced before
// any ingestion begins.
func New(cfg *config.Config) (Service, error) {
	switch cfg.AI.Service {
	case config.ServiceMock:
		return NewRules(), nil
	case config.ServiceModel:
		return NewModel(cfg.AI.Model)
	default:
		return nil, fmt.Errorf("unknown ai service %q (want %q or %q)",
			cfg.AI.Service, config.ServiceMock, config.ServiceModel)
	}
}
