package ports

import (
	"context"

	"config-packager/internal/types"
)

// GenerationMethodPort commits rendered package files to an artifact.
// Generate returns an error only when the whole run cannot proceed;
// per-package failures are reported as results.
type GenerationMethodPort interface {
	ID() string
	Name() string
	Description() string
	Weight() int
	Generate(ctx context.Context, req types.GenerationRequest) ([]types.GenerationResult, error)

	// Location tells the caller where the last generated artifact lives.
	Location() string
}
