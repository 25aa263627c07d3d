package ports

import (
	"context"

	"config-packager/internal/types"
)

// FileRendererPort turns packages into the files an export writes.
type FileRendererPort interface {
	RenderPackage(ctx context.Context, pkg types.Package, bundle types.Bundle) ([]types.File, error)
	RenderProfile(ctx context.Context, profile types.Package, packages []types.Package, bundle types.Bundle) ([]types.File, error)
}
