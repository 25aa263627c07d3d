package ports

import "config-packager/internal/types"

// BundleSourcePort loads and stores bundle definitions.  A source without
// any definitions returns the implicit default bundle.
type BundleSourcePort interface {
	LoadBundles() ([]types.Bundle, error)
	SaveBundles(bundles []types.Bundle) error
}
