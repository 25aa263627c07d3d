package app

import (
	"context"
)

// ListPackages lists the packages of a bundle, the unpackaged pseudo
// package last.  Naming a package lists its items instead.
func (s Service) ListPackages(ctx context.Context, req ListPackagesRequest) (ListPackagesResult, error) {
	ss, err := s.openSession(ctx, req.Bundle, true)
	if err != nil {
		return ListPackagesResult{}, err
	}
	if req.Package != "" {
		pkg, err := ss.lookupPackage(req.Package)
		if err != nil {
			return ListPackagesResult{}, err
		}
		return ListPackagesResult{Bundle: ss.bundle, Items: ss.items(pkg.Config)}, nil
	}
	ss.refreshStatuses(ctx)
	result := ListPackagesResult{Bundle: ss.bundle}
	for _, pkg := range ss.packages.Packages() {
		result.Packages = append(result.Packages, PackageSummary{
			MachineName: pkg.MachineName,
			Name:        pkg.Name,
			Version:     pkg.Version,
			Status:      pkg.Status,
			Items:       len(pkg.Config),
		})
	}
	return result, nil
}
