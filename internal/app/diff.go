package app

import (
	"context"
	"fmt"

	"config-packager/internal/core"
	"config-packager/internal/types"
)

// NoDifferencesMessage is reported when no exported item drifted.
const NoDifferencesMessage = "No differences exist in exported features."

func (s Service) Diff(ctx context.Context, req DiffRequest) (DiffResult, error) {
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return DiffResult{}, err
	}
	packages := ss.packages.Packages()
	header := "All differences"
	if req.Package != "" {
		pkg, err := ss.lookupPackage(req.Package)
		if err != nil {
			return DiffResult{}, err
		}
		packages = []types.Package{pkg}
		header = fmt.Sprintf("Differences in %s", pkg.MachineName)
	} else if !ss.bundle.IsDefault && ss.bundle.MachineName != types.DefaultBundleMachineName {
		header = fmt.Sprintf("All differences in bundle: %s", ss.bundle.Name)
	}

	engine := core.NewDiffEngine(types.DiffSettings{
		Context:    req.Context,
		IgnoreKeys: s.Settings.Diff.IgnoreKeys,
	})
	detector := core.NewOverrideDetector(s.Active, s.Extension, engine)
	result := DiffResult{Header: header}
	for _, pkg := range packages {
		pkg.Config = ss.filterTypes(pkg.Config, req.Types)
		if len(pkg.Config) == 0 {
			continue
		}
		report := detector.Detect(ctx, pkg, true)
		if report.Empty() && len(report.Unreadable) == 0 {
			continue
		}
		if req.SideBySide {
			for i := range report.Overrides {
				report.Overrides[i].Rows = engine.Pair(report.Overrides[i].Rows)
			}
		}
		result.Reports = append(result.Reports, report)
	}
	return result, nil
}

// filterTypes keeps the items whose type is listed.  No types keeps all.
func (ss session) filterTypes(names []string, configTypes []string) []string {
	if len(configTypes) == 0 {
		return names
	}
	allowed := make(map[string]struct{}, len(configTypes))
	for _, configType := range configTypes {
		allowed[configType] = struct{}{}
	}
	var out []string
	for _, name := range names {
		item, ok := ss.collection.Get(name)
		if !ok {
			continue
		}
		if _, ok := allowed[item.Type]; ok {
			out = append(out, name)
		}
	}
	return out
}
