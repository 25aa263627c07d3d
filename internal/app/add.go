package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/adapters"
	"config-packager/internal/core"
	"config-packager/internal/policies"
	"config-packager/internal/shared"
	"config-packager/internal/types"
)

// Add records the items matched by the patterns in the package definition
// of the bundle file and writes the package to the export folder.  Items
// already provided by another package are skipped.
func (s Service) Add(ctx context.Context, req AddRequest) (AddResult, error) {
	for _, pattern := range req.Patterns {
		if err := policies.ValidatePattern(pattern); err != nil {
			return AddResult{}, err
		}
	}
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return AddResult{}, err
	}
	machineName := core.PlainName(ss.bundle, req.Package)
	if !shared.ValidMachineName(machineName) {
		return AddResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid package machine name: %q", req.Package))
	}
	target := core.NamespacedName(ss.bundle, machineName)
	result := AddResult{Package: target}

	matcher := policies.NewPatternSet(req.Patterns)
	for _, item := range ss.collection.Items() {
		if !matcher.Matches(item.Type, item.Name) {
			continue
		}
		if item.Package != "" && item.Package != target {
			log.Ctx(ctx).Warn().Str("item", item.Name).Str("package", item.Package).Msg("configuration is provided by another package")
			result.Skipped = append(result.Skipped, item.Name)
			continue
		}
		result.Added = append(result.Added, item.Name)
	}
	if len(result.Added) == 0 {
		result.EmptySelection = true
		return result, nil
	}

	if err := s.recordMatches(ctx, ss.bundle, machineName, result.Added); err != nil {
		return AddResult{}, err
	}
	export, err := s.Export(ctx, ExportRequest{
		Bundle:   ss.bundle.MachineName,
		Packages: []string{target},
		Method:   adapters.WriteMethodID,
	})
	if err != nil {
		return AddResult{}, err
	}
	result.Export = export
	return result, nil
}

// recordMatches appends exact item names to the package definition,
// declaring the package when the bundle does not have it yet.
func (s Service) recordMatches(ctx context.Context, bundle types.Bundle, machineName string, items []string) error {
	bundles, err := s.Bundles.LoadBundles()
	if err != nil {
		return err
	}
	position := -1
	for i := range bundles {
		if bundles[i].MachineName == bundle.MachineName {
			position = i
			break
		}
	}
	if position < 0 {
		bundles = append(bundles, bundle)
		position = len(bundles) - 1
	}
	target := &bundles[position]
	definition := -1
	for i := range target.Packages {
		if target.Packages[i].MachineName == machineName {
			definition = i
			break
		}
	}
	if definition < 0 {
		target.Packages = append(target.Packages, types.PackageDefinition{
			MachineName: machineName,
			Name:        machineName,
		})
		definition = len(target.Packages) - 1
	}
	def := &target.Packages[definition]
	for _, item := range items {
		if !containsString(def.Matches, item) {
			def.Matches = append(def.Matches, item)
		}
	}
	if err := core.NewBundleValidator().ValidateBundle(ctx, *target); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("bundle", target.MachineName).Str("package", machineName).Int("matches", len(def.Matches)).Msg("bundle updated")
	return s.Bundles.SaveBundles(bundles)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
