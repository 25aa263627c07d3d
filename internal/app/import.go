package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"config-packager/internal/core"
	"config-packager/internal/shared"
	"config-packager/internal/types"
)

// NoImportSelectionMessage is reported when an import selects nothing.
const NoImportSelectionMessage = "No configuration was selected for import."

// importTarget is one package with the items an import asked for.  Items
// is empty when the whole package was named.
type importTarget struct {
	pkg   types.Package
	items []string
}

// Import reverts the active value of the targeted items to their packaged
// value.  Targets are "package" or "package:item".  Without Force only
// overridden items are imported and the rest are reported as skipped.
func (s Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return ImportResult{}, err
	}
	targets, err := ss.resolveImportTargets(req.Targets)
	if err != nil {
		return ImportResult{}, err
	}
	return ss.importTargets(ctx, s, targets, req.Force), nil
}

func (s Service) ImportAll(ctx context.Context, req ImportAllRequest) (ImportResult, error) {
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return ImportResult{}, err
	}
	var targets []importTarget
	for _, pkg := range ss.packages.Packages() {
		if pkg.IsUnpackaged() {
			continue
		}
		targets = append(targets, importTarget{pkg: pkg})
	}
	return ss.importTargets(ctx, s, targets, req.Force), nil
}

// ImportCandidates lists the overridden items as "package:item" references
// that Import accepts.
func (s Service) ImportCandidates(ctx context.Context, bundle string) ([]string, error) {
	ss, err := s.openSession(ctx, bundle, false)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, pkg := range ss.packages.Packages() {
		for _, name := range ss.detector.Detect(ctx, pkg, false).Names() {
			out = append(out, pkg.MachineName+":"+name)
		}
	}
	return out, nil
}

func (ss session) resolveImportTargets(references []string) ([]importTarget, error) {
	var targets []importTarget
	index := map[string]int{}
	whole := map[string]bool{}
	for _, reference := range references {
		packageName, itemName := shared.SplitItemReference(reference)
		pkg, err := ss.lookupPackage(packageName)
		if err != nil {
			return nil, err
		}
		if itemName != "" && !pkg.HasConfig(itemName) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("configuration %s is not part of package %s", itemName, pkg.MachineName))
		}
		position, ok := index[pkg.MachineName]
		if !ok {
			position = len(targets)
			index[pkg.MachineName] = position
			targets = append(targets, importTarget{pkg: pkg})
		}
		switch {
		case itemName == "":
			whole[pkg.MachineName] = true
			targets[position].items = nil
		case !whole[pkg.MachineName]:
			targets[position].items = append(targets[position].items, itemName)
		}
	}
	return targets, nil
}

func (ss session) importTargets(ctx context.Context, s Service, targets []importTarget, force bool) ImportResult {
	var selected []string
	var skipped []string
	for _, target := range targets {
		names := target.items
		if len(names) == 0 {
			names = target.pkg.Config
		}
		if force {
			selected = append(selected, names...)
			continue
		}
		scoped := target.pkg
		scoped.Config = names
		overridden := map[string]struct{}{}
		for _, name := range ss.detector.Detect(ctx, scoped, false).Names() {
			overridden[name] = struct{}{}
		}
		for _, name := range names {
			if _, ok := overridden[name]; ok {
				selected = append(selected, name)
			} else {
				skipped = append(skipped, name)
			}
		}
	}
	report := core.NewRevertExecutor(s.Active, s.Extension).Revert(ctx, selected, ss.collection)
	return ImportResult{Report: report, Skipped: skipped}
}
