package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/core"
	"config-packager/internal/types"
)

// session is the state shared by every operation: the selected bundle,
// the configuration collection and its assignment into packages.
type session struct {
	bundle     types.Bundle
	collection types.ConfigCollection
	packages   *types.PackageSet
	engine     core.DiffEngine
	detector   core.OverrideDetector
}

func (s Service) openSession(ctx context.Context, bundleName string, includeUnpackaged bool) (session, error) {
	bundles, err := s.Bundles.LoadBundles()
	if err != nil {
		return session{}, err
	}
	if err := core.NewBundleValidator().ValidateBundles(ctx, bundles); err != nil {
		return session{}, err
	}
	bundle, err := core.SelectBundle(bundles, bundleName)
	if err != nil {
		return session{}, err
	}
	collection, err := core.NewCollectionBuilder(s.Active, s.Extension, s.Settings.Types).Build(ctx)
	if err != nil {
		return session{}, err
	}
	packages, err := core.NewPackageAssigner(s.Extension).Assign(ctx, bundle, collection, core.AssignOptions{
		IncludeUnpackaged: includeUnpackaged,
	})
	if err != nil {
		return session{}, err
	}
	engine := core.NewDiffEngine(s.Settings.Diff)
	log.Ctx(ctx).Debug().Str("bundle", bundle.MachineName).Int("packages", packages.Len()).Msg("session opened")
	return session{
		bundle:     bundle,
		collection: collection,
		packages:   packages,
		engine:     engine,
		detector:   core.NewOverrideDetector(s.Active, s.Extension, engine),
	}, nil
}

// lookupPackage resolves a package argument, accepting both the plain and
// the bundle-prefixed machine name.
func (ss session) lookupPackage(name string) (types.Package, error) {
	if pkg, ok := ss.packages.Get(name); ok {
		return pkg, nil
	}
	if pkg, ok := ss.packages.Get(core.NamespacedName(ss.bundle, name)); ok {
		return pkg, nil
	}
	return types.Package{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("package %s does not exist", name))
}

// refreshStatuses derives the status of every package with a shallow
// detection pass.
func (ss session) refreshStatuses(ctx context.Context) {
	for _, pkg := range ss.packages.Packages() {
		ss.packages.SetStatus(pkg.MachineName, ss.detector.Status(ctx, pkg))
	}
}

func (ss session) items(names []string) []types.ConfigItem {
	out := make([]types.ConfigItem, 0, len(names))
	for _, name := range names {
		if item, ok := ss.collection.Get(name); ok {
			out = append(out, item)
		}
	}
	return out
}
