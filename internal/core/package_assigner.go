package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"config-packager/internal/policies"
	"config-packager/internal/ports"
	"config-packager/internal/types"
)

// AssignmentMethods names the assignment steps in the order they apply.
var AssignmentMethods = []string{"bundle", "exported", "provider", "matches", "exclude"}

type AssignOptions struct {
	// IncludeUnpackaged appends the synthetic unpackaged package listing
	// items no package claims.
	IncludeUnpackaged bool
}

// PackageAssigner partitions a configuration collection into the packages
// of one bundle.
type PackageAssigner struct {
	Extension ports.ExtensionStoragePort
}

func NewPackageAssigner(extension ports.ExtensionStoragePort) PackageAssigner {
	return PackageAssigner{Extension: extension}
}

func (a PackageAssigner) Assign(ctx context.Context, bundle types.Bundle, collection types.ConfigCollection, opts AssignOptions) (*types.PackageSet, error) {
	assert.NotEmpty(ctx, bundle.MachineName, "bundle machine name must be set")
	set := types.NewPackageSet()

	declared := make(map[string]string, len(bundle.Packages))
	for _, def := range bundle.Packages {
		declared[def.MachineName] = NamespacedName(bundle, def.MachineName)
	}
	rules := make([]policies.AssignmentRule, 0, len(bundle.Packages))
	for _, def := range bundle.Packages {
		pkg, err := packageFromDefinition(bundle, def, declared)
		if err != nil {
			return nil, err
		}
		if set.Has(pkg.MachineName) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("package %s declared twice in bundle %s", pkg.MachineName, bundle.MachineName))
		}
		set.Put(pkg)
		rules = append(rules, policies.AssignmentRule{Package: pkg.MachineName, Matches: def.Matches})
	}

	if err := a.appendStoredPackages(bundle, set); err != nil {
		return nil, err
	}

	matcher := policies.NewAssignmentPolicy(rules)
	excluded := policies.NewPatternSet(bundle.Exclude)
	var unpackaged []string
	for _, item := range collection.Items() {
		target, ok := resolveItemPackage(bundle, set, matcher, item)
		if !ok {
			if excluded.Matches(item.Type, item.Name) {
				log.Ctx(ctx).Debug().Str("item", item.Name).Str("bundle", bundle.MachineName).Msg("item excluded from bundle")
				continue
			}
			unpackaged = append(unpackaged, item.Name)
			continue
		}
		set.Assign(target, item.Name)
		set.AddDependencies(target, item.Dependencies...)
	}

	if opts.IncludeUnpackaged {
		set.Put(types.Package{
			MachineName: types.UnpackagedMachineName,
			Name:        "Unpackaged",
			Description: "Configuration that has not been added to any package.",
			Kind:        types.PackageKindPackage,
			Status:      types.StatusNoExport,
			Config:      unpackaged,
		})
	}
	log.Ctx(ctx).Debug().
		Str("bundle", bundle.MachineName).
		Int("packages", set.Len()).
		Int("unpackaged", len(unpackaged)).
		Msg("configuration assigned")
	return set, nil
}

// NamespacedName prefixes a package machine name with the bundle machine
// name.  The default bundle, the unpackaged package and names that already
// carry the prefix are returned unchanged.
func NamespacedName(bundle types.Bundle, name string) string {
	if name == "" || name == types.UnpackagedMachineName || isDefaultBundle(bundle) {
		return name
	}
	prefix := bundle.MachineName + "_"
	if strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + name
}

// PlainName strips the bundle prefix added by NamespacedName.
func PlainName(bundle types.Bundle, name string) string {
	if isDefaultBundle(bundle) {
		return name
	}
	return strings.TrimPrefix(name, bundle.MachineName+"_")
}

func isDefaultBundle(bundle types.Bundle) bool {
	return bundle.IsDefault || bundle.MachineName == "" || bundle.MachineName == types.DefaultBundleMachineName
}

func packageFromDefinition(bundle types.Bundle, def types.PackageDefinition, declared map[string]string) (types.Package, error) {
	var pkg types.Package
	if err := copier.CopyWithOption(&pkg, &def, copier.Option{DeepCopy: true}); err != nil {
		return types.Package{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to copy package definition %s", def.MachineName)).
			WithCause(err)
	}
	pkg.MachineName = NamespacedName(bundle, def.MachineName)
	if pkg.Name == "" {
		pkg.Name = def.MachineName
	}
	pkg.Kind = types.PackageKindPackage
	pkg.Status = types.StatusDefault
	if pkg.Excluded {
		pkg.Status = types.StatusNoExport
	}
	deps := make([]string, 0, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		if namespaced, ok := declared[dep]; ok {
			dep = namespaced
		}
		deps = append(deps, dep)
	}
	pkg.Dependencies = types.MergeSet(nil, deps...)
	pkg.Dependencies = removeValue(pkg.Dependencies, pkg.MachineName)
	pkg.Config = nil
	return pkg, nil
}

func (a PackageAssigner) appendStoredPackages(bundle types.Bundle, set *types.PackageSet) error {
	if a.Extension == nil {
		return nil
	}
	infos, err := a.Extension.Packages()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list exported packages").
			WithCause(err)
	}
	for _, info := range infos {
		if info.Type == string(types.PackageKindProfile) || !belongsToBundle(bundle, info) {
			continue
		}
		name := NamespacedName(bundle, info.MachineName)
		if set.Has(name) {
			continue
		}
		label := info.Name
		if label == "" {
			label = info.MachineName
		}
		set.Put(types.Package{
			MachineName:  name,
			Name:         label,
			Description:  info.Description,
			Version:      info.Version,
			Kind:         types.PackageKindPackage,
			Status:       types.StatusDefault,
			Dependencies: removeValue(types.MergeSet(nil, info.Dependencies...), name),
		})
	}
	return nil
}

func belongsToBundle(bundle types.Bundle, info types.PackageInfo) bool {
	if isDefaultBundle(bundle) {
		return info.Bundle == "" || info.Bundle == bundle.MachineName
	}
	return info.Bundle == bundle.MachineName
}

func resolveItemPackage(bundle types.Bundle, set *types.PackageSet, matcher policies.AssignmentPolicy, item types.ConfigItem) (string, bool) {
	if item.Package != "" {
		if set.Has(item.Package) {
			return item.Package, true
		}
		if name := NamespacedName(bundle, item.Package); set.Has(name) {
			return name, true
		}
	}
	return matcher.Resolve(item.Type, item.Name)
}

func removeValue(values []string, target string) []string {
	var out []string
	for _, value := range values {
		if value != target {
			out = append(out, value)
		}
	}
	return out
}
