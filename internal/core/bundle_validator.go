package core

import (
	"context"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/policies"
	"config-packager/internal/shared"
	"config-packager/internal/types"
)

type BundleValidator struct{}

func NewBundleValidator() BundleValidator {
	return BundleValidator{}
}

// ValidateBundles checks a loaded bundle file before any bundle is used.
func (v BundleValidator) ValidateBundles(ctx context.Context, bundles []types.Bundle) error {
	seen := map[string]struct{}{}
	defaults := 0
	for _, bundle := range bundles {
		if err := v.ValidateBundle(ctx, bundle); err != nil {
			return err
		}
		if _, ok := seen[bundle.MachineName]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("bundle %s declared twice", bundle.MachineName))
		}
		seen[bundle.MachineName] = struct{}{}
		if bundle.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("only one bundle may be marked is_default")
	}
	return nil
}

func (v BundleValidator) ValidateBundle(ctx context.Context, bundle types.Bundle) error {
	if !shared.ValidMachineName(bundle.MachineName) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid bundle machine name %q", bundle.MachineName))
	}
	if bundle.Profile != nil {
		if err := validateProfile(*bundle.Profile); err != nil {
			return err
		}
	}
	packages := map[string]struct{}{}
	for _, def := range bundle.Packages {
		if err := validatePackageDefinition(def); err != nil {
			return err
		}
		name := NamespacedName(bundle, def.MachineName)
		if _, ok := packages[name]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("package %s declared twice in bundle %s", name, bundle.MachineName))
		}
		packages[name] = struct{}{}
	}
	for _, pattern := range bundle.Exclude {
		if err := policies.ValidatePattern(pattern); err != nil {
			return err
		}
	}
	assert.NotEmpty(ctx, bundle.MachineName, "bundle machine name must be set")
	log.Ctx(ctx).Debug().Str("bundle", bundle.MachineName).Int("packages", len(bundle.Packages)).Msg("bundle validated")
	return nil
}

func validateProfile(profile types.ProfileDefinition) error {
	if !shared.ValidMachineName(profile.MachineName) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid profile machine name %q", profile.MachineName))
	}
	if profile.Version != "" {
		if _, err := ParseVersion(profile.Version); err != nil {
			return err
		}
	}
	return nil
}

func validatePackageDefinition(def types.PackageDefinition) error {
	if !shared.ValidMachineName(def.MachineName) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid package machine name %q", def.MachineName))
	}
	if def.MachineName == types.UnpackagedMachineName {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package name %s is reserved", types.UnpackagedMachineName))
	}
	if def.Version != "" {
		if _, err := ParseVersion(def.Version); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("package %s has an invalid version", def.MachineName)).
				WithCause(err)
		}
	}
	for _, pattern := range def.Matches {
		if err := policies.ValidatePattern(pattern); err != nil {
			return err
		}
	}
	return nil
}

// SelectBundle returns the named bundle.  An empty name selects the bundle
// flagged as default, falling back to the implicit default bundle.
func SelectBundle(bundles []types.Bundle, name string) (types.Bundle, error) {
	if name == "" {
		for _, bundle := range bundles {
			if bundle.IsDefault {
				return bundle, nil
			}
		}
		name = types.DefaultBundleMachineName
	}
	for _, bundle := range bundles {
		if bundle.MachineName == name {
			return bundle, nil
		}
	}
	if name == types.DefaultBundleMachineName {
		return types.DefaultBundle(), nil
	}
	return types.Bundle{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("bundle %s does not exist", name))
}
