package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/core"
	"config-packager/internal/ports"
	"config-packager/internal/types"
)

const renderFailureTemplate = "{type} {package} could not be rendered. Error: {error}."

type resettable interface {
	Reset()
}

func (s Service) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return ExportResult{}, err
	}
	ss.refreshStatuses(ctx)
	profile := s.profileDefinition(ss.bundle)
	if req.AddProfile && profile.MachineName == "" {
		return ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no profile is configured for this bundle")
	}
	method, err := s.generationMethod(profile.MachineName, req.Method)
	if err != nil {
		return ExportResult{}, err
	}
	selected, err := ss.selectPackages(req.Packages)
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{Method: method.ID()}
	var exportable []types.Package
	for _, pkg := range selected {
		if !pkg.Exportable() {
			log.Ctx(ctx).Warn().Str("package", pkg.MachineName).Msg("package is excluded from export")
			result.Skipped = append(result.Skipped, pkg.MachineName)
			continue
		}
		exportable = append(exportable, pkg)
	}
	if len(exportable) == 0 {
		log.Ctx(ctx).Info().Msg("no packages selected for export")
		result.EmptySelection = true
		return result, nil
	}

	request := types.GenerationRequest{}
	failures := map[string]types.GenerationResult{}
	for _, pkg := range exportable {
		files, err := s.Renderer.RenderPackage(ctx, pkg, ss.bundle)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("package", pkg.MachineName).Msg("failed to render package")
			failures[pkg.MachineName] = renderFailure(pkg, err)
			continue
		}
		pkg.Files = files
		request.Packages = append(request.Packages, pkg)
	}

	var profileFailure *types.GenerationResult
	if req.AddProfile {
		profilePkg := profilePackage(profile, request.Packages)
		files, err := s.Renderer.RenderProfile(ctx, profilePkg, request.Packages, ss.bundle)
		if err != nil {
			failure := renderFailure(profilePkg, err)
			profileFailure = &failure
		} else {
			profilePkg.Files = files
			request.Profile = &profilePkg
		}
	}

	generated, err := method.Generate(ctx, request)
	if err != nil {
		return ExportResult{}, err
	}
	if extension, ok := s.Extension.(resettable); ok {
		extension.Reset()
	}
	result.Location = method.Location()
	result.Results = orderResults(exportable, generated, failures, profileFailure)
	log.Ctx(ctx).Debug().
		Str("method", method.ID()).
		Int("packages", len(exportable)).
		Int("failed", result.Failed()).
		Msg("export finished")
	return result, nil
}

// generationMethod resolves a method id, falling back to the configured one.
func (s Service) generationMethod(profileName string, id string) (ports.GenerationMethodPort, error) {
	registry, err := core.NewGenerationRegistry(s.Methods(s.Settings, profileName)...)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = s.Settings.GenerationMethod
	}
	return registry.Get(id)
}

// selectPackages resolves the requested packages, or every package of the
// session when none are named.  Unknown names fail before anything is
// written.
func (ss session) selectPackages(names []string) ([]types.Package, error) {
	if len(names) == 0 {
		return ss.packages.Packages(), nil
	}
	seen := map[string]struct{}{}
	out := make([]types.Package, 0, len(names))
	for _, name := range names {
		pkg, err := ss.lookupPackage(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[pkg.MachineName]; ok {
			continue
		}
		seen[pkg.MachineName] = struct{}{}
		out = append(out, pkg)
	}
	return out, nil
}

func profilePackage(profile types.ProfileDefinition, packages []types.Package) types.Package {
	deps := make([]string, 0, len(packages))
	for _, pkg := range packages {
		deps = append(deps, pkg.MachineName)
	}
	return types.Package{
		MachineName:  profile.MachineName,
		Name:         profile.Name,
		Description:  profile.Description,
		Version:      profile.Version,
		Kind:         types.PackageKindProfile,
		Status:       types.StatusDefault,
		Dependencies: types.MergeSet(nil, deps...),
	}
}

func renderFailure(pkg types.Package, err error) types.GenerationResult {
	name := pkg.Name
	if name == "" {
		name = pkg.MachineName
	}
	return types.GenerationResult{
		PackageName:     pkg.MachineName,
		Kind:            pkg.Kind,
		MessageTemplate: renderFailureTemplate,
		Variables: map[string]string{
			"type":    types.KindLabel(pkg.Kind),
			"package": name,
			"error":   err.Error(),
		},
	}
}

// orderResults lists the profile first and then every package in request
// order, with render failures in the place of the package they belong to.
func orderResults(packages []types.Package, generated []types.GenerationResult, failures map[string]types.GenerationResult, profileFailure *types.GenerationResult) []types.GenerationResult {
	out := make([]types.GenerationResult, 0, len(packages)+1)
	if profileFailure != nil {
		out = append(out, *profileFailure)
	}
	byPackage := map[string]types.GenerationResult{}
	for _, result := range generated {
		if result.Kind == types.PackageKindProfile {
			out = append(out, result)
			continue
		}
		byPackage[result.PackageName] = result
	}
	for _, pkg := range packages {
		if failure, ok := failures[pkg.MachineName]; ok {
			out = append(out, failure)
			continue
		}
		if result, ok := byPackage[pkg.MachineName]; ok {
			out = append(out, result)
			continue
		}
		out = append(out, types.GenerationResult{
			PackageName:     pkg.MachineName,
			Kind:            pkg.Kind,
			MessageTemplate: fmt.Sprintf("%s %s was not generated.", types.KindLabel(pkg.Kind), pkg.MachineName),
		})
	}
	return out
}
