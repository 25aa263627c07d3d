package adapters

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

// YAMLRendererAdapter renders packages into the directory layout read by
// ExtensionStorageAdapter.  Item documents come from Source, normally the
// active storage.
type YAMLRendererAdapter struct {
	Source     ports.StoragePort
	IgnoreKeys []string
}

func NewYAMLRendererAdapter(source ports.StoragePort, ignoreKeys []string) YAMLRendererAdapter {
	return YAMLRendererAdapter{Source: source, IgnoreKeys: append([]string(nil), ignoreKeys...)}
}

func (a YAMLRendererAdapter) RenderPackage(ctx context.Context, pkg types.Package, bundle types.Bundle) ([]types.File, error) {
	info := types.PackageInfo{
		Name:         pkg.Name,
		Type:         string(types.PackageKindPackage),
		Description:  pkg.Description,
		Version:      pkg.Version,
		Bundle:       bundleReference(bundle),
		Dependencies: pkg.Dependencies,
	}
	infoFile, err := renderInfo(pkg.MachineName, info)
	if err != nil {
		return nil, err
	}
	files := []types.File{infoFile}
	for _, item := range pkg.Config {
		doc, ok, err := a.Source.Read(item)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to read %s", item)).
				WithCause(err)
		}
		if !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("configuration %s does not exist", item))
		}
		content, err := encodeDocument(stripKeys(doc, a.IgnoreKeys))
		if err != nil {
			return nil, err
		}
		files = append(files, types.File{
			Filename: path.Join(pkg.MachineName, "config", "install", item+configFileExt),
			Content:  content,
		})
	}
	log.Ctx(ctx).Debug().Str("package", pkg.MachineName).Int("files", len(files)).Msg("package rendered")
	return files, nil
}

func (a YAMLRendererAdapter) RenderProfile(ctx context.Context, profile types.Package, packages []types.Package, bundle types.Bundle) ([]types.File, error) {
	deps := make([]string, 0, len(packages))
	for _, pkg := range packages {
		deps = append(deps, pkg.MachineName)
	}
	info := types.PackageInfo{
		Name:         profile.Name,
		Type:         string(types.PackageKindProfile),
		Description:  profile.Description,
		Version:      profile.Version,
		Bundle:       bundleReference(bundle),
		Dependencies: types.MergeSet(profile.Dependencies, deps...),
	}
	infoFile, err := renderInfo(profile.MachineName, info)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("package", profile.MachineName).Msg("profile rendered")
	return []types.File{infoFile}, nil
}

func renderInfo(machineName string, info types.PackageInfo) (types.File, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(info); err != nil {
		return types.File{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to encode info file for %s", machineName)).
			WithCause(err)
	}
	if err := encoder.Close(); err != nil {
		return types.File{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to encode info file for %s", machineName)).
			WithCause(err)
	}
	return types.File{
		Filename: path.Join(machineName, machineName+infoFileSuffix),
		Content:  buf.Bytes(),
	}, nil
}

func bundleReference(bundle types.Bundle) string {
	if bundle.IsDefault || bundle.MachineName == types.DefaultBundleMachineName {
		return ""
	}
	return bundle.MachineName
}

func stripKeys(doc types.Document, keys []string) types.Document {
	if len(keys) == 0 {
		return doc
	}
	out := make(types.Document, len(doc))
	for key, value := range doc {
		out[key] = value
	}
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

var _ ports.FileRendererPort = YAMLRendererAdapter{}
