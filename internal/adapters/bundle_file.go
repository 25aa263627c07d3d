package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

const bundleFileAPIVersion = "v1"

// BundleFileAdapter loads bundle definitions from a YAML file.  Unknown
// keys are rejected.
type BundleFileAdapter struct {
	Path string
}

func NewBundleFileAdapter(path string) BundleFileAdapter {
	return BundleFileAdapter{Path: path}
}

func (a BundleFileAdapter) LoadBundles() ([]types.Bundle, error) {
	file, err := a.load()
	if err != nil {
		return nil, err
	}
	if len(file.Bundles) == 0 {
		return []types.Bundle{types.DefaultBundle()}, nil
	}
	return file.Bundles, nil
}

func (a BundleFileAdapter) SaveBundles(bundles []types.Bundle) error {
	if a.Path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle file path is empty")
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	file := types.BundleFile{APIVersion: bundleFileAPIVersion, Bundles: bundles}
	if err := encoder.Encode(file); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode bundle file").
			WithCause(err)
	}
	if err := encoder.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode bundle file").
			WithCause(err)
	}
	if err := ensureDir(filepath.Dir(a.Path)); err != nil {
		return err
	}
	return writeFileAtomic(a.Path, buf.Bytes())
}

func (a BundleFileAdapter) load() (types.BundleFile, error) {
	if a.Path == "" {
		return types.BundleFile{}, nil
	}
	data, err := os.ReadFile(a.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.BundleFile{}, nil
	}
	if err != nil {
		return types.BundleFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read bundle file").
			WithCause(err)
	}
	var file types.BundleFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return types.BundleFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse bundle yaml").
			WithCause(err)
	}
	if file.APIVersion != "" && file.APIVersion != bundleFileAPIVersion {
		return types.BundleFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported bundle file api_version: %s", file.APIVersion))
	}
	return file, nil
}

var _ ports.BundleSourcePort = BundleFileAdapter{}
