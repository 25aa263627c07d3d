package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

const (
	WriteMethodID = "write"

	writeSuccessTemplate = "{type} {package} written to {path}."
	writeFailureTemplate = "{type} {package} not written to {path}. Error: {error}."

	defaultWriteWorkers = 4
)

// WriteGenerationMethod writes package files directly below Root, which is
// normally the export folder read by ExtensionStorageAdapter.
type WriteGenerationMethod struct {
	Root    string
	Workers int
}

func NewWriteGenerationMethod(root string, workers int) WriteGenerationMethod {
	return WriteGenerationMethod{Root: root, Workers: workers}
}

func (m WriteGenerationMethod) ID() string       { return WriteMethodID }
func (m WriteGenerationMethod) Name() string     { return "Write" }
func (m WriteGenerationMethod) Weight() int      { return 0 }
func (m WriteGenerationMethod) Location() string { return m.Root }

func (m WriteGenerationMethod) Description() string {
	return "Write packages and an optional profile to the export folder."
}

// Generate writes packages concurrently.  Results keep request order and
// a failing package never stops the others.
func (m WriteGenerationMethod) Generate(ctx context.Context, req types.GenerationRequest) ([]types.GenerationResult, error) {
	if m.Root == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("export folder is empty")
	}
	if err := ensureDir(m.Root); err != nil {
		return nil, err
	}
	workers := m.Workers
	if workers <= 0 {
		workers = defaultWriteWorkers
	}
	packages := requestPackages(req)
	results := make([]types.GenerationResult, len(packages))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, pkg := range packages {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				results[i] = failureResult(pkg, writeFailureTemplate, err, m.pathVars(pkg))
				return nil
			}
			results[i] = m.writePackage(groupCtx, pkg)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return results, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("write generation interrupted").
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Str("method", WriteMethodID).Str("path", m.Root).Int("packages", len(packages)).Msg("packages written")
	return results, nil
}

func (m WriteGenerationMethod) writePackage(ctx context.Context, pkg types.Package) types.GenerationResult {
	vars := m.pathVars(pkg)
	if validateRelativeName(pkg.MachineName) != nil || strings.ContainsAny(pkg.MachineName, `/\`) {
		return failureResult(pkg, writeFailureTemplate, fmt.Errorf("invalid package machine name %q", pkg.MachineName), vars)
	}
	pkgDir := filepath.Join(m.Root, pkg.MachineName)
	m.warnOnDowngrade(ctx, pkg, pkgDir)
	if err := removeInstalledConfig(pkgDir); err != nil {
		return failureResult(pkg, writeFailureTemplate, err, vars)
	}
	for _, file := range pkg.Files {
		if err := validateRelativeName(file.Filename); err != nil {
			return failureResult(pkg, writeFailureTemplate, err, vars)
		}
		target := filepath.Join(m.Root, filepath.FromSlash(file.Filename))
		if err := ensureDir(filepath.Dir(target)); err != nil {
			return failureResult(pkg, writeFailureTemplate, err, vars)
		}
		if err := writeFileAtomic(target, file.Content); err != nil {
			return failureResult(pkg, writeFailureTemplate, err, vars)
		}
	}
	return successResult(pkg, writeSuccessTemplate, vars)
}

func (m WriteGenerationMethod) pathVars(pkg types.Package) map[string]string {
	return map[string]string{"path": filepath.Join(m.Root, pkg.MachineName)}
}

// warnOnDowngrade logs when the new version orders before the version of
// the package already on disk.
func (m WriteGenerationMethod) warnOnDowngrade(ctx context.Context, pkg types.Package, pkgDir string) {
	if pkg.Version == "" {
		return
	}
	existing, err := readPackageInfo(filepath.Join(pkgDir, pkg.MachineName+infoFileSuffix))
	if err != nil || existing.Version == "" {
		return
	}
	if isDowngrade(existing.Version, pkg.Version) {
		log.Ctx(ctx).Warn().
			Str("package", pkg.MachineName).
			Str("current", existing.Version).
			Str("next", pkg.Version).
			Msg("package version moves backwards")
	}
}

func isDowngrade(current string, next string) bool {
	a, err := debversion.NewVersion(current)
	if err != nil {
		return false
	}
	b, err := debversion.NewVersion(next)
	if err != nil {
		return false
	}
	return b.LessThan(a)
}

// removeInstalledConfig deletes the item files of a previous export so
// items that left the package do not linger.
func removeInstalledConfig(pkgDir string) error {
	installDir := filepath.Join(pkgDir, "config", "install")
	entries, err := os.ReadDir(installDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), configFileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(installDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.GenerationMethodPort = WriteGenerationMethod{}
