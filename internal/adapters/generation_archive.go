package adapters

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

const (
	ArchiveMethodID = "archive"

	archiveSuccessTemplate = "{type} {package} written to archive."
	archiveFailureTemplate = "{type} {package} not written to archive. Error: {error}."
)

// ArchiveWriter appends files to an open archive.
type ArchiveWriter interface {
	Add(file types.File) error
	Close() error
}

// ArchiveOpener creates the archive at path, truncating any existing file.
type ArchiveOpener func(path string) (ArchiveWriter, error)

// ArchiveGenerationMethod writes every package into a single
// <Dir>/<ProfileName>.tar.gz.  A failing file aborts the rest of its
// package only.
type ArchiveGenerationMethod struct {
	Dir         string
	ProfileName string
	Open        ArchiveOpener
}

func NewArchiveGenerationMethod(dir string, profileName string) ArchiveGenerationMethod {
	return ArchiveGenerationMethod{Dir: dir, ProfileName: profileName, Open: OpenTarGz}
}

func (m ArchiveGenerationMethod) ID() string   { return ArchiveMethodID }
func (m ArchiveGenerationMethod) Name() string { return "Download Archive" }
func (m ArchiveGenerationMethod) Weight() int  { return -2 }

func (m ArchiveGenerationMethod) Description() string {
	return "Generate packages and an optional profile as a single compressed archive."
}

func (m ArchiveGenerationMethod) Location() string {
	return filepath.Join(m.Dir, m.ProfileName+".tar.gz")
}

func (m ArchiveGenerationMethod) Generate(ctx context.Context, req types.GenerationRequest) ([]types.GenerationResult, error) {
	if m.Dir == "" || m.ProfileName == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("archive directory and profile name are required")
	}
	location := m.Location()
	if err := os.Remove(location); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove stale archive").
			WithCause(err)
	}
	if err := ensureDir(m.Dir); err != nil {
		return nil, err
	}
	open := m.Open
	if open == nil {
		open = OpenTarGz
	}
	writer, err := open(location)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create archive").
			WithCause(err)
	}

	logger := log.Ctx(ctx)
	var results []types.GenerationResult
	packages := requestPackages(req)
	for _, pkg := range packages {
		if err := ctx.Err(); err != nil {
			_ = writer.Close()
			return results, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("archive generation interrupted").
				WithCause(err)
		}
		result := archivePackage(writer, pkg)
		if !result.Success {
			logger.Warn().Str("package", pkg.MachineName).Str("error", result.Variables["error"]).Msg("package not written to archive")
		}
		results = append(results, result)
	}
	if err := writer.Close(); err != nil {
		return results, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to finalize archive").
			WithCause(err)
	}
	logger.Debug().Str("method", ArchiveMethodID).Str("path", location).Int("packages", len(packages)).Msg("archive generated")
	return results, nil
}

func archivePackage(writer ArchiveWriter, pkg types.Package) types.GenerationResult {
	for _, file := range pkg.Files {
		if err := validateRelativeName(file.Filename); err != nil {
			return failureResult(pkg, archiveFailureTemplate,
				fmt.Errorf("Failed to archive file %s", path.Base(filepath.ToSlash(file.Filename))), nil)
		}
		if err := writer.Add(file); err != nil {
			return failureResult(pkg, archiveFailureTemplate,
				fmt.Errorf("Failed to archive file %s: %w", path.Base(file.Filename), err), nil)
		}
	}
	return successResult(pkg, archiveSuccessTemplate, nil)
}

// requestPackages lists the profile first, followed by the packages in
// request order.
func requestPackages(req types.GenerationRequest) []types.Package {
	packages := make([]types.Package, 0, len(req.Packages)+1)
	if req.Profile != nil {
		profile := *req.Profile
		profile.Kind = types.PackageKindProfile
		packages = append(packages, profile)
	}
	return append(packages, req.Packages...)
}

func validateRelativeName(name string) error {
	clean := path.Clean(filepath.ToSlash(name))
	if strings.TrimSpace(name) == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("invalid relative file name %q", name)
	}
	return nil
}

func resultVariables(pkg types.Package, extra map[string]string) map[string]string {
	label := pkg.Name
	if label == "" {
		label = pkg.MachineName
	}
	vars := map[string]string{
		"type":    types.KindLabel(pkg.Kind),
		"package": label,
	}
	for key, value := range extra {
		vars[key] = value
	}
	return vars
}

func successResult(pkg types.Package, template string, extra map[string]string) types.GenerationResult {
	return types.GenerationResult{
		PackageName:     pkg.MachineName,
		Kind:            pkg.Kind,
		Success:         true,
		MessageTemplate: template,
		Variables:       resultVariables(pkg, extra),
	}
}

func failureResult(pkg types.Package, template string, err error, extra map[string]string) types.GenerationResult {
	vars := resultVariables(pkg, extra)
	vars["error"] = err.Error()
	return types.GenerationResult{
		PackageName:     pkg.MachineName,
		Kind:            pkg.Kind,
		MessageTemplate: template,
		Variables:       vars,
	}
}

type tarGzWriter struct {
	file    *os.File
	gzip    *gzip.Writer
	tar     *tar.Writer
	modTime time.Time
}

// OpenTarGz creates a gzip compressed tar archive at path.
func OpenTarGz(path string) (ArchiveWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	gw := gzip.NewWriter(file)
	return &tarGzWriter{file: file, gzip: gw, tar: tar.NewWriter(gw), modTime: time.Now()}, nil
}

func (w *tarGzWriter) Add(file types.File) error {
	hdr := &tar.Header{
		Name:     filepath.ToSlash(file.Filename),
		Mode:     0644,
		Size:     int64(len(file.Content)),
		ModTime:  w.modTime,
		Typeflag: tar.TypeReg,
	}
	if err := w.tar.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := w.tar.Write(file.Content)
	return err
}

func (w *tarGzWriter) Close() error {
	return errors.Join(w.tar.Close(), w.gzip.Close(), w.file.Close())
}

var _ ports.GenerationMethodPort = ArchiveGenerationMethod{}
