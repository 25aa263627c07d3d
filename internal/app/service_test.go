package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"config-packager/internal/adapters"
	"config-packager/internal/ports"
	"config-packager/internal/types"
)

type siteFixture struct {
	root     string
	settings types.Settings
	service  Service
}

func newSiteFixture(t *testing.T) siteFixture {
	t.Helper()
	root := t.TempDir()
	settings := types.DefaultSettings()
	settings.ActiveDir = filepath.Join(root, "active")
	settings.ExportFolder = filepath.Join(root, "packages")
	settings.BundleFile = filepath.Join(root, "bundles.yaml")
	settings.ArchiveDir = filepath.Join(root, "archives")

	writeFile(t, filepath.Join(settings.ActiveDir, "system.site.yml"), "name: Example\npage:\n  front: /node\n")
	writeFile(t, filepath.Join(settings.ActiveDir, "node.type.article.yml"), "name: Article\ntype: article\ndependencies:\n  module:\n    - node\n")
	writeFile(t, filepath.Join(settings.ActiveDir, "node.type.page.yml"), "name: Page\ntype: page\n")
	writeFile(t, filepath.Join(settings.ActiveDir, "user.role.editor.yml"), "label: Editor\nweight: 2\n")

	pkgDir := filepath.Join(settings.ExportFolder, "content")
	writeFile(t, filepath.Join(pkgDir, "content.info.yml"), "name: Content\ntype: package\nversion: 1.0.0\n")
	writeFile(t, filepath.Join(pkgDir, "config", "install", "node.type.article.yml"), "name: Article\ntype: article\ndependencies:\n  module:\n    - node\n")
	writeFile(t, filepath.Join(pkgDir, "config", "install", "node.type.page.yml"), "name: Basic page\ntype: page\n")

	return siteFixture{root: root, settings: settings, service: NewService(settings)}
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readActive(t *testing.T, svc Service, name string) types.Document {
	t.Helper()
	doc, found, err := svc.Active.Read(name)
	require.NoError(t, err)
	require.True(t, found)
	return doc
}

func TestStatus(t *testing.T) {
	fx := newSiteFixture(t)

	result, err := fx.service.Status(t.Context(), StatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultBundleMachineName, result.Bundle.MachineName)
	assert.Equal(t, fx.settings.ExportFolder, result.ExportFolder)
	ids := make([]string, 0, len(result.GenerationMethods))
	for _, method := range result.GenerationMethods {
		ids = append(ids, method.ID)
	}
	if diff := cmp.Diff([]string{"archive", "write", "git"}, ids); diff != "" {
		t.Fatalf("generation methods mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Items)
	assert.Empty(t, result.Names)

	single, err := fx.service.Status(t.Context(), StatusRequest{Keys: []string{"user.role.editor"}})
	require.NoError(t, err)
	require.Len(t, single.Items, 1)
	assert.Equal(t, "Editor", single.Items[0].Label)
	assert.Equal(t, "user.role", single.Items[0].Type)

	several, err := fx.service.Status(t.Context(), StatusRequest{Keys: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"node.type.article", "node.type.page", "system.site", "user.role.editor"}, several.Names)

	_, err = fx.service.Status(t.Context(), StatusRequest{Keys: []string{"missing.item"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestStatusUnknownBundle(t *testing.T) {
	fx := newSiteFixture(t)

	_, err := fx.service.Status(t.Context(), StatusRequest{Bundle: "nope"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestListPackages(t *testing.T) {
	fx := newSiteFixture(t)

	result, err := fx.service.ListPackages(t.Context(), ListPackagesRequest{})
	require.NoError(t, err)
	want := []PackageSummary{
		{MachineName: "content", Name: "Content", Version: "1.0.0", Status: types.StatusOverridden, Items: 2},
		{MachineName: "unpackaged", Name: "Unpackaged", Status: types.StatusNoExport, Items: 2},
	}
	if diff := cmp.Diff(want, result.Packages); diff != "" {
		t.Fatalf("packages mismatch (-want +got):\n%s", diff)
	}

	single, err := fx.service.ListPackages(t.Context(), ListPackagesRequest{Package: "content"})
	require.NoError(t, err)
	require.Len(t, single.Items, 2)
	assert.Equal(t, "node.type.article", single.Items[0].Name)

	unpackaged, err := fx.service.ListPackages(t.Context(), ListPackagesRequest{Package: "unpackaged"})
	require.NoError(t, err)
	require.Len(t, unpackaged.Items, 2)
	assert.Equal(t, "system.site", unpackaged.Items[0].Name)
}

func TestDiff(t *testing.T) {
	fx := newSiteFixture(t)

	result, err := fx.service.Diff(t.Context(), DiffRequest{Context: -1})
	require.NoError(t, err)
	assert.Equal(t, "All differences", result.Header)
	assert.False(t, result.Empty())
	require.Len(t, result.Reports, 1)
	assert.Equal(t, []string{"node.type.page"}, result.Reports[0].Names())

	var changed []string
	for _, row := range result.Reports[0].Overrides[0].Rows {
		if row.Kind != types.DiffContext {
			changed = append(changed, row.Marker()+" "+row.Text())
		}
	}
	assert.Equal(t, []string{"- name: Basic page", "+ name: Page"}, changed)

	paired, err := fx.service.Diff(t.Context(), DiffRequest{Context: 0, SideBySide: true})
	require.NoError(t, err)
	require.Len(t, paired.Reports, 1)
	rows := paired.Reports[0].Overrides[0].Rows
	require.Len(t, rows, 1)
	assert.Equal(t, types.DiffChanged, rows[0].Kind)
	assert.Equal(t, "name: Basic page => name: Page", rows[0].Text())

	scoped, err := fx.service.Diff(t.Context(), DiffRequest{Package: "content", Types: []string{"user.role"}, Context: -1})
	require.NoError(t, err)
	assert.Equal(t, "Differences in content", scoped.Header)
	assert.True(t, scoped.Empty())
}

func TestImport(t *testing.T) {
	tests := []struct {
		name        string
		req         ImportRequest
		wantNames   []string
		wantSkipped []string
	}{
		{
			name:        "only overridden items without force",
			req:         ImportRequest{Targets: []string{"content"}},
			wantNames:   []string{"node.type.page"},
			wantSkipped: []string{"node.type.article"},
		},
		{
			name:      "force imports every item",
			req:       ImportRequest{Targets: []string{"content"}, Force: true},
			wantNames: []string{"node.type.article", "node.type.page"},
		},
		{
			name:      "single item reference",
			req:       ImportRequest{Targets: []string{"content:node.type.page"}},
			wantNames: []string{"node.type.page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSiteFixture(t)

			result, err := fx.service.Import(t.Context(), tt.req)
			require.NoError(t, err)
			var names []string
			for _, item := range result.Report.Results {
				assert.True(t, item.Success, item.Message)
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
			assert.Equal(t, "Basic page", readActive(t, fx.service, "node.type.page")["name"])
		})
	}
}

func TestImportRejectsUnknownTargets(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "unknown package", target: "nope"},
		{name: "item outside package", target: "content:user.role.editor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSiteFixture(t)

			_, err := fx.service.Import(t.Context(), ImportRequest{Targets: []string{"content:node.type.page", tt.target}})
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
			assert.Equal(t, "Page", readActive(t, fx.service, "node.type.page")["name"])
		})
	}
}

func TestImportAllAndCandidates(t *testing.T) {
	fx := newSiteFixture(t)

	candidates, err := fx.service.ImportCandidates(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"content:node.type.page"}, candidates)

	result, err := fx.service.ImportAll(t.Context(), ImportAllRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Report.Failed())
	assert.Len(t, result.Report.Results, 1)

	after, err := fx.service.ImportCandidates(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, after)

	empty, err := fx.service.ImportAll(t.Context(), ImportAllRequest{})
	require.NoError(t, err)
	assert.True(t, empty.Report.Empty)
}

func TestExportArchive(t *testing.T) {
	fx := newSiteFixture(t)

	result, err := fx.service.Export(t.Context(), ExportRequest{AddProfile: true})
	require.NoError(t, err)
	assert.Equal(t, adapters.ArchiveMethodID, result.Method)
	assert.Equal(t, filepath.Join(fx.settings.ArchiveDir, "site_profile.tar.gz"), result.Location)
	require.Len(t, result.Results, 2)
	assert.Equal(t, types.PackageKindProfile, result.Results[0].Kind)
	assert.Equal(t, "Package Content written to archive.", result.Results[1].Message())
	assert.Zero(t, result.Failed())
	assert.FileExists(t, result.Location)
}

func TestExportWrite(t *testing.T) {
	fx := newSiteFixture(t)

	result, err := fx.service.Export(t.Context(), ExportRequest{Packages: []string{"content"}, Method: adapters.WriteMethodID})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].Success, result.Results[0].Message())

	listing, err := fx.service.ListPackages(t.Context(), ListPackagesRequest{})
	require.NoError(t, err)
	require.Len(t, listing.Packages, 2)
	assert.Equal(t, types.StatusDefault, listing.Packages[0].Status)

	diff, err := fx.service.Diff(t.Context(), DiffRequest{Context: -1})
	require.NoError(t, err)
	assert.True(t, diff.Empty())
}

func TestExportErrors(t *testing.T) {
	fx := newSiteFixture(t)

	_, err := fx.service.Export(t.Context(), ExportRequest{Packages: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, err = fx.service.Export(t.Context(), ExportRequest{Method: "ftp"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.NoFileExists(t, filepath.Join(fx.settings.ArchiveDir, "site_profile.tar.gz"))
}

type recordingMethod struct {
	requests *[]types.GenerationRequest
}

func (m recordingMethod) ID() string          { return "record" }
func (m recordingMethod) Name() string        { return "Record" }
func (m recordingMethod) Description() string { return "Records requests." }
func (m recordingMethod) Weight() int         { return 10 }
func (m recordingMethod) Location() string    { return "memory" }

func (m recordingMethod) Generate(_ context.Context, req types.GenerationRequest) ([]types.GenerationResult, error) {
	*m.requests = append(*m.requests, req)
	return nil, nil
}

func TestExportSkipsNoExportPackages(t *testing.T) {
	fx := newSiteFixture(t)
	writeFile(t, fx.settings.BundleFile, `api_version: v1
bundles:
  - machine_name: default
    name: Default
    is_default: true
    packages:
      - machine_name: site
        name: Site
        excluded: true
        matches:
          - system.*
`)
	var requests []types.GenerationRequest
	fx.service.Methods = func(types.Settings, string) []ports.GenerationMethodPort {
		return []ports.GenerationMethodPort{recordingMethod{requests: &requests}}
	}

	result, err := fx.service.Export(t.Context(), ExportRequest{Method: "record"})
	require.NoError(t, err)
	assert.Equal(t, []string{"site"}, result.Skipped)
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Packages, 1)
	assert.Equal(t, "content", requests[0].Packages[0].MachineName)
	assert.NotEmpty(t, requests[0].Packages[0].Files)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Package content was not generated.", result.Results[0].Message())

	only, err := fx.service.Export(t.Context(), ExportRequest{Packages: []string{"site"}, Method: "record"})
	require.NoError(t, err)
	assert.True(t, only.EmptySelection)
	assert.Len(t, requests, 1)
}

func TestAdd(t *testing.T) {
	fx := newSiteFixture(t)

	result, err := fx.service.Add(t.Context(), AddRequest{Package: "roles", Patterns: []string{"user.role.*", "node.type.page"}})
	require.NoError(t, err)
	assert.Equal(t, "roles", result.Package)
	assert.Equal(t, []string{"user.role.editor"}, result.Added)
	assert.Equal(t, []string{"node.type.page"}, result.Skipped)
	assert.Zero(t, result.Export.Failed())
	assert.FileExists(t, filepath.Join(fx.settings.ExportFolder, "roles", "config", "install", "user.role.editor.yml"))

	bundles, err := fx.service.Bundles.LoadBundles()
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	want := []types.PackageDefinition{{MachineName: "roles", Name: "roles", Matches: []string{"user.role.editor"}}}
	if diff := cmp.Diff(want, bundles[0].Packages); diff != "" {
		t.Fatalf("package definitions mismatch (-want +got):\n%s", diff)
	}

	again, err := fx.service.Add(t.Context(), AddRequest{Package: "roles", Patterns: []string{"views.view.*"}})
	require.NoError(t, err)
	assert.True(t, again.EmptySelection)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	fx := newSiteFixture(t)

	_, err := fx.service.Add(t.Context(), AddRequest{Package: "Bad Name", Patterns: []string{"*"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = fx.service.Add(t.Context(), AddRequest{Package: "roles", Patterns: []string{"a*b*"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.NoFileExists(t, fx.settings.BundleFile)
}

func TestComponents(t *testing.T) {
	tests := []struct {
		name string
		req  ComponentsRequest
		want []string
	}{
		{
			name: "all components",
			req:  ComponentsRequest{},
			want: []string{"node.type.article", "node.type.page", "system.site", "user.role.editor"},
		},
		{
			name: "exported only",
			req:  ComponentsRequest{Exported: true},
			want: []string{"node.type.article", "node.type.page"},
		},
		{
			name: "not exported only",
			req:  ComponentsRequest{NotExported: true},
			want: []string{"system.site", "user.role.editor"},
		},
		{
			name: "typed prefix pattern",
			req:  ComponentsRequest{Patterns: []string{"node.type:node.type.a*"}},
			want: []string{"node.type.article"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSiteFixture(t)

			result, err := fx.service.Components(t.Context(), tt.req)
			require.NoError(t, err)
			var names []string
			for _, component := range result.Components {
				names = append(names, component.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestComponentsRejectsInvalidPattern(t *testing.T) {
	fx := newSiteFixture(t)

	_, err := fx.service.Components(t.Context(), ComponentsRequest{Patterns: []string{"node.type:*.page"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
