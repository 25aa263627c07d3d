package adapters

import (
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"config-packager/internal/types"
)

func TestBundleFileAdapterLoadsFixture(t *testing.T) {
	bundles, err := NewBundleFileAdapter("../../fixtures/bundles.yaml").LoadBundles()
	require.NoError(t, err)
	require.Len(t, bundles, 2)

	acme := bundles[1]
	assert.Equal(t, "acme", acme.MachineName)
	require.NotNil(t, acme.Profile)
	assert.Equal(t, "acme_profile", acme.Profile.MachineName)
	require.Len(t, acme.Packages, 2)
	assert.Equal(t, []string{"node.type.*", "field.field:*"}, acme.Packages[0].Matches)
	assert.Equal(t, []string{"system.*"}, acme.Exclude)
}

func TestBundleFileAdapterMissingFileYieldsDefaultBundle(t *testing.T) {
	bundles, err := NewBundleFileAdapter(filepath.Join(t.TempDir(), "bundles.yaml")).LoadBundles()
	require.NoError(t, err)
	if diff := cmp.Diff([]types.Bundle{types.DefaultBundle()}, bundles); diff != "" {
		t.Fatalf("unexpected bundles (-want +got):\n%s", diff)
	}
}

func TestBundleFileAdapterRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundles.yaml")
	writeTestFile(t, path, "api_version: v1\nbundles:\n  - machine_name: acme\n    colour: blue\n")

	_, err := NewBundleFileAdapter(path).LoadBundles()
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestBundleFileAdapterRejectsUnknownAPIVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundles.yaml")
	writeTestFile(t, path, "api_version: v9\nbundles: []\n")

	_, err := NewBundleFileAdapter(path).LoadBundles()
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestBundleFileAdapterSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "bundles.yaml")
	adapter := NewBundleFileAdapter(path)
	bundles := []types.Bundle{
		{
			MachineName: "acme",
			Name:        "Acme",
			Packages: []types.PackageDefinition{
				{MachineName: "content", Name: "Content", Matches: []string{"node.type.*"}},
			},
		},
	}

	require.NoError(t, adapter.SaveBundles(bundles))
	got, err := adapter.LoadBundles()
	require.NoError(t, err)
	if diff := cmp.Diff(bundles, got); diff != "" {
		t.Fatalf("unexpected bundles (-want +got):\n%s", diff)
	}
}
