package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"config-packager/internal/types"
)

func TestWriteGenerationMethodWritesPackages(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "content", "config", "install", "stale.item.yml"), "old: true\n")
	method := NewWriteGenerationMethod(root, 2)

	req := types.GenerationRequest{Packages: []types.Package{
		{
			MachineName: "content",
			Name:        "Content",
			Files: []types.File{
				{Filename: "content/content.info.yml", Content: []byte("name: Content\n")},
				{Filename: "content/config/install/node.type.article.yml", Content: []byte("type: article\n")},
			},
		},
		{
			MachineName: "escape",
			Name:        "Escape",
			Files:       []types.File{{Filename: "../escape.yml", Content: []byte("x: 1\n")}},
		},
		{
			MachineName: "roles",
			Name:        "Roles",
			Files:       []types.File{{Filename: "roles/roles.info.yml", Content: []byte("name: Roles\n")}},
		},
	}}

	results, err := method.Generate(t.Context(), req)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var names []string
	for _, result := range results {
		names = append(names, result.PackageName)
	}
	assert.Equal(t, []string{"content", "escape", "roles"}, names, "results keep request order")
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Equal(t, "Package Content written to "+filepath.Join(root, "content")+".", results[0].Message())

	_, err = os.Stat(filepath.Join(root, "content", "config", "install", "stale.item.yml"))
	assert.True(t, os.IsNotExist(err), "stale item files are removed")
	data, err := os.ReadFile(filepath.Join(root, "content", "config", "install", "node.type.article.yml"))
	require.NoError(t, err)
	assert.Equal(t, "type: article\n", string(data))
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.yml"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteGenerationMethodWarnsOnDowngrade(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "content", "content.info.yml"), "name: Content\nversion: 2.0.0\n")
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(t.Context())

	method := NewWriteGenerationMethod(root, 1)
	results, err := method.Generate(ctx, types.GenerationRequest{Packages: []types.Package{{
		MachineName: "content",
		Version:     "1.5.0",
		Files:       []types.File{{Filename: "content/content.info.yml", Content: []byte("name: Content\nversion: 1.5.0\n")}},
	}}})
	require.NoError(t, err)
	require.True(t, results[0].Success)
	assert.Contains(t, buf.String(), "package version moves backwards")
}

func TestIsDowngrade(t *testing.T) {
	assert.True(t, isDowngrade("2.0.0", "1.9.9"))
	assert.True(t, isDowngrade("1.0.0", "1.0.0~rc1"))
	assert.False(t, isDowngrade("1.0.0", "1.0.1"))
	assert.False(t, isDowngrade("1.0.0", "1.0.0"))
	assert.False(t, isDowngrade("1.0.0", "not-a-version!!!"))
}
