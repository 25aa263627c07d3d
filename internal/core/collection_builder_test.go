package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"config-packager/internal/types"
)

func TestCollectionBuilderDerivesItemMetadata(t *testing.T) {
	active := newMemoryStorage(map[string]types.Document{
		"system.site": {"name": "Example", "page": map[string]any{"front": "/node"}},
		"node.type.article": {
			"name": "Article",
			"dependencies": map[string]any{
				"module": []any{"node", "menu_ui", "node"},
			},
		},
		"field.storage.node.body": {"label": "Body storage"},
		"views.view.frontpage":    {},
	})
	extension := newMemoryStorage(nil)
	extension.providers["node.type.article"] = "content"

	builder := NewCollectionBuilder(active, extension, []string{"node.type", "field.storage", "field", "views.view"})
	collection, err := builder.Build(t.Context())
	require.NoError(t, err)

	want := []types.ConfigItem{
		{Name: "field.storage.node.body", Type: "field.storage", Label: "Body storage"},
		{Name: "node.type.article", Type: "node.type", Label: "Article", Package: "content", Dependencies: []string{"menu_ui", "node"}},
		{Name: "system.site", Type: types.SimpleConfigType, Label: "Example"},
		{Name: "views.view.frontpage", Type: "views.view", Label: "views.view.frontpage"},
	}
	if diff := cmp.Diff(want, collection.Items()); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"field.storage", "node.type", types.SimpleConfigType, "views.view"}, collection.Types())
}

func TestCollectionBuilderKeepsUnreadableItems(t *testing.T) {
	active := newMemoryStorage(map[string]types.Document{"system.site": {"name": "x"}})
	active.readErrs["system.site"] = errStorage

	collection, err := NewCollectionBuilder(active, nil, nil).Build(t.Context())
	require.NoError(t, err)
	item, ok := collection.Get("system.site")
	require.True(t, ok)
	assert.Equal(t, "system.site", item.Label)
}

func TestCollectionBuilderListFailure(t *testing.T) {
	active := newMemoryStorage(nil)
	active.listErr = errStorage

	_, err := NewCollectionBuilder(active, nil, nil).Build(t.Context())
	require.Error(t, err)
}
