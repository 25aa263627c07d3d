package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"config-packager/internal/types"
)

type rowView struct {
	Marker string
	Text   string
}

func viewRows(rows []types.DiffRow) []rowView {
	out := make([]rowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowView{Marker: row.Marker(), Text: row.Text()})
	}
	return out
}

func TestDiffEngineEqualDocumentsYieldOnlyContext(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)
	doc := types.Document{
		"name":   "Article",
		"status": true,
		"dependencies": map[string]any{
			"module": []any{"node", "text"},
		},
	}

	rows, err := engine.Diff(doc, doc)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, types.DiffContext, row.Kind)
	}
}

func TestDiffEngineKeyOrderDoesNotMatter(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)
	packaged := types.Document{"a": 1, "b": map[string]any{"x": "1", "y": "2"}}
	active := types.Document{"b": map[any]any{"y": "2", "x": "1"}, "a": 1}

	rows, err := engine.Diff(packaged, active)
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, types.DiffContext, row.Kind)
	}
	equal, err := engine.Equal(packaged, active)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestDiffEngineChangedValue(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)

	rows, err := engine.Diff(types.Document{"y": 3}, types.Document{"y": 2})
	require.NoError(t, err)
	want := []rowView{
		{Marker: "-", Text: "y: 3"},
		{Marker: "+", Text: "y: 2"},
	}
	if diff := cmp.Diff(want, viewRows(rows)); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, rows[0].PackagedLine)
	assert.Equal(t, 1, rows[1].ActiveLine)
	assert.Nil(t, rows[0].ActiveText)
	assert.Nil(t, rows[1].PackagedText)
}

func TestDiffEngineCanonicalKeepsBooleanLikeKeysPlain(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)

	got, err := engine.Canonical(types.Document{
		"y":    3,
		"on":   map[string]any{"n": "yes"},
		"true": 1,
	})
	require.NoError(t, err)
	want := "on:\n    n: \"yes\"\n\"true\": 1\ny: 3\n"
	assert.Equal(t, want, got)
}

func TestDiffEngineAbsentDocumentIsEmpty(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)

	rows, err := engine.Diff(nil, types.Document{"a": 1, "b": 2})
	require.NoError(t, err)
	want := []rowView{
		{Marker: "+", Text: "a: 1"},
		{Marker: "+", Text: "b: 2"},
	}
	if diff := cmp.Diff(want, viewRows(rows)); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}

	rows, err = engine.Diff(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDiffEngineIgnoresConfiguredKeys(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)
	packaged := types.Document{"name": "site", "uuid": "1111"}
	active := types.Document{"name": "site", "uuid": "2222", "_core": map[string]any{"hash": "x"}}

	equal, err := engine.Equal(packaged, active)
	require.NoError(t, err)
	assert.True(t, equal)

	canonical, err := engine.Canonical(active)
	require.NoError(t, err)
	assert.Equal(t, "name: site\n", canonical)
}

func TestDiffEngineContextWindow(t *testing.T) {
	engine := NewDiffEngine(types.DiffSettings{Context: 1})
	packaged := types.Document{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
	active := types.Document{"a": 1, "b": 2, "c": 30, "d": 4, "e": 5}

	rows, err := engine.Diff(packaged, active)
	require.NoError(t, err)
	want := []rowView{
		{Marker: " ", Text: "b: 2"},
		{Marker: "-", Text: "c: 3"},
		{Marker: "+", Text: "c: 30"},
		{Marker: " ", Text: "d: 4"},
	}
	if diff := cmp.Diff(want, viewRows(rows)); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, rows[0].PackagedLine)
	assert.Equal(t, 4, rows[3].ActiveLine)

	rows, err = engine.Diff(packaged, packaged)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDiffEnginePairFoldsChangedRuns(t *testing.T) {
	engine := NewDiffEngine(types.DefaultSettings().Diff)
	packaged := types.Document{"a": 1, "b": 2}
	active := types.Document{"a": 10, "b": 20, "c": 30}

	rows, err := engine.Diff(packaged, active)
	require.NoError(t, err)
	paired := engine.Pair(rows)

	want := []rowView{
		{Marker: "~", Text: "a: 1 => a: 10"},
		{Marker: "~", Text: "b: 2 => b: 20"},
		{Marker: "+", Text: "c: 30"},
	}
	if diff := cmp.Diff(want, viewRows(paired)); diff != "" {
		t.Fatalf("unexpected paired rows (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, paired[1].PackagedLine)
	assert.Equal(t, 2, paired[1].ActiveLine)
}
