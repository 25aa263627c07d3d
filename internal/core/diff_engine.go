package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"config-packager/internal/types"
)

// DiffEngine compares two configuration documents line by line after
// rendering both to canonical YAML.
type DiffEngine struct {
	IgnoreKeys []string
	Context    int
}

func NewDiffEngine(settings types.DiffSettings) DiffEngine {
	return DiffEngine{
		IgnoreKeys: append([]string(nil), settings.IgnoreKeys...),
		Context:    settings.Context,
	}
}

// Diff returns the rows turning packaged into active.  A negative Context
// keeps every unchanged line.
func (e DiffEngine) Diff(packaged types.Document, active types.Document) ([]types.DiffRow, error) {
	left, err := e.Canonical(packaged)
	if err != nil {
		return nil, err
	}
	right, err := e.Canonical(active)
	if err != nil {
		return nil, err
	}
	rows := lineDiff(left, right)
	if e.Context >= 0 {
		rows = trimContext(rows, e.Context)
	}
	return rows, nil
}

// Canonical renders doc as YAML with sorted keys and ignored top-level keys
// removed.  An empty document renders as the empty string.
func (e DiffEngine) Canonical(doc types.Document) (string, error) {
	normalized := e.normalize(doc)
	if len(normalized) == 0 {
		return "", nil
	}
	var node yaml.Node
	if err := node.Encode(normalized); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize configuration").
			WithCause(err)
	}
	plainKeys(&node)
	data, err := yaml.Marshal(&node)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize configuration").
			WithCause(err)
	}
	return string(data), nil
}

// plainKeys drops the quotes yaml.v3 adds to YAML 1.1 booleans such as y or
// on when they are mapping keys.  Keys that still resolve to a non-string
// scalar are quoted again by the encoder.
func plainKeys(node *yaml.Node) {
	if node.Kind == yaml.MappingNode {
		for i := 0; i < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind == yaml.ScalarNode && key.Tag == "!!str" && key.Style == yaml.DoubleQuotedStyle {
				key.Style = 0
			}
		}
	}
	for _, child := range node.Content {
		plainKeys(child)
	}
}

// Equal compares two documents under canonical serialization without
// computing a line diff.
func (e DiffEngine) Equal(a types.Document, b types.Document) (bool, error) {
	left, err := e.Canonical(a)
	if err != nil {
		return false, err
	}
	right, err := e.Canonical(b)
	if err != nil {
		return false, err
	}
	return left == right, nil
}

// Strip returns a copy of doc without the ignored top-level keys.
func (e DiffEngine) Strip(doc types.Document) types.Document {
	return e.normalize(doc)
}

func (e DiffEngine) normalize(doc types.Document) types.Document {
	if len(doc) == 0 {
		return types.Document{}
	}
	ignored := make(map[string]struct{}, len(e.IgnoreKeys))
	for _, key := range e.IgnoreKeys {
		ignored[key] = struct{}{}
	}
	out := make(types.Document, len(doc))
	for key, value := range doc {
		if _, skip := ignored[key]; skip {
			continue
		}
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case types.Document:
		return normalizeMap(typed)
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, item := range in {
		out[key] = normalizeValue(item)
	}
	return out
}

// Pair folds each run of removed rows directly followed by added rows into
// changed rows for two-column display.  Unmatched rows keep their kind.
func (e DiffEngine) Pair(rows []types.DiffRow) []types.DiffRow {
	out := make([]types.DiffRow, 0, len(rows))
	for i := 0; i < len(rows); {
		if rows[i].Kind != types.DiffRemoved {
			out = append(out, rows[i])
			i++
			continue
		}
		start := i
		for i < len(rows) && rows[i].Kind == types.DiffRemoved {
			i++
		}
		removed := rows[start:i]
		addStart := i
		for i < len(rows) && rows[i].Kind == types.DiffAdded {
			i++
		}
		added := rows[addStart:i]
		paired := min(len(removed), len(added))
		for j := 0; j < paired; j++ {
			out = append(out, types.DiffRow{
				Kind:         types.DiffChanged,
				PackagedText: removed[j].PackagedText,
				PackagedLine: removed[j].PackagedLine,
				ActiveText:   added[j].ActiveText,
				ActiveLine:   added[j].ActiveLine,
			})
		}
		out = append(out, removed[paired:]...)
		out = append(out, added[paired:]...)
	}
	return out
}

func lineDiff(packaged string, active string) []types.DiffRow {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	left, right, lines := dmp.DiffLinesToChars(packaged, active)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(left, right, false), lines)

	var rows []types.DiffRow
	var removed, added []string
	packagedLine, activeLine := 0, 0
	flush := func() {
		for _, text := range removed {
			packagedLine++
			rows = append(rows, types.DiffRow{Kind: types.DiffRemoved, PackagedText: stringPtr(text), PackagedLine: packagedLine})
		}
		for _, text := range added {
			activeLine++
			rows = append(rows, types.DiffRow{Kind: types.DiffAdded, ActiveText: stringPtr(text), ActiveLine: activeLine})
		}
		removed, added = nil, nil
	}
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			removed = append(removed, splitLines(diff.Text)...)
		case diffmatchpatch.DiffInsert:
			added = append(added, splitLines(diff.Text)...)
		case diffmatchpatch.DiffEqual:
			flush()
			for _, text := range splitLines(diff.Text) {
				packagedLine++
				activeLine++
				rows = append(rows, types.DiffRow{
					Kind:         types.DiffContext,
					PackagedText: stringPtr(text),
					ActiveText:   stringPtr(text),
					PackagedLine: packagedLine,
					ActiveLine:   activeLine,
				})
			}
		}
	}
	flush()
	return rows
}

func trimContext(rows []types.DiffRow, window int) []types.DiffRow {
	keep := make([]bool, len(rows))
	for i, row := range rows {
		if row.Kind == types.DiffContext {
			continue
		}
		for j := max(0, i-window); j <= min(len(rows)-1, i+window); j++ {
			keep[j] = true
		}
	}
	var out []types.DiffRow
	for i, row := range rows {
		if keep[i] {
			out = append(out, row)
		}
	}
	return out
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func stringPtr(value string) *string {
	return &value
}
