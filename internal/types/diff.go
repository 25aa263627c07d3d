package types

type DiffKind string

const (
	DiffContext DiffKind = "context"
	DiffAdded   DiffKind = "added"
	DiffRemoved DiffKind = "removed"
	DiffChanged DiffKind = "changed"
)

// DiffRow is one rendered line of a diff between the packaged value (left)
// and the active value (right).  Line numbers are 1-based and zero when the
// side has no text.
type DiffRow struct {
	Kind         DiffKind
	ActiveText   *string
	PackagedText *string
	ActiveLine   int
	PackagedLine int
}

func (r DiffRow) Marker() string {
	switch r.Kind {
	case DiffAdded:
		return "+"
	case DiffRemoved:
		return "-"
	case DiffChanged:
		return "~"
	default:
		return " "
	}
}

// Text returns the text the row contributes to a unified rendering.
func (r DiffRow) Text() string {
	switch r.Kind {
	case DiffRemoved:
		return deref(r.PackagedText)
	case DiffChanged:
		return deref(r.PackagedText) + " => " + deref(r.ActiveText)
	default:
		if r.ActiveText != nil {
			return *r.ActiveText
		}
		return deref(r.PackagedText)
	}
}

// Override records one item whose active value differs from the packaged one.
// Missing is set when the packaged storage has no record of the item; Rows
// is filled only by deep detection.
type Override struct {
	Name    string
	Missing bool
	Rows    []DiffRow
}

type OverrideReport struct {
	Package    string
	Overrides  []Override
	Unreadable []string
}

func (r OverrideReport) Names() []string {
	names := make([]string, 0, len(r.Overrides))
	for _, override := range r.Overrides {
		names = append(names, override.Name)
	}
	return names
}

func (r OverrideReport) Empty() bool {
	return len(r.Overrides) == 0
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
