package app

import "config-packager/internal/types"

type StatusRequest struct {
	Bundle string
	Keys   []string
}

type MethodInfo struct {
	ID          string
	Name        string
	Description string
	Weight      int
}

type StatusResult struct {
	Bundle            types.Bundle
	ExportFolder      string
	ActiveDir         string
	AssignmentMethods []string
	GenerationMethods []MethodInfo
	// Items holds the requested configuration items.  With more than one
	// key only the collection names are listed in Names.
	Items []types.ConfigItem
	Names []string
}

type ListPackagesRequest struct {
	Bundle  string
	Package string
}

type PackageSummary struct {
	MachineName string
	Name        string
	Version     string
	Status      types.PackageStatus
	Items       int
}

type ListPackagesResult struct {
	Bundle   types.Bundle
	Packages []PackageSummary
	// Items is set when a single package was requested.
	Items []types.ConfigItem
}

type ExportRequest struct {
	Bundle     string
	Packages   []string
	AddProfile bool
	Method     string
}

type ExportResult struct {
	Method         string
	Location       string
	Results        []types.GenerationResult
	Skipped        []string
	EmptySelection bool
}

// Failed counts the unsuccessful results.
func (r ExportResult) Failed() int {
	count := 0
	for _, result := range r.Results {
		if !result.Success {
			count++
		}
	}
	return count
}

type DiffRequest struct {
	Bundle  string
	Package string
	Types   []string
	Context int
	// SideBySide pairs removed and added lines into changed rows.
	SideBySide bool
}

type DiffResult struct {
	Header  string
	Reports []types.OverrideReport
}

func (r DiffResult) Empty() bool {
	for _, report := range r.Reports {
		if !report.Empty() {
			return false
		}
	}
	return true
}

type ImportRequest struct {
	Bundle  string
	Targets []string
	Force   bool
}

type ImportResult struct {
	Report  types.RevertReport
	Skipped []string
}

type ImportAllRequest struct {
	Bundle string
	Force  bool
}

type AddRequest struct {
	Bundle   string
	Package  string
	Patterns []string
}

type AddResult struct {
	Package        string
	Added          []string
	Skipped        []string
	Export         ExportResult
	EmptySelection bool
}

type ComponentsRequest struct {
	Bundle      string
	Patterns    []string
	Exported    bool
	NotExported bool
}

type Component struct {
	Name     string
	Type     string
	Label    string
	Package  string
	Exported bool
}

type ComponentsResult struct {
	Components []Component
}
