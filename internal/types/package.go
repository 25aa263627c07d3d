package types

import "sort"

type PackageStatus string

const (
	StatusUnknown    PackageStatus = "unknown"
	StatusDefault    PackageStatus = "default"
	StatusOverridden PackageStatus = "overridden"
	StatusNoExport   PackageStatus = "no_export"
)

type PackageKind string

const (
	PackageKindPackage PackageKind = "package"
	PackageKindProfile PackageKind = "profile"
)

// UnpackagedMachineName names the synthetic package that lists items not
// assigned anywhere.  It is never namespaced and never exported.
const UnpackagedMachineName = "unpackaged"

type File struct {
	Filename string
	Content  []byte
}

type Package struct {
	MachineName  string
	Name         string
	Description  string
	Version      string
	Kind         PackageKind
	Status       PackageStatus
	Excluded     bool
	Config       []string
	Dependencies []string
	Files        []File
}

func (p Package) IsUnpackaged() bool {
	return p.MachineName == UnpackagedMachineName
}

// Exportable reports whether export generation should include the package.
func (p Package) Exportable() bool {
	return !p.Excluded && !p.IsUnpackaged() && p.Status != StatusNoExport
}

func (p Package) HasConfig(name string) bool {
	for _, item := range p.Config {
		if item == name {
			return true
		}
	}
	return false
}

// PackageInfo is the metadata of a package found in extension storage.
type PackageInfo struct {
	MachineName  string   `yaml:"-"`
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Description  string   `yaml:"description,omitempty"`
	Version      string   `yaml:"version,omitempty"`
	Bundle       string   `yaml:"package,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// PackageSet keeps packages keyed by machine name in insertion order.
type PackageSet struct {
	order    []string
	packages map[string]*Package
	owner    map[string]string
}

func NewPackageSet() *PackageSet {
	return &PackageSet{
		packages: map[string]*Package{},
		owner:    map[string]string{},
	}
}

// Put adds pkg or replaces the package with the same machine name while
// keeping its original position.
func (s *PackageSet) Put(pkg Package) {
	if _, ok := s.packages[pkg.MachineName]; !ok {
		s.order = append(s.order, pkg.MachineName)
	}
	stored := pkg
	s.packages[pkg.MachineName] = &stored
	for _, item := range stored.Config {
		s.owner[item] = stored.MachineName
	}
}

func (s *PackageSet) Get(machineName string) (Package, bool) {
	pkg, ok := s.packages[machineName]
	if !ok {
		return Package{}, false
	}
	return *pkg, true
}

func (s *PackageSet) Has(machineName string) bool {
	_, ok := s.packages[machineName]
	return ok
}

func (s *PackageSet) Len() int {
	return len(s.order)
}

func (s *PackageSet) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *PackageSet) Packages() []Package {
	out := make([]Package, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.packages[name])
	}
	return out
}

// Owner returns the package an item is assigned to.
func (s *PackageSet) Owner(item string) (string, bool) {
	owner, ok := s.owner[item]
	return owner, ok
}

// Assign appends item to the package config, removing it from any package
// that held it before.  Unknown packages are ignored and reported false.
func (s *PackageSet) Assign(machineName string, item string) bool {
	target, ok := s.packages[machineName]
	if !ok {
		return false
	}
	if previous, found := s.owner[item]; found {
		if previous == machineName {
			return true
		}
		if pkg, exists := s.packages[previous]; exists {
			pkg.Config = removeString(pkg.Config, item)
		}
	}
	target.Config = append(target.Config, item)
	s.owner[item] = machineName
	return true
}

func (s *PackageSet) SetStatus(machineName string, status PackageStatus) {
	if pkg, ok := s.packages[machineName]; ok {
		pkg.Status = status
	}
}

func (s *PackageSet) AddDependencies(machineName string, deps ...string) {
	pkg, ok := s.packages[machineName]
	if !ok {
		return
	}
	pkg.Dependencies = MergeSet(pkg.Dependencies, deps...)
	pkg.Dependencies = removeString(pkg.Dependencies, machineName)
}

// MergeSet returns the sorted union of base and extra without empty values.
func MergeSet(base []string, extra ...string) []string {
	set := map[string]struct{}{}
	for _, value := range base {
		if value != "" {
			set[value] = struct{}{}
		}
	}
	for _, value := range extra {
		if value != "" {
			set[value] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for value := range set {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func removeString(values []string, target string) []string {
	var out []string
	for _, value := range values {
		if value != target {
			out = append(out, value)
		}
	}
	return out
}
