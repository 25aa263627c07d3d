package types

// DefaultBundleMachineName is the bundle used when none is selected.  Its
// packages are not namespaced.
const DefaultBundleMachineName = "default"

// PackageDefinition declares a package inside a bundle file.  Matches
// holds assignment patterns ("name", "prefix*", "type:name", "*").
type PackageDefinition struct {
	MachineName  string   `yaml:"machine_name"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Version      string   `yaml:"version,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Matches      []string `yaml:"matches,omitempty"`
	Excluded     bool     `yaml:"excluded,omitempty"`
}

type ProfileDefinition struct {
	MachineName string `yaml:"machine_name" mapstructure:"machine_name"`
	Name        string `yaml:"name" mapstructure:"name"`
	Description string `yaml:"description,omitempty" mapstructure:"description"`
	Version     string `yaml:"version,omitempty" mapstructure:"version"`
}

type Bundle struct {
	MachineName string              `yaml:"machine_name"`
	Name        string              `yaml:"name"`
	IsDefault   bool                `yaml:"is_default,omitempty"`
	Profile     *ProfileDefinition  `yaml:"profile,omitempty"`
	Packages    []PackageDefinition `yaml:"packages,omitempty"`
	Exclude     []string            `yaml:"exclude,omitempty"`
}

// BundleFile is the top-level structure of bundles.yaml.
type BundleFile struct {
	APIVersion string   `yaml:"api_version"`
	Bundles    []Bundle `yaml:"bundles"`
}

func DefaultBundle() Bundle {
	return Bundle{
		MachineName: DefaultBundleMachineName,
		Name:        "Default",
		IsDefault:   true,
	}
}
