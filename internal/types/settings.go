package types

// DiffSettings controls drift rendering.  A negative Context renders the
// whole document.
type DiffSettings struct {
	Context    int      `mapstructure:"context"`
	IgnoreKeys []string `mapstructure:"ignore_keys"`
}

type Settings struct {
	ActiveDir        string
	ExportFolder     string
	BundleFile       string
	ArchiveDir       string
	GenerationMethod string
	Workers          int
	Types            []string
	Profile          ProfileDefinition
	Diff             DiffSettings
}

// DefaultConfigTypes are the type prefixes recognised when settings do not
// list any.
var DefaultConfigTypes = []string{
	"block.block",
	"core.base_field_override",
	"core.entity_form_display",
	"core.entity_view_display",
	"field.field",
	"field.storage",
	"filter.format",
	"image.style",
	"node.type",
	"taxonomy.vocabulary",
	"user.role",
	"views.view",
}

var DefaultIgnoreKeys = []string{"uuid", "_core"}

func DefaultSettings() Settings {
	return Settings{
		ActiveDir:        "config/active",
		ExportFolder:     "packages",
		BundleFile:       "bundles.yaml",
		GenerationMethod: "archive",
		Workers:          4,
		Types:            append([]string(nil), DefaultConfigTypes...),
		Profile: ProfileDefinition{
			MachineName: "site_profile",
			Name:        "Site profile",
		},
		Diff: DiffSettings{
			Context:    -1,
			IgnoreKeys: append([]string(nil), DefaultIgnoreKeys...),
		},
	}
}
