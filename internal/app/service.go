package app

import (
	"config-packager/internal/adapters"
	"config-packager/internal/ports"
	"config-packager/internal/types"
)

// MethodFactory builds the generation methods available for one export.
// profileName keys the archive artifact.
type MethodFactory func(settings types.Settings, profileName string) []ports.GenerationMethodPort

type Service struct {
	Settings  types.Settings
	Active    ports.StoragePort
	Extension ports.ExtensionStoragePort
	Bundles   ports.BundleSourcePort
	Renderer  ports.FileRendererPort
	Methods   MethodFactory
}

func NewService(settings types.Settings) Service {
	active := adapters.NewFileStorageAdapter(settings.ActiveDir)
	return Service{
		Settings:  settings,
		Active:    active,
		Extension: adapters.NewExtensionStorageAdapter(settings.ExportFolder),
		Bundles:   adapters.NewBundleFileAdapter(settings.BundleFile),
		Renderer:  adapters.NewYAMLRendererAdapter(active, settings.Diff.IgnoreKeys),
		Methods:   DefaultGenerationMethods,
	}
}

func DefaultGenerationMethods(settings types.Settings, profileName string) []ports.GenerationMethodPort {
	write := adapters.NewWriteGenerationMethod(settings.ExportFolder, settings.Workers)
	return []ports.GenerationMethodPort{
		adapters.NewArchiveGenerationMethod(settings.ArchiveDir, profileName),
		write,
		adapters.NewGitGenerationMethod(write, ""),
	}
}
