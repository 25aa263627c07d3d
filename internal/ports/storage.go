package ports

import "config-packager/internal/types"

// StoragePort reads and writes configuration documents by item name.
// Read reports false when the storage has no record of the item.
type StoragePort interface {
	Read(name string) (types.Document, bool, error)
	Write(name string, doc types.Document) error
	List() ([]string, error)
}

// ExtensionStoragePort is the packaged storage: the configuration shipped
// inside exported packages.
type ExtensionStoragePort interface {
	StoragePort

	// Provider returns the machine name of the package that ships the item.
	Provider(name string) (string, bool, error)

	// Packages lists the packages found in storage in a stable order.
	Packages() ([]types.PackageInfo, error)
}
