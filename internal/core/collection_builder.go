package core

import (
	"context"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

// CollectionBuilder reads the active storage listing into a ConfigCollection.
type CollectionBuilder struct {
	Active    ports.StoragePort
	Extension ports.ExtensionStoragePort
	Types     []string
}

func NewCollectionBuilder(active ports.StoragePort, extension ports.ExtensionStoragePort, configTypes []string) CollectionBuilder {
	known := append([]string(nil), configTypes...)
	// Longest prefix first so "field.storage" beats "field".
	sort.SliceStable(known, func(i, j int) bool {
		return len(known[i]) > len(known[j])
	})
	return CollectionBuilder{Active: active, Extension: extension, Types: known}
}

func (b CollectionBuilder) Build(ctx context.Context) (types.ConfigCollection, error) {
	names, err := b.Active.List()
	if err != nil {
		return types.ConfigCollection{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list active configuration").
			WithCause(err)
	}
	items := make([]types.ConfigItem, 0, len(names))
	for _, name := range names {
		item := types.ConfigItem{
			Name:  name,
			Type:  b.TypeOf(name),
			Label: name,
		}
		doc, ok, err := b.Active.Read(name)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("item", name).Msg("failed to read active configuration")
		} else if ok {
			item.Label = documentLabel(doc, name)
			item.Dependencies = documentModules(doc)
		}
		if b.Extension != nil {
			provider, found, err := b.Extension.Provider(name)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("item", name).Msg("failed to resolve packaged provider")
			} else if found {
				item.Package = provider
			}
		}
		items = append(items, item)
	}
	log.Ctx(ctx).Debug().Int("items", len(items)).Msg("configuration collection built")
	return types.NewConfigCollection(items), nil
}

// TypeOf derives the config type from the longest known prefix of name.
func (b CollectionBuilder) TypeOf(name string) string {
	for _, prefix := range b.Types {
		if name == prefix || strings.HasPrefix(name, prefix+".") {
			return prefix
		}
	}
	return types.SimpleConfigType
}

func documentLabel(doc types.Document, fallback string) string {
	for _, key := range []string{"label", "name"} {
		if value, ok := doc[key].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return fallback
}

func documentModules(doc types.Document) []string {
	var deps map[string]any
	switch typed := doc["dependencies"].(type) {
	case map[string]any:
		deps = typed
	case types.Document:
		deps = typed
	default:
		return nil
	}
	switch list := deps["module"].(type) {
	case []string:
		return types.MergeSet(nil, list...)
	case []any:
		modules := make([]string, 0, len(list))
		for _, value := range list {
			if name, ok := value.(string); ok {
				modules = append(modules, name)
			}
		}
		return types.MergeSet(nil, modules...)
	default:
		return nil
	}
}
