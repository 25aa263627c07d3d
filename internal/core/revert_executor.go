package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

// RevertExecutor copies packaged values back onto active storage.
type RevertExecutor struct {
	Active    ports.StoragePort
	Extension ports.StoragePort
}

func NewRevertExecutor(active ports.StoragePort, extension ports.StoragePort) RevertExecutor {
	return RevertExecutor{Active: active, Extension: extension}
}

// Revert handles every selected item independently; a failing item is
// recorded and the rest are still attempted.
func (e RevertExecutor) Revert(ctx context.Context, names []string, collection types.ConfigCollection) types.RevertReport {
	selected := dedupe(names)
	if len(selected) == 0 {
		log.Ctx(ctx).Info().Msg("no configuration selected for import")
		return types.RevertReport{Empty: true}
	}
	report := types.RevertReport{Results: make([]types.RevertResult, 0, len(selected))}
	for _, name := range selected {
		result := e.revertItem(ctx, name, collection)
		report.Results = append(report.Results, result)
	}
	return report
}

func (e RevertExecutor) revertItem(ctx context.Context, name string, collection types.ConfigCollection) types.RevertResult {
	logger := log.Ctx(ctx)
	if !collection.Has(name) {
		return types.RevertResult{Name: name, Message: fmt.Sprintf("%s is not part of the active configuration", name)}
	}
	packaged, found, err := e.Extension.Read(name)
	if err != nil {
		logger.Warn().Err(err).Str("item", name).Msg("failed to read packaged configuration")
		return types.RevertResult{Name: name, Message: fmt.Sprintf("failed to read packaged value of %s: %v", name, err)}
	}
	if !found {
		return types.RevertResult{Name: name, Message: fmt.Sprintf("%s has not been exported to any package", name)}
	}
	if err := e.Active.Write(name, packaged); err != nil {
		logger.Warn().Err(err).Str("item", name).Msg("failed to write active configuration")
		return types.RevertResult{Name: name, Message: fmt.Sprintf("failed to import %s: %v", name, err)}
	}
	logger.Debug().Str("item", name).Msg("configuration imported")
	return types.RevertResult{Name: name, Success: true, Message: fmt.Sprintf("Imported %s", name)}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
