package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

// OverrideDetector finds the items of a package whose active value differs
// from the packaged one.
type OverrideDetector struct {
	Active    ports.StoragePort
	Extension ports.StoragePort
	Engine    DiffEngine
}

func NewOverrideDetector(active ports.StoragePort, extension ports.StoragePort, engine DiffEngine) OverrideDetector {
	return OverrideDetector{Active: active, Extension: extension, Engine: engine}
}

// Detect checks the package items in order.  Shallow detection only
// compares canonical forms; deep detection also keeps the diff rows.
// Items that cannot be read are reported as unreadable, not as overrides.
func (d OverrideDetector) Detect(ctx context.Context, pkg types.Package, deep bool) types.OverrideReport {
	report := types.OverrideReport{Package: pkg.MachineName}
	logger := log.Ctx(ctx)
	for _, name := range pkg.Config {
		active, _, err := d.Active.Read(name)
		if err != nil {
			logger.Warn().Err(err).Str("package", pkg.MachineName).Str("item", name).Msg("failed to read active configuration")
			report.Unreadable = append(report.Unreadable, name)
			continue
		}
		packaged, found, err := d.Extension.Read(name)
		if err != nil {
			logger.Warn().Err(err).Str("package", pkg.MachineName).Str("item", name).Msg("failed to read packaged configuration")
			report.Unreadable = append(report.Unreadable, name)
			continue
		}
		if !found {
			override := types.Override{Name: name, Missing: true}
			if deep {
				rows, err := d.Engine.Diff(nil, active)
				if err != nil {
					logger.Warn().Err(err).Str("item", name).Msg("failed to diff configuration")
				}
				override.Rows = rows
			}
			report.Overrides = append(report.Overrides, override)
			continue
		}
		if !deep {
			equal, err := d.Engine.Equal(packaged, active)
			if err != nil {
				logger.Warn().Err(err).Str("package", pkg.MachineName).Str("item", name).Msg("failed to compare configuration")
				report.Unreadable = append(report.Unreadable, name)
				continue
			}
			if !equal {
				report.Overrides = append(report.Overrides, types.Override{Name: name})
			}
			continue
		}
		rows, err := d.Engine.Diff(packaged, active)
		if err != nil {
			logger.Warn().Err(err).Str("package", pkg.MachineName).Str("item", name).Msg("failed to diff configuration")
			report.Unreadable = append(report.Unreadable, name)
			continue
		}
		if hasChanges(rows) {
			report.Overrides = append(report.Overrides, types.Override{Name: name, Rows: rows})
		}
	}
	logger.Debug().
		Str("package", pkg.MachineName).
		Bool("deep", deep).
		Int("overrides", len(report.Overrides)).
		Msg("overrides detected")
	return report
}

// Status derives the package status from its export flag and a shallow
// detection pass.
func (d OverrideDetector) Status(ctx context.Context, pkg types.Package) types.PackageStatus {
	if pkg.Excluded || pkg.IsUnpackaged() || pkg.Status == types.StatusNoExport {
		return types.StatusNoExport
	}
	if d.Detect(ctx, pkg, false).Empty() {
		return types.StatusDefault
	}
	return types.StatusOverridden
}

func hasChanges(rows []types.DiffRow) bool {
	for _, row := range rows {
		if row.Kind != types.DiffContext {
			return true
		}
	}
	return false
}
