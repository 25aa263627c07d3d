package app

import (
	"context"

	"config-packager/internal/policies"
)

// Components lists the configuration items matching the patterns.  The
// Exported and NotExported flags filter on whether a package provides the
// item; setting both or neither lists everything.
func (s Service) Components(ctx context.Context, req ComponentsRequest) (ComponentsResult, error) {
	for _, pattern := range req.Patterns {
		if err := policies.ValidatePattern(pattern); err != nil {
			return ComponentsResult{}, err
		}
	}
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return ComponentsResult{}, err
	}
	patterns := req.Patterns
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	matcher := policies.NewPatternSet(patterns)
	showExported := req.Exported || !req.NotExported
	showNotExported := req.NotExported || !req.Exported

	var result ComponentsResult
	for _, item := range ss.collection.Items() {
		if !matcher.Matches(item.Type, item.Name) {
			continue
		}
		exported := item.Package != ""
		if exported && !showExported || !exported && !showNotExported {
			continue
		}
		result.Components = append(result.Components, Component{
			Name:     item.Name,
			Type:     item.Type,
			Label:    item.Label,
			Package:  item.Package,
			Exported: exported,
		})
	}
	return result, nil
}
