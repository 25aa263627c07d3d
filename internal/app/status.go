package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"config-packager/internal/core"
	"config-packager/internal/types"
)

func (s Service) Status(ctx context.Context, req StatusRequest) (StatusResult, error) {
	ss, err := s.openSession(ctx, req.Bundle, false)
	if err != nil {
		return StatusResult{}, err
	}
	registry, err := core.NewGenerationRegistry(s.Methods(s.Settings, s.profileDefinition(ss.bundle).MachineName)...)
	if err != nil {
		return StatusResult{}, err
	}
	result := StatusResult{
		Bundle:            ss.bundle,
		ExportFolder:      s.Settings.ExportFolder,
		ActiveDir:         s.Settings.ActiveDir,
		AssignmentMethods: append([]string(nil), core.AssignmentMethods...),
	}
	for _, method := range registry.Methods() {
		result.GenerationMethods = append(result.GenerationMethods, MethodInfo{
			ID:          method.ID(),
			Name:        method.Name(),
			Description: method.Description(),
			Weight:      method.Weight(),
		})
	}
	switch len(req.Keys) {
	case 0:
	case 1:
		item, ok := ss.collection.Get(req.Keys[0])
		if !ok {
			return StatusResult{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("configuration %s does not exist", req.Keys[0]))
		}
		result.Items = []types.ConfigItem{item}
	default:
		result.Names = ss.collection.Names()
	}
	return result, nil
}

// profileDefinition returns the bundle profile, falling back to the
// configured one.
func (s Service) profileDefinition(bundle types.Bundle) types.ProfileDefinition {
	if bundle.Profile != nil && bundle.Profile.MachineName != "" {
		return *bundle.Profile
	}
	return s.Settings.Profile
}
