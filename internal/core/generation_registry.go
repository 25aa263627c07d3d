package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"config-packager/internal/ports"
)

// GenerationRegistry keys generation methods by id.
type GenerationRegistry struct {
	methods map[string]ports.GenerationMethodPort
}

func NewGenerationRegistry(methods ...ports.GenerationMethodPort) (GenerationRegistry, error) {
	registry := GenerationRegistry{methods: make(map[string]ports.GenerationMethodPort, len(methods))}
	for _, method := range methods {
		if err := registry.Register(method); err != nil {
			return GenerationRegistry{}, err
		}
	}
	return registry, nil
}

func (r GenerationRegistry) Register(method ports.GenerationMethodPort) error {
	id := method.ID()
	if id == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("generation method id must not be empty")
	}
	if _, ok := r.methods[id]; ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg(fmt.Sprintf("generation method %s registered twice", id))
	}
	r.methods[id] = method
	return nil
}

func (r GenerationRegistry) Get(id string) (ports.GenerationMethodPort, error) {
	method, ok := r.methods[id]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("unknown generation method: %s", id))
	}
	return method, nil
}

// Methods lists the registered methods by weight, then id.
func (r GenerationRegistry) Methods() []ports.GenerationMethodPort {
	out := make([]ports.GenerationMethodPort, 0, len(r.methods))
	for _, method := range r.methods {
		out = append(out, method)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight() != out[j].Weight() {
			return out[i].Weight() < out[j].Weight()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}
