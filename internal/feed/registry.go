package feed

// Registry is an immutable mapping from feed version identifiers to
// generators. It is built once at startup and injected where needed.
type Registry struct {
	generators map[string]*Generator
	fallback   *Generator
}

// NewRegistry creates a registry with the given version mapping. Unknown
// versions resolve to fallback, so version selection never rejects a
// request.
func NewRegistry(fallback *Generator, generators map[string]*Generator) *Registry {
	gens := make(map[string]*Generator, len(generators))
	for version, g := range generators {
		gens[version] = g
	}
	return &Registry{
		generators: gens,
		fallback:   fallback,
	}
}

// Resolve returns the generator registered for version, or the fallback for
// unknown versions.
func (r *Registry) Resolve(version string) *Generator {
	if g, ok := r.generators[version]; ok {
		return g
	}
	return r.fallback
}
