package searchresult

import (
	"encoding/json"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Facet is an aggregation summary selected from a response by its "_type"
// discriminator.
type Facet interface {
	// FacetName is the name the facet was requested under.
	FacetName() string
	// FacetType is the discriminator the facet was built for.
	FacetType() string
}

// FacetConstructor builds a facet from its name and its JSON object.
type FacetConstructor func(name string, data json.RawMessage) (Facet, error)

// FacetRegistry maps facet discriminators to constructors. Lookups are
// case-insensitive. It is safe for concurrent use.
type FacetRegistry struct {
	mu    sync.RWMutex
	ctors map[string]FacetConstructor
}

// NewFacetRegistry creates an empty registry.
func NewFacetRegistry() *FacetRegistry {
	return &FacetRegistry{
		ctors: make(map[string]FacetConstructor),
	}
}

// Register binds typ to ctor, replacing any previous binding.
func (reg *FacetRegistry) Register(typ string, ctor FacetConstructor) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.ctors[strings.ToLower(typ)] = ctor
}

// Lookup returns the constructor bound to typ.
func (reg *FacetRegistry) Lookup(typ string) (FacetConstructor, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ctor, ok := reg.ctors[strings.ToLower(typ)]
	return ctor, ok
}

// Types returns the registered discriminators.
func (reg *FacetRegistry) Types() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	types := make([]string, 0, len(reg.ctors))
	for typ := range reg.ctors {
		types = append(types, typ)
	}
	return types
}

// DefaultFacetRegistry holds the built-in facet types.
var DefaultFacetRegistry = newDefaultFacetRegistry()

// Facets builds every facet of the response whose "_type" matches typ, in
// document order. A response without facets yields an empty list.
func (r *SearchResult) Facets(typ string) ([]Facet, error) {
	ctor, ok := r.cfg.Facets.Lookup(typ)
	if !ok || ctor == nil {
		return nil, withDetail(ErrFacetConstruction, "no constructor registered for facet type %q", typ)
	}

	facets := make([]Facet, 0)

	raw, ok := r.root["facets"]
	if !ok || isNull(raw) {
		return facets, nil
	}
	if kindOf(raw) != '{' {
		return nil, withDetail(ErrMalformedPath, "facets is not an object")
	}

	entries := orderedmap.New[string, json.RawMessage]()
	if err := entries.UnmarshalJSON(raw); err != nil {
		return nil, wrapDetail(ErrMalformedPath, err, "failed to decode facets")
	}

	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		name, data := pair.Key, pair.Value

		entry, ok := decodeObject(data)
		if !ok {
			return nil, withDetail(ErrFacetConstruction, "facet %q is not an object", name)
		}
		entryType, ok := scalarText(entry["_type"])
		if !ok || kindOf(entry["_type"]) != '"' {
			return nil, withDetail(ErrFacetConstruction, "facet %q has no _type", name)
		}
		if !strings.EqualFold(entryType, typ) {
			continue
		}

		facet, err := ctor(name, data)
		if err != nil {
			return nil, wrapDetail(ErrFacetConstruction, err, "failed to construct %s facet %q", typ, name)
		}
		facets = append(facets, facet)
	}

	return facets, nil
}

// FacetsOf builds the facets matching typ as F. The constructor registered
// for typ must produce F values.
func FacetsOf[F Facet](r *SearchResult, typ string) ([]F, error) {
	facets, err := r.Facets(typ)
	if err != nil {
		return nil, err
	}

	typed := make([]F, 0, len(facets))
	for _, facet := range facets {
		f, ok := facet.(F)
		if !ok {
			return nil, withDetail(ErrFacetConstruction, "%s facet %q has type %T", typ, facet.FacetName(), facet)
		}
		typed = append(typed, f)
	}
	return typed, nil
}
