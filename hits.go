package searchresult

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Hit is one matched document.
type Hit[S, E any] struct {
	// Source is the decoded document body. When the hit carries an
	// identifier it is present in the body under the metadata id key.
	Source S

	// Explanation is the decoded scoring explanation, nil when the hit has none.
	Explanation *E

	// Highlight holds the highlighted fragments, nil when the hit has none.
	Highlight Highlight
}

// Hits maps every hit of the response, in document order. explanation may be
// nil, in which case explanations are not decoded.
func Hits[S, E any](r *SearchResult, source DecodeFunc[S], explanation DecodeFunc[E]) ([]Hit[S, E], error) {
	return extractHits(r, source, explanation, false)
}

// FirstHit maps the first hit of the response, or returns nil when there is none.
func FirstHit[S, E any](r *SearchResult, source DecodeFunc[S], explanation DecodeFunc[E]) (*Hit[S, E], error) {
	hits, err := extractHits(r, source, explanation, true)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return &hits[0], nil
}

// SourceHits maps every hit without decoding explanations.
func SourceHits[S any](r *SearchResult, source DecodeFunc[S]) ([]Hit[S, NoExplanation], error) {
	return extractHits[S, NoExplanation](r, source, nil, false)
}

// FirstSourceHit maps the first hit without decoding its explanation.
func FirstSourceHit[S any](r *SearchResult, source DecodeFunc[S]) (*Hit[S, NoExplanation], error) {
	return FirstHit[S, NoExplanation](r, source, nil)
}

// Sources returns the decoded source of every hit.
func Sources[S any](r *SearchResult, source DecodeFunc[S]) ([]S, error) {
	hits, err := SourceHits(r, source)
	if err != nil {
		return nil, err
	}
	sources := make([]S, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}

func extractHits[S, E any](r *SearchResult, source DecodeFunc[S], explanation DecodeFunc[E], firstOnly bool) ([]Hit[S, E], error) {
	if source == nil {
		return nil, withDetail(ErrInvalidOption, "source decoder must not be nil")
	}

	hits := make([]Hit[S, E], 0)
	err := r.eachHit(func(entry object, src []byte) (bool, error) {
		hit, err := buildHit(r.cfg, entry, src, source, explanation)
		if err != nil {
			return false, err
		}
		hits = append(hits, hit)
		return !firstOnly, nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func buildHit[S, E any](cfg Config, entry object, src []byte, source DecodeFunc[S], explanation DecodeFunc[E]) (Hit[S, E], error) {
	var hit Hit[S, E]

	if id, ok := entry[cfg.IDField]; ok && !isNull(id) {
		augmented, err := withMetadataID(src, cfg.MetadataIDKey, id)
		if err != nil {
			return hit, err
		}
		src = augmented
	}

	s, err := source(src)
	if err != nil {
		return hit, wrapDetail(ErrDecode, err, "failed to decode hit source")
	}
	hit.Source = s

	if explanation != nil {
		if raw, ok := entry[cfg.ExplanationKey]; ok && !isNull(raw) {
			e, err := explanation(raw)
			if err != nil {
				return hit, wrapDetail(ErrDecode, err, "failed to decode hit explanation")
			}
			hit.Explanation = &e
		}
	}

	hit.Highlight, err = extractHighlight(entry[cfg.HighlightKey])
	if err != nil {
		return hit, err
	}

	return hit, nil
}

// eachHit calls fn for every hit entry that carries a non-null source, in
// document order, until fn returns false or an error.
func (r *SearchResult) eachHit(fn func(entry object, src []byte) (bool, error)) error {
	container, sourceKey, err := r.hitsContainer()
	if err != nil {
		return err
	}

	var entries []json.RawMessage
	switch kindOf(container) {
	case '{':
		entries = []json.RawMessage{container}
	case '[':
		if err := codec.Unmarshal(container, &entries); err != nil {
			return wrapDetail(ErrMalformedPath, err, "failed to decode hits array")
		}
	default:
		return nil
	}

	for _, raw := range entries {
		entry, ok := decodeObject(raw)
		if !ok {
			continue
		}
		src, ok := entry[sourceKey]
		if !ok || isNull(src) {
			continue
		}
		more, err := fn(entry, src)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// hitsContainer descends to the value holding the hits. Segments leading to
// the container must be objects; the container itself may be anything.
func (r *SearchResult) hitsContainer() ([]byte, string, error) {
	path := r.cfg.Path
	sourceKey := path[len(path)-1]
	containerKey := path[len(path)-2]

	cur := r.root
	for i, seg := range path[:len(path)-2] {
		v, ok := cur[seg]
		if !ok || isNull(v) {
			return nil, "", withDetail(ErrMalformedPath, "%s is missing", strings.Join(path[:i+1], "."))
		}
		next, ok := decodeObject(v)
		if !ok {
			return nil, "", withDetail(ErrMalformedPath, "%s is not an object", strings.Join(path[:i+1], "."))
		}
		cur = next
	}

	return cur[containerKey], sourceKey, nil
}

// withMetadataID returns a copy of the source object with the identifier
// added under key. Key order of the source is kept. Sources that are not
// objects are returned unchanged.
func withMetadataID(src []byte, key string, id json.RawMessage) ([]byte, error) {
	if kindOf(src) != '{' {
		return src, nil
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(src); err != nil {
		return nil, wrapDetail(ErrDecode, err, "failed to decode hit source")
	}
	fields.Set(key, id)

	augmented, err := fields.MarshalJSON()
	if err != nil {
		return nil, wrapDetail(ErrDecode, err, "failed to encode hit source")
	}
	return augmented, nil
}
