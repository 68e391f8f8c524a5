// Package searchresult maps raw search engine responses onto typed hits,
// highlights, explanations, totals and facets.
package searchresult

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SearchResult wraps a parsed search response. It is immutable: every
// accessor walks the parsed tree again and nothing is cached or mutated, so a
// SearchResult is safe for concurrent use.
type SearchResult struct {
	raw  []byte
	root object
	cfg  Config
}

// Parse parses a search response body.
func Parse(data []byte, opts ...Option) (*SearchResult, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.Apply(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if kindOf(data) != '{' {
		return nil, withDetail(ErrInvalidDocument, "search response is not a JSON object")
	}

	var root object
	if err := codec.Unmarshal(data, &root); err != nil {
		return nil, wrapDetail(ErrInvalidDocument, err, "failed to parse search response")
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	return &SearchResult{
		raw:  raw,
		root: root,
		cfg:  cfg,
	}, nil
}

// Raw returns a copy of the response body.
func (r *SearchResult) Raw() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

// Path returns the configured hits path.
func (r *SearchResult) Path() []string {
	return append([]string(nil), r.cfg.Path...)
}

// ResponseCode returns the HTTP status recorded with WithResponseCode, 0 if unknown.
func (r *SearchResult) ResponseCode() int {
	return r.cfg.ResponseCode
}

// Succeeded reports whether the response carries a 2xx (or unknown) status
// and no top-level error.
func (r *SearchResult) Succeeded() bool {
	code := r.cfg.ResponseCode
	if code != 0 && (code < 200 || code > 299) {
		return false
	}
	_, hasError := r.lookup("error")
	return !hasError
}

// ErrorMessage returns the top-level error reported by the engine.
func (r *SearchResult) ErrorMessage() (string, bool) {
	raw, ok := r.lookup("error")
	if !ok {
		return "", false
	}

	if text, ok := scalarText(raw); ok {
		return text, true
	}

	if obj, ok := decodeObject(raw); ok {
		reason, hasReason := scalarText(obj["reason"])
		typ, hasType := scalarText(obj["type"])
		switch {
		case hasReason && hasType:
			return typ + ": " + reason, true
		case hasReason:
			return reason, true
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw), true
	}
	return compact.String(), true
}

// Total returns hits.total. Both the plain number form and the
// {"value": n, "relation": ...} form are accepted.
func (r *SearchResult) Total() (int64, bool) {
	raw, ok := r.lookup("hits", "total")
	if !ok {
		return 0, false
	}
	if obj, isObj := decodeObject(raw); isObj {
		value, present := obj["value"]
		if !present {
			return 0, false
		}
		raw = value
	}
	return numberInt(raw)
}

// MaxScore returns hits.max_score. A null max score, which engines report
// when sorting on something other than the score, is absent.
func (r *SearchResult) MaxScore() (float64, bool) {
	raw, ok := r.lookup("hits", "max_score")
	if !ok {
		return 0, false
	}
	return numberFloat(raw)
}

// Took returns the engine side execution time in milliseconds.
func (r *SearchResult) Took() (int64, bool) {
	raw, ok := r.lookup("took")
	if !ok {
		return 0, false
	}
	return numberInt(raw)
}

// TimedOut reports whether the engine flagged the response as timed out.
func (r *SearchResult) TimedOut() bool {
	raw, ok := r.lookup("timed_out")
	if !ok {
		return false
	}
	return strings.TrimSpace(string(raw)) == "true"
}

// lookup walks a fixed path leniently: any segment that does not resolve,
// including a non-object parent, makes the value absent. A null leaf is absent.
func (r *SearchResult) lookup(path ...string) ([]byte, bool) {
	cur := r.root
	for i, seg := range path {
		v, ok := cur[seg]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			if isNull(v) {
				return nil, false
			}
			return v, true
		}
		next, ok := decodeObject(v)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}
