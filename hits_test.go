package searchresult

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

type book struct {
	ID    string `json:"es_metadata_id"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

const booksResponse = `{
	"took": 3,
	"timed_out": false,
	"hits": {
		"total": 3,
		"max_score": 1.5,
		"hits": [
			{
				"_index": "books",
				"_id": "1",
				"_score": 1.5,
				"_source": {"title": "Go Programming", "year": 2020},
				"highlight": {"title": ["<em>Go</em> Programming"]},
				"_explanation": {"value": 1.5, "description": "weight(title:go)", "details": [{"value": 0.5, "description": "idf"}]}
			},
			{
				"_index": "books",
				"_id": "2",
				"_score": 0.7
			},
			{
				"_index": "books",
				"_id": "3",
				"_score": 0.5,
				"_source": {"title": "Data Science", "year": 2021}
			}
		]
	}
}`

func mustParse(t *testing.T, data string, opts ...Option) *SearchResult {
	t.Helper()
	res, err := Parse([]byte(data), opts...)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return res
}

func TestHits(t *testing.T) {
	res := mustParse(t, booksResponse)

	hits, err := Hits(res, JSON[book](), JSON[Explanation]())
	if err != nil {
		t.Fatalf("Hits failed: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}

	t.Run("SourceMapped", func(t *testing.T) {
		if hits[0].Source.Title != "Go Programming" || hits[0].Source.Year != 2020 {
			t.Errorf("Unexpected first source: %+v", hits[0].Source)
		}
		if hits[1].Source.Title != "Data Science" {
			t.Errorf("Expected second hit to be 'Data Science', got '%s'", hits[1].Source.Title)
		}
	})

	t.Run("IDInjected", func(t *testing.T) {
		if hits[0].Source.ID != "1" {
			t.Errorf("Expected metadata id '1', got '%s'", hits[0].Source.ID)
		}
		if hits[1].Source.ID != "3" {
			t.Errorf("Expected metadata id '3', got '%s'", hits[1].Source.ID)
		}
	})

	t.Run("Explanation", func(t *testing.T) {
		if hits[0].Explanation == nil {
			t.Fatal("Expected explanation on first hit")
		}
		if hits[0].Explanation.Value != 1.5 {
			t.Errorf("Expected explanation value 1.5, got %f", hits[0].Explanation.Value)
		}
		if len(hits[0].Explanation.Details) != 1 || hits[0].Explanation.Details[0].Description != "idf" {
			t.Errorf("Unexpected explanation details: %+v", hits[0].Explanation.Details)
		}
		if hits[1].Explanation != nil {
			t.Errorf("Expected no explanation on second hit, got %+v", hits[1].Explanation)
		}
	})

	t.Run("Highlight", func(t *testing.T) {
		fragments := hits[0].Highlight["title"]
		if len(fragments) != 1 || fragments[0] != "<em>Go</em> Programming" {
			t.Errorf("Unexpected highlight: %v", hits[0].Highlight)
		}
		if hits[1].Highlight != nil {
			t.Errorf("Expected nil highlight on second hit, got %v", hits[1].Highlight)
		}
	})
}

func TestHitsDoNotMutateDocument(t *testing.T) {
	res := mustParse(t, booksResponse)

	if _, err := SourceHits(res, JSON[book]()); err != nil {
		t.Fatalf("SourceHits failed: %v", err)
	}

	raw, err := FirstSourceHit(res, Raw)
	if err != nil {
		t.Fatalf("FirstSourceHit failed: %v", err)
	}

	var src map[string]interface{}
	if err := json.Unmarshal(raw.Source, &src); err != nil {
		t.Fatalf("Failed to decode raw source: %v", err)
	}
	if src[DefaultMetadataIDKey] != "1" {
		t.Errorf("Expected injected id in decoded source, got %v", src)
	}

	if strings.Contains(string(res.Raw()), DefaultMetadataIDKey) {
		t.Error("Expected the response body to stay untouched")
	}
	if strings.Contains(string(res.root["hits"]), DefaultMetadataIDKey) {
		t.Error("Expected the parsed tree to stay untouched")
	}
}

func TestInjectedIDKeepsKeyOrder(t *testing.T) {
	res := mustParse(t, `{"hits":{"hits":[{"_id":"42","_source":{"b":1,"a":2}}]}}`)

	hit, err := FirstSourceHit(res, Raw)
	if err != nil {
		t.Fatalf("FirstSourceHit failed: %v", err)
	}

	expected := `{"b":1,"a":2,"es_metadata_id":"42"}`
	if string(hit.Source) != expected {
		t.Errorf("Expected source %s, got %s", expected, hit.Source)
	}
}

func TestFirstHit(t *testing.T) {
	t.Run("MatchesFirstOfHits", func(t *testing.T) {
		res := mustParse(t, booksResponse)

		all, err := SourceHits(res, JSON[book]())
		if err != nil {
			t.Fatalf("SourceHits failed: %v", err)
		}
		first, err := FirstSourceHit(res, JSON[book]())
		if err != nil {
			t.Fatalf("FirstSourceHit failed: %v", err)
		}
		if first == nil {
			t.Fatal("Expected a first hit")
		}
		if first.Source != all[0].Source {
			t.Errorf("Expected first hit %+v, got %+v", all[0].Source, first.Source)
		}
	})

	t.Run("SkipsHitsWithoutSource", func(t *testing.T) {
		res := mustParse(t, `{"hits":{"hits":[{"_id":"1"},{"_id":"2","_source":null},{"_id":"3","_source":{"title":"x"}}]}}`)

		first, err := FirstSourceHit(res, JSON[book]())
		if err != nil {
			t.Fatalf("FirstSourceHit failed: %v", err)
		}
		if first == nil || first.Source.ID != "3" {
			t.Errorf("Expected hit 3, got %+v", first)
		}
	})

	t.Run("StopsAfterFirst", func(t *testing.T) {
		res := mustParse(t, `{"hits":{"hits":[{"_id":"1","_source":{"title":"ok"}},{"_id":"2","_source":{"title":"broken"}}]}}`)

		calls := 0
		var decode DecodeFunc[book] = func(data []byte) (book, error) {
			calls++
			if calls > 1 {
				return book{}, fmt.Errorf("decoded past the first hit")
			}
			return JSON[book]()(data)
		}

		first, err := FirstSourceHit(res, decode)
		if err != nil {
			t.Fatalf("FirstSourceHit failed: %v", err)
		}
		if first.Source.Title != "ok" {
			t.Errorf("Expected 'ok', got '%s'", first.Source.Title)
		}
		if calls != 1 {
			t.Errorf("Expected 1 decode call, got %d", calls)
		}
	})

	t.Run("NoHits", func(t *testing.T) {
		res := mustParse(t, `{"hits":{"total":0,"hits":[]}}`)

		first, err := FirstSourceHit(res, JSON[book]())
		if err != nil {
			t.Fatalf("FirstSourceHit failed: %v", err)
		}
		if first != nil {
			t.Errorf("Expected nil, got %+v", first)
		}
	})
}

func TestHitsContainerShapes(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []string
	}{
		{
			name:     "single object",
			data:     `{"hits": {"hits": {"_id":"1","_source":{"title":"one"}}}}`,
			expected: []string{"1"},
		},
		{
			name:     "array",
			data:     `{"hits": {"hits": [{"_id":"1","_source":{}},{"_id":"2","_source":{}}]}}`,
			expected: []string{"1", "2"},
		},
		{
			name:     "non-object entries skipped",
			data:     `{"hits": {"hits": [1, "two", null, {"_id":"4","_source":{}}]}}`,
			expected: []string{"4"},
		},
		{
			name:     "missing container",
			data:     `{"hits": {"total": 0}}`,
			expected: []string{},
		},
		{
			name:     "null container",
			data:     `{"hits": {"hits": null}}`,
			expected: []string{},
		},
		{
			name:     "scalar container",
			data:     `{"hits": {"hits": 5}}`,
			expected: []string{},
		},
		{
			name:     "hit without id",
			data:     `{"hits": {"hits": [{"_source":{"title":"anonymous"}}]}}`,
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.data)
			hits, err := SourceHits(res, JSON[book]())
			if err != nil {
				t.Fatalf("SourceHits failed: %v", err)
			}
			if hits == nil {
				t.Fatal("Expected a non-nil slice")
			}
			if len(hits) != len(tt.expected) {
				t.Fatalf("Expected %d hits, got %d", len(tt.expected), len(hits))
			}
			for i, id := range tt.expected {
				if hits[i].Source.ID != id {
					t.Errorf("Expected hit %d to have id '%s', got '%s'", i, id, hits[i].Source.ID)
				}
			}
		})
	}
}

func TestHitsMalformedPath(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		detail string
	}{
		{
			name:   "hits missing",
			data:   `{"error": "index_not_found_exception"}`,
			detail: "hits is missing",
		},
		{
			name:   "hits not an object",
			data:   `{"hits": [1, 2]}`,
			detail: "hits is not an object",
		},
		{
			name:   "hits null",
			data:   `{"hits": null}`,
			detail: "hits is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.data)
			_, err := SourceHits(res, JSON[book]())
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedPath) {
				t.Errorf("Expected ErrMalformedPath, got: %v", err)
			}
			if details := fmt.Sprintf("%+v", err); !strings.Contains(details, tt.detail) {
				t.Errorf("Expected error details to contain '%s', got: %s", tt.detail, details)
			}
		})
	}
}

func TestHitsCustomPath(t *testing.T) {
	data := `{"docs": [{"_id": "a", "found": true, "_source": {"title": "A"}}, {"_id": "b", "found": false}]}`
	res := mustParse(t, data, WithPath("docs", "_source"))

	sources, err := Sources(res, JSON[book]())
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(sources) != 1 || sources[0].ID != "a" || sources[0].Title != "A" {
		t.Errorf("Unexpected sources: %+v", sources)
	}
}

func TestHitsCustomKeys(t *testing.T) {
	type doc struct {
		Key  string `json:"doc_id"`
		Name string `json:"name"`
	}
	data := `{"result": {"rows": [{"id": "7", "doc": {"name": "seven"}, "fragments": {"name": ["<b>seven</b>"]}}]}}`
	res := mustParse(t, data,
		WithPath("result", "rows", "doc"),
		WithIDField("id"),
		WithMetadataIDKey("doc_id"),
		WithHighlightKey("fragments"),
	)

	hits, err := SourceHits(res, JSON[doc]())
	if err != nil {
		t.Fatalf("SourceHits failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	if hits[0].Source.Key != "7" || hits[0].Source.Name != "seven" {
		t.Errorf("Unexpected source: %+v", hits[0].Source)
	}
	if hits[0].Highlight["name"][0] != "<b>seven</b>" {
		t.Errorf("Unexpected highlight: %v", hits[0].Highlight)
	}
}

func TestNonObjectSource(t *testing.T) {
	res := mustParse(t, `{"hits":{"hits":[{"_id":"1","_source":"plain text"}]}}`)

	hits, err := SourceHits(res, JSON[string]())
	if err != nil {
		t.Fatalf("SourceHits failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Source != "plain text" {
		t.Errorf("Unexpected hits: %+v", hits)
	}
}

func TestHitsDecodeErrors(t *testing.T) {
	t.Run("source decoder", func(t *testing.T) {
		res := mustParse(t, `{"hits":{"hits":[{"_id":"1","_source":{"year":"not a number"}}]}}`)
		_, err := SourceHits(res, JSON[book]())
		if !errors.Is(err, ErrDecode) {
			t.Errorf("Expected ErrDecode, got: %v", err)
		}
	})

	t.Run("explanation decoder", func(t *testing.T) {
		res := mustParse(t, `{"hits":{"hits":[{"_id":"1","_source":{},"_explanation":"nope"}]}}`)
		_, err := Hits(res, JSON[book](), JSON[Explanation]())
		if !errors.Is(err, ErrDecode) {
			t.Errorf("Expected ErrDecode, got: %v", err)
		}
	})

	t.Run("explanation ignored without decoder", func(t *testing.T) {
		res := mustParse(t, `{"hits":{"hits":[{"_id":"1","_source":{},"_explanation":"nope"}]}}`)
		hits, err := SourceHits(res, JSON[book]())
		if err != nil {
			t.Fatalf("SourceHits failed: %v", err)
		}
		if hits[0].Explanation != nil {
			t.Errorf("Expected nil explanation, got %+v", hits[0].Explanation)
		}
	})

	t.Run("nil source decoder", func(t *testing.T) {
		res := mustParse(t, booksResponse)
		_, err := SourceHits[book](res, nil)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Expected ErrInvalidOption, got: %v", err)
		}
	})
}
