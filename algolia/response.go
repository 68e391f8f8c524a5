// Package algolia converts Algolia query responses into the search response
// shape read by searchresult, so Algolia hits go through the same mapping as
// Elasticsearch hits.
package algolia

import (
	"sort"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/searchresult"
)

// Attributes Algolia adds to every hit. They are not part of the record.
const (
	objectIDAttribute        = "objectID"
	highlightResultAttribute = "_highlightResult"
	snippetResultAttribute   = "_snippetResult"
	rankingInfoAttribute     = "_rankingInfo"
	distinctSeqIDAttribute   = "_distinctSeqID"
)

// RankingInfo is the per-hit ranking detail Algolia returns with
// getRankingInfo. It is carried as the hit explanation.
type RankingInfo struct {
	NbTypos           int  `json:"nbTypos"`
	FirstMatchedWord  int  `json:"firstMatchedWord"`
	ProximityDistance int  `json:"proximityDistance"`
	UserScore         int  `json:"userScore"`
	GeoDistance       int  `json:"geoDistance"`
	GeoPrecision      int  `json:"geoPrecision"`
	NbExactWords      int  `json:"nbExactWords"`
	Words             int  `json:"words"`
	Filters           int  `json:"filters"`
	PromotedByReRank  bool `json:"promotedByReRanking,omitempty"`
}

type hitJSON struct {
	Index       string                 `json:"_index,omitempty"`
	ID          string                 `json:"_id,omitempty"`
	Score       float64                `json:"_score"`
	Source      map[string]interface{} `json:"_source"`
	Highlight   map[string][]string    `json:"highlight,omitempty"`
	Explanation interface{}            `json:"_explanation,omitempty"`
}

type hitsJSON struct {
	Total    int       `json:"total"`
	MaxScore *float64  `json:"max_score"`
	Hits     []hitJSON `json:"hits"`
}

type termJSON struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type termsFacetJSON struct {
	Type    string     `json:"_type"`
	Missing int        `json:"missing"`
	Total   int        `json:"total"`
	Other   int        `json:"other"`
	Terms   []termJSON `json:"terms"`
}

type documentJSON struct {
	Took     int                       `json:"took"`
	TimedOut bool                      `json:"timed_out"`
	Hits     hitsJSON                  `json:"hits"`
	Facets   map[string]termsFacetJSON `json:"facets,omitempty"`
}

// Document renders res as a search response body.
func Document(res search.QueryRes) ([]byte, error) {
	doc := documentJSON{
		Took: res.ProcessingTimeMS,
		Hits: hitsJSON{
			Total: res.NbHits,
			Hits:  make([]hitJSON, 0, len(res.Hits)),
		},
	}

	for i, attrs := range res.Hits {
		score := calculateScore(len(res.Hits), i)
		if doc.Hits.MaxScore == nil || score > *doc.Hits.MaxScore {
			s := score
			doc.Hits.MaxScore = &s
		}
		doc.Hits.Hits = append(doc.Hits.Hits, convertHit(res.Index, score, attrs))
	}

	if len(res.Facets) > 0 {
		doc.Facets = make(map[string]termsFacetJSON, len(res.Facets))
		for name, counts := range res.Facets {
			doc.Facets[name] = convertFacet(counts)
		}
	}

	data, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return nil, errors.WithSecondaryError(
			searchresult.ErrInvalidDocument,
			errors.Wrapf(err, "failed to encode Algolia response"),
		)
	}
	return data, nil
}

// FromQueryRes converts res and parses it. Pass
// searchresult.WithMetadataIDKey to control where the objectID is added to
// each decoded record.
func FromQueryRes(res search.QueryRes, opts ...searchresult.Option) (*searchresult.SearchResult, error) {
	data, err := Document(res)
	if err != nil {
		return nil, err
	}
	return searchresult.Parse(data, opts...)
}

func convertHit(index string, score float64, attrs map[string]interface{}) hitJSON {
	hit := hitJSON{
		Index:  index,
		Score:  score,
		Source: make(map[string]interface{}, len(attrs)),
	}

	for key, value := range attrs {
		switch key {
		case objectIDAttribute:
			hit.ID, _ = value.(string)
		case highlightResultAttribute:
			highlight := make(map[string][]string)
			flattenHighlight("", value, highlight)
			if len(highlight) > 0 {
				hit.Highlight = highlight
			}
		case rankingInfoAttribute:
			hit.Explanation = value
		case snippetResultAttribute, distinctSeqIDAttribute:
		default:
			hit.Source[key] = value
		}
	}

	return hit
}

// flattenHighlight collects the highlighted values of every attribute that
// matched. Nested attributes use dotted keys; array elements share the key
// of their array.
func flattenHighlight(prefix string, v interface{}, out map[string][]string) {
	switch h := v.(type) {
	case map[string]interface{}:
		if value, ok := h["value"].(string); ok {
			if level, _ := h["matchLevel"].(string); level != "" && level != "none" {
				out[prefix] = append(out[prefix], value)
			}
			return
		}
		for key, child := range h {
			if prefix != "" {
				key = prefix + "." + key
			}
			flattenHighlight(key, child, out)
		}
	case []interface{}:
		for _, child := range h {
			flattenHighlight(prefix, child, out)
		}
	}
}

// convertFacet orders facet values by count, most frequent first, breaking
// ties by value.
func convertFacet(counts map[string]int) termsFacetJSON {
	facet := termsFacetJSON{
		Type:  searchresult.TermsFacetType,
		Terms: make([]termJSON, 0, len(counts)),
	}
	for term, count := range counts {
		facet.Terms = append(facet.Terms, termJSON{Term: term, Count: count})
		facet.Total += count
	}
	sort.Slice(facet.Terms, func(i, j int) bool {
		if facet.Terms[i].Count != facet.Terms[j].Count {
			return facet.Terms[i].Count > facet.Terms[j].Count
		}
		return facet.Terms[i].Term < facet.Terms[j].Term
	})
	return facet
}

// calculateScore creates a rank-based score, since Algolia ranks hits
// without exposing a relevance score.
func calculateScore(totalResults, position int) float64 {
	if totalResults == 0 {
		return 1.0
	}
	return float64(totalResults-position) / float64(totalResults)
}
