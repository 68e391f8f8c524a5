package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/letmevibethatforyou/searchresult"
)

type hitReport struct {
	Source      json.RawMessage        `json:"source"`
	Explanation json.RawMessage        `json:"explanation,omitempty"`
	Highlight   searchresult.Highlight `json:"highlight,omitempty"`
}

type report struct {
	Succeeded bool                            `json:"succeeded"`
	Error     string                          `json:"error,omitempty"`
	Total     *int64                          `json:"total,omitempty"`
	MaxScore  *float64                        `json:"max_score,omitempty"`
	Took      *int64                          `json:"took_ms,omitempty"`
	TimedOut  bool                            `json:"timed_out"`
	Hits      []hitReport                     `json:"hits"`
	Facets    map[string][]searchresult.Facet `json:"facets,omitempty"`
}

// buildReport summarizes res. For a failed response only the status fields
// are filled in.
func buildReport(res *searchresult.SearchResult, facetTypes []string, firstOnly bool) (*report, error) {
	out := &report{
		Succeeded: res.Succeeded(),
		TimedOut:  res.TimedOut(),
		Hits:      make([]hitReport, 0),
	}
	if msg, ok := res.ErrorMessage(); ok {
		out.Error = msg
	}
	if total, ok := res.Total(); ok {
		out.Total = &total
	}
	if score, ok := res.MaxScore(); ok {
		out.MaxScore = &score
	}
	if took, ok := res.Took(); ok {
		out.Took = &took
	}
	// Error responses carry no hits to map.
	if !out.Succeeded {
		return out, nil
	}

	var hits []searchresult.Hit[json.RawMessage, json.RawMessage]
	if firstOnly {
		hit, err := searchresult.FirstHit(res, searchresult.Raw, searchresult.Raw)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			hits = append(hits, *hit)
		}
	} else {
		var err error
		hits, err = searchresult.Hits(res, searchresult.Raw, searchresult.Raw)
		if err != nil {
			return nil, err
		}
	}
	for _, hit := range hits {
		entry := hitReport{Source: hit.Source, Highlight: hit.Highlight}
		if hit.Explanation != nil {
			entry.Explanation = *hit.Explanation
		}
		out.Hits = append(out.Hits, entry)
	}

	if len(facetTypes) > 0 {
		out.Facets = make(map[string][]searchresult.Facet, len(facetTypes))
		for _, typ := range facetTypes {
			facets, err := res.Facets(typ)
			if err != nil {
				return nil, err
			}
			out.Facets[typ] = facets
		}
	}

	return out, nil
}

func printReport(w io.Writer, r *report) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
