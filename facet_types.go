package searchresult

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Built-in facet discriminators.
const (
	TermsFacetType         = "terms"
	RangeFacetType         = "range"
	HistogramFacetType     = "histogram"
	DateHistogramFacetType = "date_histogram"
	StatisticalFacetType   = "statistical"
	TermsStatsFacetType    = "terms_stats"
	FilterFacetType        = "filter"
	QueryFacetType         = "query"
	GeoDistanceFacetType   = "geo_distance"
)

func newDefaultFacetRegistry() *FacetRegistry {
	reg := NewFacetRegistry()
	reg.Register(TermsFacetType, newTermsFacet)
	reg.Register(RangeFacetType, newRangeFacet)
	reg.Register(HistogramFacetType, newHistogramFacet)
	reg.Register(DateHistogramFacetType, newDateHistogramFacet)
	reg.Register(StatisticalFacetType, newStatisticalFacet)
	reg.Register(TermsStatsFacetType, newTermsStatsFacet)
	reg.Register(FilterFacetType, newFilterFacet)
	reg.Register(QueryFacetType, newQueryFacet)
	reg.Register(GeoDistanceFacetType, newGeoDistanceFacet)
	return reg
}

// TermEntry is one term of a terms facet.
type TermEntry struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// TermsFacet holds the most frequent terms of a field.
type TermsFacet struct {
	Name    string      `json:"name"`
	Missing int64       `json:"missing"`
	Total   int64       `json:"total"`
	Other   int64       `json:"other"`
	Terms   []TermEntry `json:"terms"`
}

func (f *TermsFacet) FacetName() string { return f.Name }
func (f *TermsFacet) FacetType() string { return TermsFacetType }

type termJSON struct {
	Term  json.RawMessage `json:"term"`
	Count int64           `json:"count"`
}

func newTermsFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Missing int64      `json:"missing"`
		Total   int64      `json:"total"`
		Other   int64      `json:"other"`
		Terms   []termJSON `json:"terms"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	facet := &TermsFacet{
		Name:    name,
		Missing: wire.Missing,
		Total:   wire.Total,
		Other:   wire.Other,
		Terms:   make([]TermEntry, 0, len(wire.Terms)),
	}
	for i, t := range wire.Terms {
		term, ok := scalarText(t.Term)
		if !ok {
			return nil, errors.Newf("term %d of facet %q is not a scalar", i, name)
		}
		facet.Terms = append(facet.Terms, TermEntry{Term: term, Count: t.Count})
	}
	return facet, nil
}

// RangeEntry is one bucket of a range facet. From and To are nil for open ends.
type RangeEntry struct {
	From       *float64 `json:"from,omitempty"`
	To         *float64 `json:"to,omitempty"`
	Count      int64    `json:"count"`
	TotalCount int64    `json:"total_count"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Total      float64  `json:"total"`
	Mean       float64  `json:"mean"`
}

// RangeFacet holds counts and statistics per value range.
type RangeFacet struct {
	Name   string       `json:"name"`
	Ranges []RangeEntry `json:"ranges"`
}

func (f *RangeFacet) FacetName() string { return f.Name }
func (f *RangeFacet) FacetType() string { return RangeFacetType }

func newRangeFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Ranges []RangeEntry `json:"ranges"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &RangeFacet{Name: name, Ranges: wire.Ranges}, nil
}

// HistogramEntry is one interval bucket of a histogram facet.
type HistogramEntry struct {
	Key   int64 `json:"key"`
	Count int64 `json:"count"`
}

// HistogramFacet holds counts per numeric interval.
type HistogramFacet struct {
	Name    string           `json:"name"`
	Entries []HistogramEntry `json:"entries"`
}

func (f *HistogramFacet) FacetName() string { return f.Name }
func (f *HistogramFacet) FacetType() string { return HistogramFacetType }

func newHistogramFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Entries []HistogramEntry `json:"entries"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &HistogramFacet{Name: name, Entries: wire.Entries}, nil
}

// DateHistogramEntry is one time bucket; Time is in epoch milliseconds.
type DateHistogramEntry struct {
	Time  int64 `json:"time"`
	Count int64 `json:"count"`
}

// DateHistogramFacet holds counts per time interval.
type DateHistogramFacet struct {
	Name    string               `json:"name"`
	Entries []DateHistogramEntry `json:"entries"`
}

func (f *DateHistogramFacet) FacetName() string { return f.Name }
func (f *DateHistogramFacet) FacetType() string { return DateHistogramFacetType }

func newDateHistogramFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Entries []DateHistogramEntry `json:"entries"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &DateHistogramFacet{Name: name, Entries: wire.Entries}, nil
}

// StatisticalFacet holds statistics over a numeric field.
type StatisticalFacet struct {
	Name         string  `json:"name"`
	Count        int64   `json:"count"`
	Total        float64 `json:"total"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	SumOfSquares float64 `json:"sum_of_squares"`
	Variance     float64 `json:"variance"`
	StdDeviation float64 `json:"std_deviation"`
}

func (f *StatisticalFacet) FacetName() string { return f.Name }
func (f *StatisticalFacet) FacetType() string { return StatisticalFacetType }

func newStatisticalFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Count        int64   `json:"count"`
		Total        float64 `json:"total"`
		Min          float64 `json:"min"`
		Max          float64 `json:"max"`
		Mean         float64 `json:"mean"`
		SumOfSquares float64 `json:"sum_of_squares"`
		Variance     float64 `json:"variance"`
		StdDeviation float64 `json:"std_deviation"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &StatisticalFacet{
		Name:         name,
		Count:        wire.Count,
		Total:        wire.Total,
		Min:          wire.Min,
		Max:          wire.Max,
		Mean:         wire.Mean,
		SumOfSquares: wire.SumOfSquares,
		Variance:     wire.Variance,
		StdDeviation: wire.StdDeviation,
	}, nil
}

// TermsStatsEntry is one term of a terms_stats facet with statistics over
// the value field.
type TermsStatsEntry struct {
	Term       string  `json:"term"`
	Count      int64   `json:"count"`
	TotalCount int64   `json:"total_count"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Total      float64 `json:"total"`
	Mean       float64 `json:"mean"`
}

// TermsStatsFacet holds per-term statistics.
type TermsStatsFacet struct {
	Name    string            `json:"name"`
	Missing int64             `json:"missing"`
	Terms   []TermsStatsEntry `json:"terms"`
}

func (f *TermsStatsFacet) FacetName() string { return f.Name }
func (f *TermsStatsFacet) FacetType() string { return TermsStatsFacetType }

func newTermsStatsFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Missing int64 `json:"missing"`
		Terms   []struct {
			Term       json.RawMessage `json:"term"`
			Count      int64           `json:"count"`
			TotalCount int64           `json:"total_count"`
			Min        float64         `json:"min"`
			Max        float64         `json:"max"`
			Total      float64         `json:"total"`
			Mean       float64         `json:"mean"`
		} `json:"terms"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	facet := &TermsStatsFacet{
		Name:    name,
		Missing: wire.Missing,
		Terms:   make([]TermsStatsEntry, 0, len(wire.Terms)),
	}
	for i, t := range wire.Terms {
		term, ok := scalarText(t.Term)
		if !ok {
			return nil, errors.Newf("term %d of facet %q is not a scalar", i, name)
		}
		facet.Terms = append(facet.Terms, TermsStatsEntry{
			Term:       term,
			Count:      t.Count,
			TotalCount: t.TotalCount,
			Min:        t.Min,
			Max:        t.Max,
			Total:      t.Total,
			Mean:       t.Mean,
		})
	}
	return facet, nil
}

// FilterFacet holds the number of documents matching a filter.
type FilterFacet struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func (f *FilterFacet) FacetName() string { return f.Name }
func (f *FilterFacet) FacetType() string { return FilterFacetType }

func newFilterFacet(name string, data json.RawMessage) (Facet, error) {
	count, err := decodeCount(data)
	if err != nil {
		return nil, err
	}
	return &FilterFacet{Name: name, Count: count}, nil
}

// QueryFacet holds the number of documents matching a query.
type QueryFacet struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func (f *QueryFacet) FacetName() string { return f.Name }
func (f *QueryFacet) FacetType() string { return QueryFacetType }

func newQueryFacet(name string, data json.RawMessage) (Facet, error) {
	count, err := decodeCount(data)
	if err != nil {
		return nil, err
	}
	return &QueryFacet{Name: name, Count: count}, nil
}

func decodeCount(data json.RawMessage) (int64, error) {
	var wire struct {
		Count int64 `json:"count"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return 0, err
	}
	return wire.Count, nil
}

// GeoDistanceFacet holds counts and statistics per distance range.
type GeoDistanceFacet struct {
	Name   string       `json:"name"`
	Ranges []RangeEntry `json:"ranges"`
}

func (f *GeoDistanceFacet) FacetName() string { return f.Name }
func (f *GeoDistanceFacet) FacetType() string { return GeoDistanceFacetType }

func newGeoDistanceFacet(name string, data json.RawMessage) (Facet, error) {
	var wire struct {
		Ranges []RangeEntry `json:"ranges"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &GeoDistanceFacet{Name: name, Ranges: wire.Ranges}, nil
}
