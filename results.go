package searchresult

// Result represents a single search result.
type Result struct {
	// ID is the unique identifier of the result.
	ID string `json:"id"`

	// Index is the index the result was found in, if the engine reports it.
	Index string `json:"index,omitempty"`

	// Score represents the relevance score of this result.
	Score float64 `json:"score"`

	// Fields contains the document fields as key-value pairs.
	Fields map[string]interface{} `json:"fields"`

	// Highlight holds highlighted fragments, nil when none were returned.
	Highlight Highlight `json:"highlight,omitempty"`
}

// Results represents a collection of search results with metadata.
type Results struct {
	// Items contains the individual search results.
	Items []Result `json:"items"`

	// Total is the total number of matching documents.
	Total int64 `json:"total"`

	// Took is the time taken to execute the search in milliseconds.
	Took int64 `json:"took_ms"`

	// MaxScore is the maximum relevance score across all results.
	MaxScore float64 `json:"max_score"`

	// TimedOut reports whether the engine gave up before completion.
	TimedOut bool `json:"timed_out"`
}

// Results flattens the response into a backend-neutral view. Missing totals
// and scores are reported as zero; a missing total falls back to the number
// of items.
func (r *SearchResult) Results() (*Results, error) {
	results := &Results{
		Items:    make([]Result, 0),
		TimedOut: r.TimedOut(),
	}

	err := r.eachHit(func(entry object, src []byte) (bool, error) {
		item := Result{}
		item.ID, _ = scalarText(entry[r.cfg.IDField])
		item.Index, _ = scalarText(entry["_index"])
		if raw, ok := entry["_score"]; ok {
			item.Score, _ = numberFloat(raw)
		}

		if obj, ok := decodeObject(src); ok {
			fields := make(map[string]interface{}, len(obj))
			for k, v := range obj {
				var value interface{}
				if err := codec.Unmarshal(v, &value); err != nil {
					return false, wrapDetail(ErrDecode, err, "failed to decode field %q of hit %q", k, item.ID)
				}
				fields[k] = value
			}
			item.Fields = fields
		}

		highlight, err := extractHighlight(entry[r.cfg.HighlightKey])
		if err != nil {
			return false, err
		}
		item.Highlight = highlight

		results.Items = append(results.Items, item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if total, ok := r.Total(); ok {
		results.Total = total
	} else {
		results.Total = int64(len(results.Items))
	}
	results.Took, _ = r.Took()
	results.MaxScore, _ = r.MaxScore()

	return results, nil
}
