package searchresult

import "encoding/json"

// DecodeFunc decodes a JSON value into a caller-chosen shape.
type DecodeFunc[T any] func(data []byte) (T, error)

// JSON returns a DecodeFunc that unmarshals into T.
func JSON[T any]() DecodeFunc[T] {
	return func(data []byte) (T, error) {
		var v T
		err := codec.Unmarshal(data, &v)
		return v, err
	}
}

// Raw keeps the value as raw JSON.
var Raw DecodeFunc[json.RawMessage] = func(data []byte) (json.RawMessage, error) {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out, nil
}

// NoExplanation is the explanation type of hits mapped without explanations.
type NoExplanation struct{}

// Explanation is the scoring explanation an engine attaches to a hit when
// explain is requested.
type Explanation struct {
	Value       float64       `json:"value"`
	Description string        `json:"description"`
	Details     []Explanation `json:"details,omitempty"`
}
