package searchresult

import "encoding/json"

// Highlight maps a field name to its highlighted fragments, in the order the
// engine returned them.
type Highlight map[string][]string

// extractHighlight maps a highlight object. An absent or null highlight
// returns nil, which is distinct from an empty, non-nil Highlight.
func extractHighlight(raw []byte) (Highlight, error) {
	if isNull(raw) {
		return nil, nil
	}

	obj, ok := decodeObject(raw)
	if !ok {
		return nil, withDetail(ErrDecode, "highlight is not an object")
	}

	highlight := make(Highlight, len(obj))
	for field, value := range obj {
		if kindOf(value) != '[' {
			return nil, withDetail(ErrDecode, "highlight field %q is not an array", field)
		}

		var elements []json.RawMessage
		if err := codec.Unmarshal(value, &elements); err != nil {
			return nil, wrapDetail(ErrDecode, err, "failed to decode highlight field %q", field)
		}

		fragments := make([]string, 0, len(elements))
		for i, element := range elements {
			text, ok := scalarText(element)
			if !ok {
				return nil, withDetail(ErrDecode, "highlight field %q fragment %d is not a scalar", field, i)
			}
			fragments = append(fragments, text)
		}
		highlight[field] = fragments
	}

	return highlight, nil
}
