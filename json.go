package searchresult

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/bytedance/sonic"
)

// codec is the JSON implementation used for every decode in this package.
var codec = sonic.ConfigStd

// object is one decoded level of the response tree. Values stay raw until a
// caller walks into them.
type object = map[string]json.RawMessage

// kindOf reports the first significant byte of a JSON value: '{', '[', '"',
// 'n', 't', 'f', a digit or '-'. It returns 0 for empty input.
func kindOf(raw []byte) byte {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeObject decodes raw as one tree level. ok is false when raw is not a
// JSON object.
func decodeObject(raw []byte) (object, bool) {
	if kindOf(raw) != '{' {
		return nil, false
	}
	var obj object
	if err := codec.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// scalarText renders a JSON scalar as text: strings are unquoted, numbers and
// booleans keep their literal form. ok is false for objects, arrays and null.
func scalarText(raw []byte) (string, bool) {
	switch kindOf(raw) {
	case '"':
		var s string
		if err := codec.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n', 0:
		return "", false
	default:
		return string(bytes.TrimSpace(raw)), true
	}
}

// numberInt accepts integer and float literals; floats outside the int64
// range are rejected.
func numberInt(raw []byte) (int64, bool) {
	text := string(bytes.TrimSpace(raw))
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func numberFloat(raw []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
