package searchresult

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		opts        []Option
		expectedErr error
	}{
		{
			name: "valid response",
			data: `{"hits": {"total": 0, "hits": []}}`,
		},
		{
			name: "empty object",
			data: `{}`,
		},
		{
			name:        "array root",
			data:        `[{"hits": {}}]`,
			expectedErr: ErrInvalidDocument,
		},
		{
			name:        "empty body",
			data:        ``,
			expectedErr: ErrInvalidDocument,
		},
		{
			name:        "truncated body",
			data:        `{"hits": {"total": `,
			expectedErr: ErrInvalidDocument,
		},
		{
			name:        "path too short",
			data:        `{}`,
			opts:        []Option{WithPath("hits")},
			expectedErr: ErrInvalidOption,
		},
		{
			name:        "empty path segment",
			data:        `{}`,
			opts:        []Option{WithPath("hits", "", "_source")},
			expectedErr: ErrInvalidOption,
		},
		{
			name:        "nil facet registry",
			data:        `{}`,
			opts:        []Option{WithFacetRegistry(nil)},
			expectedErr: ErrInvalidOption,
		},
		{
			name:        "empty id field",
			data:        `{}`,
			opts:        []Option{WithIDField("")},
			expectedErr: ErrInvalidOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse([]byte(tt.data), tt.opts...)
			if tt.expectedErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if res == nil {
					t.Fatal("Expected a result")
				}
				return
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Expected %v, got: %v", tt.expectedErr, err)
			}
		})
	}
}

func TestParseCopiesBody(t *testing.T) {
	body := []byte(`{"took": 1}`)
	res, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	body[2] = 'X'
	if string(res.Raw()) != `{"took": 1}` {
		t.Errorf("Expected body copy to be unaffected, got %s", res.Raw())
	}

	path := res.Path()
	path[0] = "changed"
	if res.Path()[0] != "hits" {
		t.Error("Expected Path to return a copy")
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected int64
		present  bool
	}{
		{name: "number", data: `{"hits": {"total": 10}}`, expected: 10, present: true},
		{name: "zero", data: `{"hits": {"total": 0}}`, expected: 0, present: true},
		{name: "object form", data: `{"hits": {"total": {"value": 42, "relation": "eq"}}}`, expected: 42, present: true},
		{name: "object without value", data: `{"hits": {"total": {"relation": "eq"}}}`, present: false},
		{name: "float literal", data: `{"hits": {"total": 10.0}}`, expected: 10, present: true},
		{name: "float beyond int64", data: `{"hits": {"total": 1e30}}`, present: false},
		{name: "negative float beyond int64", data: `{"hits": {"total": -1e19}}`, present: false},
		{name: "missing total", data: `{"hits": {"hits": []}}`, present: false},
		{name: "missing hits", data: `{"took": 1}`, present: false},
		{name: "hits not an object", data: `{"hits": []}`, present: false},
		{name: "null total", data: `{"hits": {"total": null}}`, present: false},
		{name: "string total", data: `{"hits": {"total": "ten"}}`, present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.data)
			total, ok := res.Total()
			if ok != tt.present {
				t.Fatalf("Expected present=%v, got %v", tt.present, ok)
			}
			if total != tt.expected {
				t.Errorf("Expected total %d, got %d", tt.expected, total)
			}
		})
	}
}

func TestMaxScore(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected float64
		present  bool
	}{
		{name: "float", data: `{"hits": {"max_score": 1.5}}`, expected: 1.5, present: true},
		{name: "integer", data: `{"hits": {"max_score": 2}}`, expected: 2, present: true},
		{name: "null", data: `{"hits": {"max_score": null}}`, present: false},
		{name: "missing", data: `{"hits": {}}`, present: false},
		{name: "no hits", data: `{}`, present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.data)
			score, ok := res.MaxScore()
			if ok != tt.present {
				t.Fatalf("Expected present=%v, got %v", tt.present, ok)
			}
			if score != tt.expected {
				t.Errorf("Expected max score %f, got %f", tt.expected, score)
			}
		})
	}
}

func TestAccessorsReadDocumentEachCall(t *testing.T) {
	res := mustParse(t, booksResponse)

	for i := 0; i < 2; i++ {
		total, ok := res.Total()
		if !ok || total != 3 {
			t.Errorf("Call %d: expected total 3, got %d (present=%v)", i, total, ok)
		}
		score, ok := res.MaxScore()
		if !ok || score != 1.5 {
			t.Errorf("Call %d: expected max score 1.5, got %f (present=%v)", i, score, ok)
		}
	}

	took, ok := res.Took()
	if !ok || took != 3 {
		t.Errorf("Expected took 3, got %d (present=%v)", took, ok)
	}
	if res.TimedOut() {
		t.Error("Expected timed_out to be false")
	}
}

func TestTimedOut(t *testing.T) {
	res := mustParse(t, `{"timed_out": true}`)
	if !res.TimedOut() {
		t.Error("Expected timed_out to be true")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
		present  bool
	}{
		{
			name:     "string error",
			data:     `{"error": "IndexMissingException[[books] missing]", "status": 404}`,
			expected: "IndexMissingException[[books] missing]",
			present:  true,
		},
		{
			name:     "object with type and reason",
			data:     `{"error": {"type": "index_not_found_exception", "reason": "no such index"}}`,
			expected: "index_not_found_exception: no such index",
			present:  true,
		},
		{
			name:     "object with reason only",
			data:     `{"error": {"reason": "no such index"}}`,
			expected: "no such index",
			present:  true,
		},
		{
			name:     "object without reason",
			data:     `{"error": { "code" : 7 }}`,
			expected: `{"code":7}`,
			present:  true,
		},
		{
			name:    "no error",
			data:    `{"hits": {}}`,
			present: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.data)
			msg, ok := res.ErrorMessage()
			if ok != tt.present {
				t.Fatalf("Expected present=%v, got %v", tt.present, ok)
			}
			if msg != tt.expected {
				t.Errorf("Expected message '%s', got '%s'", tt.expected, msg)
			}
		})
	}
}

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		code     int
		expected bool
	}{
		{name: "unknown code without error", data: `{"hits": {}}`, expected: true},
		{name: "ok code", data: `{"hits": {}}`, code: 200, expected: true},
		{name: "created code", data: `{}`, code: 201, expected: true},
		{name: "not found code", data: `{}`, code: 404, expected: false},
		{name: "error field", data: `{"error": "boom"}`, code: 200, expected: false},
		{name: "null error field", data: `{"error": null}`, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.data, WithResponseCode(tt.code))
			if res.ResponseCode() != tt.code {
				t.Errorf("Expected response code %d, got %d", tt.code, res.ResponseCode())
			}
			if res.Succeeded() != tt.expected {
				t.Errorf("Expected succeeded=%v, got %v", tt.expected, res.Succeeded())
			}
		})
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeInvalidDocument, "invalid document"},
		{ErrCodeInvalidOption, "invalid option"},
		{ErrCodeMalformedPath, "malformed path"},
		{ErrCodeDecode, "decode failure"},
		{ErrCodeFacetConstruction, "facet construction failure"},
		{ErrorCode(1), "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if tt.code.String() != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.code.String())
			}
		})
	}
}
