package searchresult

import "github.com/cockroachdb/errors"

// ErrorCode represents specific error codes for result mapping operations.
type ErrorCode int

const (
	// ErrCodeInvalidDocument is returned when the response body is not a JSON object.
	ErrCodeInvalidDocument ErrorCode = iota + 2000

	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption

	// ErrCodeMalformedPath is returned when a path segment that must be an
	// object is missing or holds another JSON kind.
	ErrCodeMalformedPath

	// ErrCodeDecode is returned when a caller-supplied decoder or a
	// highlight/facet payload cannot be decoded.
	ErrCodeDecode

	// ErrCodeFacetConstruction is returned when a facet cannot be built.
	ErrCodeFacetConstruction
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidDocument:
		return "invalid document"
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeMalformedPath:
		return "malformed path"
	case ErrCodeDecode:
		return "decode failure"
	case ErrCodeFacetConstruction:
		return "facet construction failure"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Errors returned while mapping a search response.
var (
	// ErrInvalidDocument is returned when the response body is not a JSON object.
	ErrInvalidDocument = newErrorWithCode(ErrCodeInvalidDocument, "searchresult: invalid document")

	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "searchresult: invalid option")

	// ErrMalformedPath is returned when the document does not have the
	// expected search response shape.
	ErrMalformedPath = newErrorWithCode(ErrCodeMalformedPath, "searchresult: malformed path")

	// ErrDecode is returned when a payload cannot be decoded into its target shape.
	ErrDecode = newErrorWithCode(ErrCodeDecode, "searchresult: decode failure")

	// ErrFacetConstruction is returned when a facet cannot be constructed.
	ErrFacetConstruction = newErrorWithCode(ErrCodeFacetConstruction, "searchresult: facet construction failure")
)

// withDetail attaches a formatted detail to a sentinel so that errors.Is keeps
// matching the sentinel while %+v and errors.GetAllDetails show the cause.
func withDetail(sentinel error, format string, args ...interface{}) error {
	return attach(sentinel, errors.Newf(format, args...))
}

// wrapDetail is withDetail for an underlying cause.
func wrapDetail(sentinel, cause error, format string, args ...interface{}) error {
	return attach(sentinel, errors.Wrapf(cause, format, args...))
}

func attach(sentinel, detail error) error {
	return errors.WithDetail(errors.WithSecondaryError(sentinel, detail), detail.Error())
}
