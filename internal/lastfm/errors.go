package lastfm

import "fmt"

// APIError is an error response returned by the last.fm API itself.
type APIError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("last.fm API error %d: %s", e.Code, e.Message)
}

// StructureError reports a response that decoded as JSON but violated an
// invariant of the documented response shape.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "unexpected last.fm response structure: " + e.Reason
}

func structureErrorf(format string, args ...any) error {
	return &StructureError{Reason: fmt.Sprintf(format, args...)}
}
