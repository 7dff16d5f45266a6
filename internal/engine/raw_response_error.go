package engine

import "encoding/json"

// RawResponseError wraps an error with the raw response payload.
//
// Returned when the model produced content that failed to parse as structured
// data; callers still get the raw payload for debugging.
type RawResponseError struct {
	Err error
	Raw json.RawMessage
}

func (e *RawResponseError) Error() string {
	if e == nil || e.Err == nil {
		return "engine error"
	}
	return e.Err.Error()
}

func (e *RawResponseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
