package scheduler

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Response represents the user's graded recall of an entry's expected move.
type Response int

const (
	Forgot  Response = iota + 1 // No recall of the move.
	Partial                     // Recognized the idea but not the exact move.
	Effort                      // Correct move, recalled with effort.
	Easy                        // Correct move, recalled instantly.
)

var (
	responseNames  = [...]string{Forgot: "forgot", Partial: "partial", Effort: "effort", Easy: "easy"}
	responseByName = map[string]Response{
		"forgot":  Forgot,
		"partial": Partial,
		"effort":  Effort,
		"easy":    Easy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Response(0)
	_ encoding.TextMarshaler   = Response(0)
	_ encoding.TextUnmarshaler = (*Response)(nil)
)

// IsValid reports whether r is one of the four recognized responses.
func (r Response) IsValid() bool {
	return r >= Forgot && r <= Easy
}

// String returns the name of the response ("forgot", "partial", "effort", "easy").
// For invalid values it returns "Response(n)".
func (r Response) String() string {
	if r.IsValid() {
		return responseNames[r]
	}
	return fmt.Sprintf("Response(%d)", int(r))
}

// ParseResponse converts the API representation to a Response.
func ParseResponse(s string) (Response, error) {
	r, ok := responseByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResponse, s)
	}
	return r, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Response) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResponse, int(r))
	}
	return []byte(responseNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Response) UnmarshalText(text []byte) error {
	v, err := ParseResponse(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Response serializes as a JSON string.
func (r Response) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (r *Response) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, data)
	}
	return r.UnmarshalText([]byte(s))
}
