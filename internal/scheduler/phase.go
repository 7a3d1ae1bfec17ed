package scheduler

import (
	"encoding"
	"fmt"
)

// Phase is the scheduling regime currently governing an entry.
type Phase int

const (
	Learning    Phase = iota + 1 // New entry, stepping through fixed learning intervals.
	Exponential                  // Graduated, interval grows by the ease factor.
	Relearning                   // Forgotten after graduation, stepping back in.
)

var (
	phaseNames  = [...]string{Learning: "learning", Exponential: "exponential", Relearning: "relearning"}
	phaseByName = map[string]Phase{
		"learning":    Learning,
		"exponential": Exponential,
		"relearning":  Relearning,
	}
)

var (
	_ fmt.Stringer             = Phase(0)
	_ encoding.TextMarshaler   = Phase(0)
	_ encoding.TextUnmarshaler = (*Phase)(nil)
)

func (p Phase) isValid() bool {
	return p >= Learning && p <= Relearning
}

// String returns the name of the phase ("learning", "exponential", "relearning").
func (p Phase) String() string {
	if p.isValid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase converts the stored representation to a Phase.
func ParsePhase(s string) (Phase, error) {
	p, ok := phaseByName[s]
	if !ok {
		return 0, fmt.Errorf("invalid phase: %q", s)
	}
	return p, nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.isValid() {
		return nil, fmt.Errorf("invalid phase: %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	v, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
