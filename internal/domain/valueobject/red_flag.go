package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// FlagType – hard flags signal auto-reject intent, soft flags cap the grade
// ---------------------------------------------------------------------------

type FlagType struct {
	value string
}

const (
	flagTypeHard = "hard"
	flagTypeSoft = "soft"
)

var (
	FlagTypeHard = FlagType{value: flagTypeHard}
	FlagTypeSoft = FlagType{value: flagTypeSoft}
)

var validFlagTypes = map[string]FlagType{
	flagTypeHard: FlagTypeHard,
	flagTypeSoft: FlagTypeSoft,
}

// NewFlagType creates a FlagType from a raw string.
func NewFlagType(s string) (FlagType, error) {
	v, ok := validFlagTypes[s]
	if !ok {
		return FlagType{}, fmt.Errorf("invalid flag type: %q", s)
	}
	return v, nil
}

func (f FlagType) String() string            { return f.value }
func (f FlagType) IsZero() bool              { return f.value == "" }
func (f FlagType) Equal(other FlagType) bool { return f.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (f FlagType) MarshalText() ([]byte, error) { return []byte(f.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FlagType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*f = FlagType{}
		return nil
	}
	v, err := NewFlagType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ---------------------------------------------------------------------------
// Severity
// ---------------------------------------------------------------------------

type Severity struct {
	value string
}

const (
	severityLow      = "low"
	severityMedium   = "medium"
	severityHigh     = "high"
	severityCritical = "critical"
)

var (
	SeverityLow      = Severity{value: severityLow}
	SeverityMedium   = Severity{value: severityMedium}
	SeverityHigh     = Severity{value: severityHigh}
	SeverityCritical = Severity{value: severityCritical}
)

var validSeverities = map[string]Severity{
	severityLow:      SeverityLow,
	severityMedium:   SeverityMedium,
	severityHigh:     SeverityHigh,
	severityCritical: SeverityCritical,
}

// NewSeverity creates a Severity from a raw string.
func NewSeverity(s string) (Severity, error) {
	v, ok := validSeverities[s]
	if !ok {
		return Severity{}, fmt.Errorf("invalid severity: %q", s)
	}
	return v, nil
}

func (s Severity) String() string            { return s.value }
func (s Severity) IsZero() bool              { return s.value == "" }
func (s Severity) Equal(other Severity) bool { return s.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = Severity{}
		return nil
	}
	v, err := NewSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
