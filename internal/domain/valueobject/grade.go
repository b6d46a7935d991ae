package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Grade – immutable value object
// ---------------------------------------------------------------------------

// Grade is the letter grade assigned to a scored application.
type Grade struct {
	value string
}

const (
	gradeA = "A"
	gradeB = "B"
	gradeC = "C"
	gradeR = "R"
)

var (
	GradeA = Grade{value: gradeA}
	GradeB = Grade{value: gradeB}
	GradeC = Grade{value: gradeC}
	GradeR = Grade{value: gradeR}
)

var validGrades = map[string]Grade{
	gradeA: GradeA,
	gradeB: GradeB,
	gradeC: GradeC,
	gradeR: GradeR,
}

// AllGrades lists every grade from best to worst.
func AllGrades() []Grade {
	return []Grade{GradeA, GradeB, GradeC, GradeR}
}

// NewGrade creates a Grade from a raw string.
func NewGrade(s string) (Grade, error) {
	v, ok := validGrades[s]
	if !ok {
		return Grade{}, fmt.Errorf("invalid grade: %q", s)
	}
	return v, nil
}

// SlabAdjustment returns the loan-slab label attached to the grade.
func (g Grade) SlabAdjustment() string {
	switch g.value {
	case gradeA:
		return "ONE SLAB UP"
	case gradeB:
		return "SAME SLAB"
	case gradeC:
		return "ONE SLAB DOWN"
	default:
		return "REJECTED"
	}
}

// LoanMultiplier scales the base loan ceiling for the grade.
// A=1.0, B=0.85, C=0.6, R=0.
func (g Grade) LoanMultiplier() decimal.Decimal {
	switch g.value {
	case gradeA:
		return decimal.NewFromInt(1)
	case gradeB:
		return decimal.RequireFromString("0.85")
	case gradeC:
		return decimal.RequireFromString("0.6")
	default:
		return decimal.Zero
	}
}

// IsApproved reports whether the grade is an approving grade (A, B or C).
func (g Grade) IsApproved() bool {
	return g.value == gradeA || g.value == gradeB || g.value == gradeC
}

// Upgrade returns the next better grade. A stays A and R stays R.
func (g Grade) Upgrade() Grade {
	switch g.value {
	case gradeB:
		return GradeA
	case gradeC:
		return GradeB
	default:
		return g
	}
}

// Downgrade returns the next worse grade. R stays R.
func (g Grade) Downgrade() Grade {
	switch g.value {
	case gradeA:
		return GradeB
	case gradeB:
		return GradeC
	case gradeC:
		return GradeR
	default:
		return g
	}
}

// String returns the string representation of the grade.
func (g Grade) String() string { return g.value }

// IsZero returns true if the grade has not been initialised.
func (g Grade) IsZero() bool { return g.value == "" }

// Equal returns true when both grades carry the same value.
func (g Grade) Equal(other Grade) bool { return g.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) { return []byte(g.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*g = Grade{}
		return nil
	}
	v, err := NewGrade(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ---------------------------------------------------------------------------
// Band – green/amber/red classification of a ratio
// ---------------------------------------------------------------------------

// Band classifies a ratio value against its cut points.
type Band struct {
	value string
}

const (
	bandGreen = "green"
	bandAmber = "amber"
	bandRed   = "red"
)

var (
	BandGreen = Band{value: bandGreen}
	BandAmber = Band{value: bandAmber}
	BandRed   = Band{value: bandRed}
)

var validBands = map[string]Band{
	bandGreen: BandGreen,
	bandAmber: BandAmber,
	bandRed:   BandRed,
}

// NewBand creates a Band from a raw string.
func NewBand(s string) (Band, error) {
	v, ok := validBands[s]
	if !ok {
		return Band{}, fmt.Errorf("invalid band: %q", s)
	}
	return v, nil
}

// String returns the string representation of the band.
func (b Band) String() string { return b.value }

// IsZero returns true if the band has not been initialised.
func (b Band) IsZero() bool { return b.value == "" }

// Equal returns true when both bands carry the same value.
func (b Band) Equal(other Band) bool { return b.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) { return []byte(b.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Band) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*b = Band{}
		return nil
	}
	v, err := NewBand(string(data))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
