package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// FIType – kind of financial institution behind an existing loan
// ---------------------------------------------------------------------------

// FIType is ranked supplier < mfi < nbfi < bank < drutoloan.
type FIType struct {
	value string
}

const (
	fiTypeSupplier  = "supplier"
	fiTypeMFI       = "mfi"
	fiTypeNBFI      = "nbfi"
	fiTypeBank      = "bank"
	fiTypeDrutoloan = "drutoloan"
)

var (
	FITypeSupplier  = FIType{value: fiTypeSupplier}
	FITypeMFI       = FIType{value: fiTypeMFI}
	FITypeNBFI      = FIType{value: fiTypeNBFI}
	FITypeBank      = FIType{value: fiTypeBank}
	FITypeDrutoloan = FIType{value: fiTypeDrutoloan}
)

var validFITypes = map[string]FIType{
	fiTypeSupplier:  FITypeSupplier,
	fiTypeMFI:       FITypeMFI,
	fiTypeNBFI:      FITypeNBFI,
	fiTypeBank:      FITypeBank,
	fiTypeDrutoloan: FITypeDrutoloan,
}

// NewFIType creates an FIType from a raw string.
func NewFIType(s string) (FIType, error) {
	v, ok := validFITypes[s]
	if !ok {
		return FIType{}, fmt.Errorf("invalid fi type: %q", s)
	}
	return v, nil
}

// Rank orders institution types by seniority, 1 (supplier) to 5
// (drutoloan). The zero value ranks 0.
func (f FIType) Rank() int {
	switch f.value {
	case fiTypeSupplier:
		return 1
	case fiTypeMFI:
		return 2
	case fiTypeNBFI:
		return 3
	case fiTypeBank:
		return 4
	case fiTypeDrutoloan:
		return 5
	default:
		return 0
	}
}

func (f FIType) String() string          { return f.value }
func (f FIType) IsZero() bool            { return f.value == "" }
func (f FIType) Equal(other FIType) bool { return f.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (f FIType) MarshalText() ([]byte, error) { return []byte(f.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FIType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*f = FIType{}
		return nil
	}
	v, err := NewFIType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ---------------------------------------------------------------------------
// RepaymentStatus
// ---------------------------------------------------------------------------

type RepaymentStatus struct {
	value string
}

const (
	repaymentOnTime    = "on_time"
	repaymentOverdue3d = "overdue_3_days"
	repaymentOverdue7d = "overdue_7_days"
	repaymentDefault   = "default"
)

var (
	RepaymentOnTime    = RepaymentStatus{value: repaymentOnTime}
	RepaymentOverdue3d = RepaymentStatus{value: repaymentOverdue3d}
	RepaymentOverdue7d = RepaymentStatus{value: repaymentOverdue7d}
	RepaymentDefault   = RepaymentStatus{value: repaymentDefault}
)

var validRepaymentStatuses = map[string]RepaymentStatus{
	repaymentOnTime:    RepaymentOnTime,
	repaymentOverdue3d: RepaymentOverdue3d,
	repaymentOverdue7d: RepaymentOverdue7d,
	repaymentDefault:   RepaymentDefault,
}

// NewRepaymentStatus creates a RepaymentStatus from a raw string.
func NewRepaymentStatus(s string) (RepaymentStatus, error) {
	v, ok := validRepaymentStatuses[s]
	if !ok {
		return RepaymentStatus{}, fmt.Errorf("invalid repayment status: %q", s)
	}
	return v, nil
}

// Severity orders statuses from best (0, on time) to worst (3, default).
// The zero value is treated as worst.
func (r RepaymentStatus) Severity() int {
	switch r.value {
	case repaymentOnTime:
		return 0
	case repaymentOverdue3d:
		return 1
	case repaymentOverdue7d:
		return 2
	default:
		return 3
	}
}

// IsDefault reports whether the loan is non-performing.
func (r RepaymentStatus) IsDefault() bool { return r.value == repaymentDefault }

func (r RepaymentStatus) String() string                   { return r.value }
func (r RepaymentStatus) IsZero() bool                     { return r.value == "" }
func (r RepaymentStatus) Equal(other RepaymentStatus) bool { return r.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (r RepaymentStatus) MarshalText() ([]byte, error) { return []byte(r.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RepaymentStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = RepaymentStatus{}
		return nil
	}
	v, err := NewRepaymentStatus(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
