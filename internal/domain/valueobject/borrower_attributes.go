package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// ResidencyStatus
// ---------------------------------------------------------------------------

type ResidencyStatus struct {
	value string
}

const (
	residencyPermanent = "permanent"
	residencyTemporary = "temporary"
)

var (
	ResidencyPermanent = ResidencyStatus{value: residencyPermanent}
	ResidencyTemporary = ResidencyStatus{value: residencyTemporary}
)

var validResidencyStatuses = map[string]ResidencyStatus{
	residencyPermanent: ResidencyPermanent,
	residencyTemporary: ResidencyTemporary,
}

// NewResidencyStatus creates a ResidencyStatus from a raw string.
func NewResidencyStatus(s string) (ResidencyStatus, error) {
	v, ok := validResidencyStatuses[s]
	if !ok {
		return ResidencyStatus{}, fmt.Errorf("invalid residency status: %q", s)
	}
	return v, nil
}

func (r ResidencyStatus) IsPermanent() bool { return r.value == residencyPermanent }

func (r ResidencyStatus) String() string                   { return r.value }
func (r ResidencyStatus) IsZero() bool                     { return r.value == "" }
func (r ResidencyStatus) Equal(other ResidencyStatus) bool { return r.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (r ResidencyStatus) MarshalText() ([]byte, error) { return []byte(r.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ResidencyStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = ResidencyStatus{}
		return nil
	}
	v, err := NewResidencyStatus(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ---------------------------------------------------------------------------
// GuarantorCategory
// ---------------------------------------------------------------------------

type GuarantorCategory struct {
	value string
}

const (
	guarantorStrong = "strong"
	guarantorMedium = "medium"
	guarantorWeak   = "weak"
)

var (
	GuarantorStrong = GuarantorCategory{value: guarantorStrong}
	GuarantorMedium = GuarantorCategory{value: guarantorMedium}
	GuarantorWeak   = GuarantorCategory{value: guarantorWeak}
)

var validGuarantorCategories = map[string]GuarantorCategory{
	guarantorStrong: GuarantorStrong,
	guarantorMedium: GuarantorMedium,
	guarantorWeak:   GuarantorWeak,
}

// NewGuarantorCategory creates a GuarantorCategory from a raw string.
func NewGuarantorCategory(s string) (GuarantorCategory, error) {
	v, ok := validGuarantorCategories[s]
	if !ok {
		return GuarantorCategory{}, fmt.Errorf("invalid guarantor category: %q", s)
	}
	return v, nil
}

func (g GuarantorCategory) String() string                     { return g.value }
func (g GuarantorCategory) IsZero() bool                       { return g.value == "" }
func (g GuarantorCategory) Equal(other GuarantorCategory) bool { return g.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (g GuarantorCategory) MarshalText() ([]byte, error) { return []byte(g.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GuarantorCategory) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*g = GuarantorCategory{}
		return nil
	}
	v, err := NewGuarantorCategory(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ---------------------------------------------------------------------------
// SellerType
// ---------------------------------------------------------------------------

type SellerType struct {
	value string
}

const (
	sellerWholesaler = "wholesaler"
	sellerRetailer   = "retailer"
)

var (
	SellerWholesaler = SellerType{value: sellerWholesaler}
	SellerRetailer   = SellerType{value: sellerRetailer}
)

var validSellerTypes = map[string]SellerType{
	sellerWholesaler: SellerWholesaler,
	sellerRetailer:   SellerRetailer,
}

// NewSellerType creates a SellerType from a raw string.
func NewSellerType(s string) (SellerType, error) {
	v, ok := validSellerTypes[s]
	if !ok {
		return SellerType{}, fmt.Errorf("invalid seller type: %q", s)
	}
	return v, nil
}

func (s SellerType) IsWholesaler() bool { return s.value == sellerWholesaler }

func (s SellerType) String() string              { return s.value }
func (s SellerType) IsZero() bool                { return s.value == "" }
func (s SellerType) Equal(other SellerType) bool { return s.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (s SellerType) MarshalText() ([]byte, error) { return []byte(s.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SellerType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = SellerType{}
		return nil
	}
	v, err := NewSellerType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
