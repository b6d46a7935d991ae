package valueobject

import "strings"

// ---------------------------------------------------------------------------
// BusinessCategory – risk category derived from a free-text business type
// ---------------------------------------------------------------------------

type BusinessCategory struct {
	value string
}

const (
	businessHigh    = "high"
	businessMedium  = "medium"
	businessLow     = "low"
	businessRedFlag = "red_flag"
)

var (
	BusinessHigh    = BusinessCategory{value: businessHigh}
	BusinessMedium  = BusinessCategory{value: businessMedium}
	BusinessLow     = BusinessCategory{value: businessLow}
	BusinessRedFlag = BusinessCategory{value: businessRedFlag}
)

var businessTypeCategories = map[string]BusinessCategory{
	"grocery_shop":  BusinessHigh,
	"cosmetics":     BusinessHigh,
	"medicine":      BusinessHigh,
	"clothing_shop": BusinessHigh,
	"wholesalers":   BusinessHigh,
	"bakery":        BusinessHigh,
	"restaurant":    BusinessHigh,
	"library":       BusinessHigh,
	"hardware":      BusinessHigh,
	"sanitary":      BusinessHigh,
	"garage":        BusinessHigh,
	"super_shop":    BusinessHigh,
	"mobile_shop":   BusinessHigh,
	"accessories":   BusinessHigh,
	"servicing":     BusinessHigh,

	"tea_stall":     BusinessMedium,
	"motor_parts":   BusinessMedium,
	"sports_shop":   BusinessMedium,
	"tailor":        BusinessMedium,
	"shoe_seller":   BusinessMedium,
	"plastic_items": BusinessMedium,

	"salon":          BusinessLow,
	"ladies_parlor":  BusinessLow,
	"poultry_shop":   BusinessLow,
	"vegetable_shop": BusinessLow,

	"wood_shop":             BusinessRedFlag,
	"sub_contract_factory":  BusinessRedFlag,
	"gold_ornaments_seller": BusinessRedFlag,
}

// ClassifyBusinessType normalizes a business type (lowercase, spaces to
// underscores) and looks up its risk category. The second return value is
// false for unclassified types.
func ClassifyBusinessType(businessType string) (BusinessCategory, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(businessType)), " ", "_")
	c, ok := businessTypeCategories[key]
	return c, ok
}

// Points returns the category score: high 3, medium 2, low 1, red_flag 0.
func (c BusinessCategory) Points() int {
	switch c.value {
	case businessHigh:
		return 3
	case businessMedium:
		return 2
	case businessLow:
		return 1
	default:
		return 0
	}
}

func (c BusinessCategory) String() string                    { return c.value }
func (c BusinessCategory) IsZero() bool                      { return c.value == "" }
func (c BusinessCategory) Equal(other BusinessCategory) bool { return c.value == other.value }
