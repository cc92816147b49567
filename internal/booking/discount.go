package booking

import "strings"

// DiscountRule is either a flat amount off or a percentage of the
// discountable subtotal (base fare + extras). Exactly one of Flat and
// Percent is set.
type DiscountRule struct {
	Code    string
	Flat    int64 // minor units
	Percent int   // 0-100
}

// Amount computes the monetary discount for the given subtotal.
func (r DiscountRule) Amount(subtotal int64) int64 {
	if r.Percent > 0 {
		return subtotal * int64(r.Percent) / 100
	}
	return r.Flat
}

// DiscountRules is the set of known codes, keyed by normalized code.
type DiscountRules struct {
	rules map[string]DiscountRule
}

func NewDiscountRules(rules []DiscountRule) *DiscountRules {
	m := make(map[string]DiscountRule, len(rules))
	for _, r := range rules {
		m[NormalizeCode(r.Code)] = r
	}
	return &DiscountRules{rules: m}
}

// NormalizeCode trims surrounding whitespace and upper-cases the code so
// lookups and stored codes agree.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve validates a raw code and returns the matching rule plus its
// normalized form. Blank codes fail with ErrEmptyCode, unmatched codes
// with ErrUnknownCode.
func (d *DiscountRules) Resolve(code string) (DiscountRule, string, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return DiscountRule{}, "", ErrEmptyCode
	}
	rule, ok := d.rules[normalized]
	if !ok {
		return DiscountRule{}, "", ErrUnknownCode
	}
	return rule, normalized, nil
}

// DefaultDiscountRules are the built-in promotion codes used when no
// rule set is configured.
func DefaultDiscountRules() *DiscountRules {
	return NewDiscountRules([]DiscountRule{
		{Code: "WELCOME10", Percent: 10},
		{Code: "HOTPOINT20", Percent: 20},
		{Code: "RIDE5", Flat: 500},
	})
}
