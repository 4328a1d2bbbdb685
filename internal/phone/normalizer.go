package phone

import "strings"

// Normalizer converts heterogeneous local phone representations into the
// canonical international-dialing digit string the provider adapters expect.
// Implementations are per numbering plan, so other plans can be added
// without touching callers.
type Normalizer interface {
	Normalize(raw string) string
}

// DialingPlan normalizes for a single country's numbering plan. The policy
// is heuristic and intentionally lenient: unrecognized lengths pass through
// unchanged and the provider gets to reject them.
type DialingPlan struct {
	CountryPrefix    string
	TrunkPrefix      string
	NationalLength   int
	SubscriberLength int
}

// DefaultPlan covers a 10-digit national / 9-digit subscriber plan with a
// fixed 3-digit country prefix and "0" trunk prefix.
func DefaultPlan(countryPrefix string) DialingPlan {
	prefix := strings.TrimSpace(countryPrefix)
	if prefix == "" {
		prefix = "233"
	}
	return DialingPlan{
		CountryPrefix:    prefix,
		TrunkPrefix:      "0",
		NationalLength:   10,
		SubscriberLength: 9,
	}
}

// Normalize applies the plan's rules in order: strip non-digits, rewrite a
// trunk-prefixed national number, prepend the country prefix to a bare
// subscriber number, otherwise pass through. Output carries no "+".
func (p DialingPlan) Normalize(raw string) string {
	digits := stripNonDigits(raw)
	if digits == "" {
		return digits
	}

	if strings.HasPrefix(digits, p.TrunkPrefix) && len(digits) == p.NationalLength {
		return p.CountryPrefix + digits[len(p.TrunkPrefix):]
	}

	if !strings.HasPrefix(digits, p.CountryPrefix) && len(digits) == p.SubscriberLength {
		return p.CountryPrefix + digits
	}

	return digits
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
