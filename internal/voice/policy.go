package voice

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Rule names, in their default evaluation order.
const (
	RuleExact      = "exact"
	RulePrefix     = "prefix"
	RuleFamily     = "family"
	RuleSubstitute = "substitute"
	RuleUniversal  = "universal"
	RuleAny        = "any"
)

// DefaultOrder is the rule evaluation order used when Policy.Order is empty.
var DefaultOrder = []string{RuleExact, RulePrefix, RuleFamily, RuleSubstitute, RuleUniversal, RuleAny}

// Policy configures locale resolution. The zero value resolves exact and
// prefix matches, then falls back to the first voice.
type Policy struct {
	// Families groups related languages by primary subtag. A locale in a
	// family may be served by any voice of that family.
	Families map[string][]string

	// Substitutes maps a locale to the primary subtag of a linguistically
	// close language whose voice should stand in for it.
	Substitutes map[string]string

	// Universal is the primary subtag tried when nothing related exists.
	Universal string

	// FallbackLocale is the locale tag of the last-resort utterance.
	FallbackLocale string

	// Order lists rule names in evaluation order.
	Order []string
}

// DefaultPolicy returns the policy tuned for the built-in Indic locales.
func DefaultPolicy() Policy {
	return Policy{
		Families: map[string][]string{
			"indic": {"hi", "mr", "gu", "ta", "te", "kn", "ml", "bn", "pa"},
		},
		Substitutes: map[string]string{
			"mr-IN": "hi",
			"gu-IN": "hi",
		},
		Universal:      "en",
		FallbackLocale: "en-US",
		Order:          slices.Clone(DefaultOrder),
	}
}

// Validate checks that every rule named in Order exists.
func (p Policy) Validate() error {
	for _, name := range p.Order {
		if !slices.Contains(DefaultOrder, name) {
			return fmt.Errorf("unknown voice rule %q", name)
		}
	}
	return nil
}

// Substitute returns the stand-in language for locale, if one is configured.
func (p Policy) Substitute(locale string) (string, bool) {
	sub, ok := p.Substitutes[locale]
	return sub, ok && sub != ""
}

// family returns the members of the family containing lang.
func (p Policy) family(lang string) []string {
	for _, name := range slices.Sorted(maps.Keys(p.Families)) {
		if members := p.Families[name]; slices.Contains(members, lang) {
			return members
		}
	}
	return nil
}

// rule is a named selector evaluated against the cached voices.
type rule struct {
	name string
	pick func(locale string, voices []Voice) (Voice, bool)
}

func (p Policy) rules() []rule {
	all := map[string]rule{
		RuleExact: {RuleExact, func(locale string, voices []Voice) (Voice, bool) {
			return firstWhere(voices, func(v Voice) bool { return v.Locale == locale })
		}},
		RulePrefix: {RulePrefix, func(locale string, voices []Voice) (Voice, bool) {
			lang := PrimarySubtag(locale)
			if lang == "" {
				return Voice{}, false
			}
			return firstWhere(voices, func(v Voice) bool { return strings.HasPrefix(v.Locale, lang) })
		}},
		RuleFamily: {RuleFamily, func(locale string, voices []Voice) (Voice, bool) {
			members := p.family(PrimarySubtag(locale))
			if len(members) == 0 {
				return Voice{}, false
			}
			return firstWhere(voices, func(v Voice) bool {
				return slices.ContainsFunc(members, func(m string) bool { return strings.HasPrefix(v.Locale, m) })
			})
		}},
		RuleSubstitute: {RuleSubstitute, func(locale string, voices []Voice) (Voice, bool) {
			sub, ok := p.Substitute(locale)
			if !ok {
				return Voice{}, false
			}
			return firstWhere(voices, func(v Voice) bool { return strings.HasPrefix(v.Locale, sub) })
		}},
		RuleUniversal: {RuleUniversal, func(_ string, voices []Voice) (Voice, bool) {
			if p.Universal == "" {
				return Voice{}, false
			}
			return firstWhere(voices, func(v Voice) bool { return strings.HasPrefix(v.Locale, p.Universal) })
		}},
		RuleAny: {RuleAny, func(_ string, voices []Voice) (Voice, bool) {
			if len(voices) == 0 {
				return Voice{}, false
			}
			return voices[0], true
		}},
	}

	order := p.Order
	if len(order) == 0 {
		order = DefaultOrder
	}
	rules := make([]rule, 0, len(order)+1)
	for _, name := range order {
		if r, ok := all[name]; ok {
			rules = append(rules, r)
		}
	}
	// The first voice is always the last resort so a non-empty catalog
	// never resolves to nothing.
	if !slices.Contains(order, RuleAny) {
		rules = append(rules, all[RuleAny])
	}
	return rules
}
