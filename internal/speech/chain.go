package speech

import (
	"github.com/nadzzz/speakgenie/internal/voice"
)

// Fallback tiers.
const (
	TierPrimary    = "primary"
	TierSubstitute = "substitute"
	TierLastResort = "last_resort"
)

const defaultFallbackLocale = "en-US"

// Candidate is one (voice, locale) pair of a fallback chain.
type Candidate struct {
	Voice  *voice.Voice
	Locale string
	Tier   string
}

func (c Candidate) same(o Candidate) bool {
	if c.Locale != o.Locale {
		return false
	}
	if c.Voice == nil || o.Voice == nil {
		return c.Voice == nil && o.Voice == nil
	}
	return c.Voice.ID == o.Voice.ID
}

// BuildChain computes the ordered candidates for speaking in locale. The
// chain holds at most three entries: the resolved voice, the named
// substitute for fallback-prone locales, and the universal last resort.
//
// When the resolved voice does not speak the locale's language and a
// substitute voice exists, the substitute replaces the primary candidate:
// it leads the chain under its own locale tag and neither the resolved voice
// nor the raw locale is attempted.
func BuildChain(cat *voice.Catalog, locale string) []Candidate {
	policy := cat.Policy()

	var sub *Candidate
	if lang, ok := policy.Substitute(locale); ok {
		if v, ok := cat.FirstWithPrefix(lang); ok {
			sub = &Candidate{Voice: &v, Locale: v.Locale, Tier: TierSubstitute}
		}
	}

	var chain []Candidate
	add := func(c Candidate) {
		for _, existing := range chain {
			if existing.same(c) {
				return
			}
		}
		chain = append(chain, c)
	}

	m, found := cat.Match(locale)
	switch {
	case sub != nil && (!found || !m.Native()):
		add(*sub)
	case found:
		add(Candidate{Voice: &m.Voice, Locale: locale, Tier: TierPrimary})
		if sub != nil && m.Voice.Locale != locale {
			add(*sub)
		}
	default:
		add(Candidate{Locale: locale, Tier: TierPrimary})
	}

	fallback := policy.FallbackLocale
	if fallback == "" {
		fallback = defaultFallbackLocale
	}
	last := Candidate{Locale: fallback, Tier: TierLastResort}
	if v, ok := cat.Resolve(fallback); ok {
		last.Voice = &v
	}
	add(last)

	return chain
}
