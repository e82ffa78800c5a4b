// Package language holds the practice languages a learner can pick.
package language

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Language is one practice language.
type Language struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NativeName  string `json:"nativeName"`
	Locale      string `json:"locale"`
	Description string `json:"description"`
}

// Builtin lists the languages offered out of the box. English comes first
// and is the default.
var Builtin = []Language{
	{ID: "en", Name: "English", NativeName: "English", Locale: "en-US", Description: "Practice English conversations"},
	{ID: "hi", Name: "Hindi", NativeName: "हिंदी", Locale: "hi-IN", Description: "हिंदी में बातचीत का अभ्यास करें"},
	{ID: "mr", Name: "Marathi", NativeName: "मराठी", Locale: "mr-IN", Description: "मराठीत संवाद सराव करा"},
	{ID: "gu", Name: "Gujarati", NativeName: "ગુજરાતી", Locale: "gu-IN", Description: "ગુજરાતીમાં વાતચીતનો અભ્યાસ કરો"},
	{ID: "ta", Name: "Tamil", NativeName: "தமிழ்", Locale: "ta-IN", Description: "தமிழில் உரையாடல் பயிற்சி செய்யுங்கள்"},
	{ID: "te", Name: "Telugu", NativeName: "తెలుగు", Locale: "te-IN", Description: "తెలుగులో సంభాషణ అభ్యాసం చేయండి"},
	{ID: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ", Locale: "kn-IN", Description: "ಕನ್ನಡದಲ್ಲಿ ಸಂಭಾಷಣೆ ಅಭ್ಯಾಸ ಮಾಡಿ"},
	{ID: "ml", Name: "Malayalam", NativeName: "മലയാളം", Locale: "ml-IN", Description: "മലയാളത്തിൽ സംവാദം പരിശീലിക്കുക"},
	{ID: "bn", Name: "Bengali", NativeName: "বাংলা", Locale: "bn-IN", Description: "বাংলায় কথোপকথন অনুশীলন করুন"},
	{ID: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ", Locale: "pa-IN", Description: "ਪੰਜਾਬੀ ਵਿੱਚ ਗੱਲਬਾਤ ਦਾ ਅਭਿਆਸ ਕਰੋ"},
}

// Catalog is an immutable list of languages.
type Catalog struct {
	langs   []Language
	matcher language.Matcher
}

// New validates langs and builds a catalog. Locales are canonicalized, so
// "hi_in" is stored as "hi-IN". The first language is the default.
func New(langs []Language) (*Catalog, error) {
	if len(langs) == 0 {
		return nil, fmt.Errorf("language catalog is empty")
	}

	out := make([]Language, 0, len(langs))
	tags := make([]language.Tag, 0, len(langs))
	seen := map[string]bool{}
	for _, l := range langs {
		if l.ID == "" {
			return nil, fmt.Errorf("language %q has no id", l.Name)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("duplicate language id %q", l.ID)
		}
		seen[l.ID] = true

		tag, err := language.Parse(strings.ReplaceAll(l.Locale, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("language %q: invalid locale %q: %w", l.ID, l.Locale, err)
		}
		l.Locale = tag.String()
		out = append(out, l)
		tags = append(tags, tag)
	}
	return &Catalog{langs: out, matcher: language.NewMatcher(tags)}, nil
}

// Default returns the builtin catalog.
func Default() *Catalog {
	c, err := New(Builtin)
	if err != nil {
		panic(err)
	}
	return c
}

// Merge returns Builtin with overrides applied. An override replaces the
// builtin entry with the same ID; unknown IDs are appended.
func Merge(overrides []Language) []Language {
	out := slices.Clone(Builtin)
	for _, o := range overrides {
		if i := slices.IndexFunc(out, func(l Language) bool { return l.ID == o.ID }); i >= 0 {
			out[i] = o
		} else {
			out = append(out, o)
		}
	}
	return out
}

// All returns every language in catalog order.
func (c *Catalog) All() []Language { return slices.Clone(c.langs) }

// Default returns the first language.
func (c *Catalog) Default() Language { return c.langs[0] }

// ByID looks a language up by its short id.
func (c *Catalog) ByID(id string) (Language, bool) {
	i := slices.IndexFunc(c.langs, func(l Language) bool { return l.ID == id })
	if i < 0 {
		return Language{}, false
	}
	return c.langs[i], true
}

// ByLocale looks a language up by its exact locale tag.
func (c *Catalog) ByLocale(locale string) (Language, bool) {
	i := slices.IndexFunc(c.langs, func(l Language) bool { return l.Locale == locale })
	if i < 0 {
		return Language{}, false
	}
	return c.langs[i], true
}

// Lookup resolves an id, a locale, or any tag close enough to one of the
// catalog's locales ("hi", "hi_IN", "pa-Guru-IN"). Unrelated tags yield the
// default language and false.
func (c *Catalog) Lookup(s string) (Language, bool) {
	if l, ok := c.ByID(s); ok {
		return l, true
	}
	if l, ok := c.ByLocale(s); ok {
		return l, true
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return c.Default(), false
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.Default(), false
	}
	return c.langs[idx], true
}
