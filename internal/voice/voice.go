// Package voice maintains the set of synthesis voices a platform offers and
// resolves a requested locale to the single best voice.
//
// The voice list is process-wide state with an explicit lifecycle: it is
// filled once at startup, replaced wholesale whenever the platform reports a
// change, and read-only in between. All reads go through [Catalog].
package voice

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Voice is one synthesis voice as enumerated by the platform.
type Voice struct {
	// ID is the platform identifier used to select the voice (e.g. a Piper model name).
	ID string `json:"id"`

	// Name is a human-readable display name.
	Name string `json:"name"`

	// Locale is the voice's language tag (e.g. "hi-IN").
	Locale string `json:"locale"`

	// Default marks the platform's default voice.
	Default bool `json:"default"`
}

// Source enumerates the voices a platform currently offers.
type Source interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Voice, error)

// Voices calls f.
func (f SourceFunc) Voices(ctx context.Context) ([]Voice, error) { return f(ctx) }

// Catalog caches the platform voices and resolves locales against them.
// It is safe for concurrent use.
type Catalog struct {
	source Source
	policy Policy
	rules  []rule

	mu     sync.RWMutex
	voices []Voice

	onChange func(n int)
}

// NewCatalog creates an empty catalog backed by source. Call Refresh to
// populate it.
func NewCatalog(source Source, policy Policy) *Catalog {
	return &Catalog{
		source: source,
		policy: policy,
		rules:  policy.rules(),
	}
}

// OnChange registers a hook invoked with the new voice count after every
// refresh that changed the cached set.
func (c *Catalog) OnChange(fn func(n int)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Policy returns the resolution policy the catalog was built with.
func (c *Catalog) Policy() Policy { return c.policy }

// Refresh replaces the cached voices with whatever the source reports now.
// An empty list is a valid result. A source error leaves the cache untouched.
// It reports whether the cached set changed.
func (c *Catalog) Refresh(ctx context.Context) bool {
	voices, err := c.source.Voices(ctx)
	if err != nil {
		slog.Warn("voice refresh failed, keeping cached voices", "error", err)
		return false
	}
	return c.Replace(voices)
}

// Replace swaps in a new voice set, e.g. from a platform change notification.
// It reports whether the set differs from the cached one.
func (c *Catalog) Replace(voices []Voice) bool {
	next := slices.Clone(voices)

	c.mu.Lock()
	changed := !slices.Equal(c.voices, next)
	if changed {
		c.voices = next
	}
	hook := c.onChange
	c.mu.Unlock()

	if changed {
		slog.Info("voice catalog updated", "voices", len(next))
		if hook != nil {
			hook(len(next))
		}
	}
	return changed
}

// Voices returns a snapshot of the cached voices.
func (c *Catalog) Voices() []Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.voices)
}

// Len returns the number of cached voices.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.voices)
}

// Match is the outcome of resolving a locale.
type Match struct {
	Voice Voice

	// Rule names the rule that selected the voice.
	Rule string
}

// Native reports whether the voice speaks the requested language itself
// rather than standing in for it.
func (m Match) Native() bool {
	return m.Rule == RuleExact || m.Rule == RulePrefix
}

// Resolve returns the best voice for locale, or false when the catalog is empty.
func (c *Catalog) Resolve(locale string) (Voice, bool) {
	m, ok := c.Match(locale)
	return m.Voice, ok
}

// Match is Resolve with the selecting rule attached.
func (c *Catalog) Match(locale string) (Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return match(c.rules, locale, c.voices)
}

// FirstWithPrefix returns the first cached voice whose tag starts with prefix.
func (c *Catalog) FirstWithPrefix(prefix string) (Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return firstWhere(c.voices, func(v Voice) bool { return strings.HasPrefix(v.Locale, prefix) })
}

func match(rules []rule, locale string, voices []Voice) (Match, bool) {
	if len(voices) == 0 {
		return Match{}, false
	}
	for _, r := range rules {
		if v, ok := r.pick(locale, voices); ok {
			return Match{Voice: v, Rule: r.name}, true
		}
	}
	return Match{}, false
}

func firstWhere(voices []Voice, pred func(Voice) bool) (Voice, bool) {
	for _, v := range voices {
		if pred(v) {
			return v, true
		}
	}
	return Voice{}, false
}

// PrimarySubtag returns the language part of a locale tag ("hi" for "hi-IN").
func PrimarySubtag(locale string) string {
	return strings.Split(locale, "-")[0]
}
