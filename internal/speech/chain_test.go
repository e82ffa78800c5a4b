package speech

import (
	"testing"

	"github.com/nadzzz/speakgenie/internal/voice"
)

type wantCandidate struct {
	voiceID string
	locale  string
	tier    string
}

func TestBuildChain(t *testing.T) {
	mrIN := voice.Voice{ID: "mr_IN-native", Locale: "mr-IN"}
	mrXX := voice.Voice{ID: "mr_XX-regional", Locale: "mr-XX"}

	tests := []struct {
		name   string
		voices []voice.Voice
		locale string
		want   []wantCandidate
	}{
		{
			name:   "native voice",
			voices: []voice.Voice{enUS, hiIN},
			locale: "hi-IN",
			want: []wantCandidate{
				{hiIN.ID, "hi-IN", TierPrimary},
				{enUS.ID, "en-US", TierLastResort},
			},
		},
		{
			name:   "substitute replaces non-native primary",
			voices: []voice.Voice{enUS, hiIN},
			locale: "mr-IN",
			want: []wantCandidate{
				{hiIN.ID, "hi-IN", TierSubstitute},
				{enUS.ID, "en-US", TierLastResort},
			},
		},
		{
			name:   "native marathi keeps substitute as backup",
			voices: []voice.Voice{mrXX, hiIN, enUS},
			locale: "mr-IN",
			want: []wantCandidate{
				{mrXX.ID, "mr-IN", TierPrimary},
				{hiIN.ID, "hi-IN", TierSubstitute},
				{enUS.ID, "en-US", TierLastResort},
			},
		},
		{
			name:   "exact marathi needs no substitute",
			voices: []voice.Voice{mrIN, hiIN, enUS},
			locale: "mr-IN",
			want: []wantCandidate{
				{mrIN.ID, "mr-IN", TierPrimary},
				{enUS.ID, "en-US", TierLastResort},
			},
		},
		{
			name:   "english request dedupes last resort",
			voices: []voice.Voice{enUS},
			locale: "en-US",
			want: []wantCandidate{
				{enUS.ID, "en-US", TierPrimary},
			},
		},
		{
			name:   "no substitute configured",
			voices: []voice.Voice{enUS, hiIN},
			locale: "ta-IN",
			want: []wantCandidate{
				{hiIN.ID, "ta-IN", TierPrimary},
				{enUS.ID, "en-US", TierLastResort},
			},
		},
		{
			name:   "empty catalog",
			locale: "gu-IN",
			want: []wantCandidate{
				{"", "gu-IN", TierPrimary},
				{"", "en-US", TierLastResort},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := BuildChain(newCatalog(t, tt.voices...), tt.locale)
			if len(chain) != len(tt.want) {
				t.Fatalf("chain = %+v, want %d candidates", chain, len(tt.want))
			}
			for i, w := range tt.want {
				got := chain[i]
				if voiceID(got.Voice) != w.voiceID || got.Locale != w.locale || got.Tier != w.tier {
					t.Errorf("candidate %d = {%s %s %s}, want %+v",
						i, voiceID(got.Voice), got.Locale, got.Tier, w)
				}
			}
		})
	}
}

func TestParamsClamp(t *testing.T) {
	tests := []struct {
		in, want Params
	}{
		{Params{Rate: -5, Pitch: 99, Volume: 3}, Params{Rate: 0.1, Pitch: 2, Volume: 1}},
		{Params{Rate: 1, Pitch: 1.1, Volume: 0.5}, Params{Rate: 1, Pitch: 1.1, Volume: 0.5}},
		{Params{Rate: 20, Pitch: -1, Volume: -1}, Params{Rate: 10, Pitch: 0, Volume: 0}},
		{Params{}, Params{Rate: 0.1, Pitch: 0, Volume: 0}},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(); got != tt.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
