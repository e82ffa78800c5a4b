package scenario

import (
	"slices"
	"testing"
)

func TestGet(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"school", "school"},
		{"restaurant", "restaurant"},
		{"", FreeChat},
		{"moon-base", FreeChat},
	}
	for _, tt := range tests {
		if got := Get(tt.id).ID; got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestEveryScenarioIsComplete(t *testing.T) {
	all := All()
	if len(all) != 6 || all[0].ID != FreeChat {
		t.Fatalf("All() = %d scenarios, first %q", len(all), all[0].ID)
	}
	for _, s := range all {
		if s.Prompt == "" || s.Welcome == "" || len(s.Fallbacks) == 0 {
			t.Errorf("scenario %q is missing prompt, welcome or fallbacks", s.ID)
		}
	}
}

func TestFallbackComesFromScenario(t *testing.T) {
	s := Get("airport")
	for range 20 {
		if got := s.Fallback(); !slices.Contains(s.Fallbacks, got) {
			t.Fatalf("Fallback() = %q, not an airport reply", got)
		}
	}
	if got := (Scenario{}).Fallback(); got == "" {
		t.Error("empty scenario should still yield a reply")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].ID = "changed"
	if Get(FreeChat).ID != FreeChat {
		t.Error("All exposed the builtin slice")
	}
}
