package theme

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("campus"); got.Name != "campus" {
		t.Errorf("ByName(campus) = %s", got.Name)
	}
	if got := ByName("nope"); got.Name != FlexokiDark.Name {
		t.Errorf("ByName(nope) = %s, want %s", got.Name, FlexokiDark.Name)
	}
}

func TestForProfile(t *testing.T) {
	tests := []struct {
		profile termenv.Profile
		want    string
	}{
		{termenv.TrueColor, "campus"},
		{termenv.ANSI256, "campus"},
		{termenv.ANSI, "terminal"},
		{termenv.Ascii, "terminal"},
	}
	for _, tt := range tests {
		if got := ForProfile("campus", tt.profile).Name; got != tt.want {
			t.Errorf("ForProfile(campus, %v) = %s, want %s", tt.profile, got, tt.want)
		}
	}
}

func TestBarColorAlternates(t *testing.T) {
	th := FlexokiDark
	if th.BarColor(-1) != th.Brand {
		t.Error("overall bar should use the brand color")
	}
	if th.BarColor(0) != th.BarOdd || th.BarColor(1) != th.BarEven || th.BarColor(2) != th.BarOdd {
		t.Error("department bars should alternate")
	}
}
