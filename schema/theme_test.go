package schema

import "testing"

func TestNormalizeThemeName(t *testing.T) {
	tests := []struct {
		in   string
		want ThemeName
		ok   bool
	}{
		{in: "outrun", want: "outrun", ok: true},
		{in: " Tokyo ", want: "tokyo-midnight", ok: true},
		{in: "tokyo_midnight", want: "tokyo-midnight", ok: true},
		{in: "GRUVBOX", want: "gruvbox", ok: true},
		{in: "solarized", ok: false},
	}
	for _, tc := range tests {
		got, ok := NormalizeThemeName(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("NormalizeThemeName(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLineModeString(t *testing.T) {
	if LineModeInsert.String() != "insert" {
		t.Fatalf("unexpected insert name %q", LineModeInsert.String())
	}
	if LineModeNormal.String() != "normal" {
		t.Fatalf("unexpected normal name %q", LineModeNormal.String())
	}
}
