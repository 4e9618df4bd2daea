package model

import "testing"

func TestDeriveSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Neksa Launch Party", "neksa-launch-party"},
		{"Hello, World!", "hello-world"},
		{"Q3 All-Hands 2026", "q3-all-hands-2026"},
		{"Café & Croissants", "caf--croissants"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range tests {
		if got := DeriveSlug(tc.name); got != tc.want {
			t.Errorf("DeriveSlug(%q): expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDeriveSlugIsPure(t *testing.T) {
	t.Parallel()

	name := "Neksa Launch Party"
	if DeriveSlug(name) != DeriveSlug(name) {
		t.Fatalf("expected identical slugs for identical names")
	}
}
