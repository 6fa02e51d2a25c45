package keys_test

import (
	"testing"

	"rowsweep/internal/keys"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc123", "ABC123"},
		{"  Abc123  ", "ABC123"},
		{"", ""},
		{"   ", ""},
		{"\tk-9\n", "K-9"},
		{"straße", "STRASSE"},
	}
	for _, tc := range cases {
		if got := keys.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFoldTypeFamily(t *testing.T) {
	want := "reloapp"
	for _, in := range []string{"Relo App", "relo-app", "Relo. App", "RELO  APP", "relo_app"} {
		if got := keys.FoldType(in); got != want {
			t.Fatalf("FoldType(%q) = %q, want %q", in, got, want)
		}
	}
	if got := keys.FoldType("Standard"); got == want {
		t.Fatalf("unrelated type folded to %q", got)
	}
}

func TestEqual(t *testing.T) {
	if !keys.Equal(" abc ", "ABC") {
		t.Fatal("expected keys to compare equal")
	}
	if keys.Equal("abc", "abd") {
		t.Fatal("expected keys to differ")
	}
}
