package ast

import "testing"

func TestReplaceCMacrosPreservesLength(t *testing.T) {
	macros := map[string]bool{"MAX_SIZE": true, "MIN_SIZE": true}
	code := []byte("int size = MAX_SIZE + MIN_SIZE;")
	out, changed := ReplaceCMacros(code, macros)
	if !changed {
		t.Fatal("expected a replacement")
	}
	if len(out) != len(code) {
		t.Fatalf("length changed: %d != %d", len(out), len(code))
	}
	want := "int size = $$$$$$$$ + $$$$$$$$;"
	if string(out) != want {
		t.Fatalf("got %q want %q", string(out), want)
	}
}

func TestReplaceCMacrosNoMatchReturnsUnchanged(t *testing.T) {
	code := []byte("int main() { return 0; }")
	out, changed := ReplaceCMacros(code, map[string]bool{})
	if changed {
		t.Fatal("expected no replacement")
	}
	if string(out) != string(code) {
		t.Fatal("unchanged code must be byte-identical")
	}
}

func TestReplaceCMacrosMatchesPredefined(t *testing.T) {
	code := []byte("int32_t x = INT32_MAX;")
	out, changed := ReplaceCMacros(code, map[string]bool{})
	if !changed {
		t.Fatal("expected predefined macro INT32_MAX to be replaced")
	}
	if len(out) != len(code) {
		t.Fatal("length must be preserved")
	}
}

func TestReplaceCMacrosAtEndOfBuffer(t *testing.T) {
	code := []byte("x = MAX")
	out, changed := ReplaceCMacros(code, map[string]bool{"MAX": true})
	if !changed {
		t.Fatal("expected replacement of trailing identifier")
	}
	if string(out) != "x = $$$" {
		t.Fatalf("got %q", string(out))
	}
}
