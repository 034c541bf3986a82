package vpath

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []string{"/", "a", "a/b/c", "a/../b", "./a/./b", "a/b/../../c"}
	for _, c := range cases {
		p := New(c)
		p2 := New(p.String())
		if !p.Equal(p2) {
			t.Fatalf("round trip failed for %q: %q != %q", c, p.String(), p2.String())
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	p := New("a/b/../c/./d")
	if !p.Normalize().Equal(p.Normalize().Normalize()) {
		t.Fatalf("normalize not idempotent")
	}
}

func TestDotDotNeverEscapesRoot(t *testing.T) {
	p := New("../../etc/passwd")
	if p.String() != "etc/passwd" {
		t.Fatalf("expected escape to be clamped, got %q", p.String())
	}
}

func TestJoinParentFileName(t *testing.T) {
	p := New("src").Join("main.go")
	if p.String() != "src/main.go" {
		t.Fatalf("join: got %q", p.String())
	}
	if p.FileName() != "main.go" {
		t.Fatalf("file name: got %q", p.FileName())
	}
	if p.Extension() != ".go" {
		t.Fatalf("extension: got %q", p.Extension())
	}
	if p.Parent().String() != "src" {
		t.Fatalf("parent: got %q", p.Parent().String())
	}
}

func TestStartsWith(t *testing.T) {
	p := New("a/b/c")
	if !p.StartsWith(New("a/b")) {
		t.Fatalf("expected prefix match")
	}
	if p.StartsWith(New("a/x")) {
		t.Fatalf("unexpected prefix match")
	}
}

func TestRootDisplay(t *testing.T) {
	if Root.String() != "/" {
		t.Fatalf("expected root to display as /, got %q", Root.String())
	}
	if !New("").IsRoot() {
		t.Fatalf("expected empty string to parse to root")
	}
}

func TestDotfileHasNoExtension(t *testing.T) {
	p := New(".gitignore")
	if p.Extension() != "" {
		t.Fatalf("expected dotfile to have no extension, got %q", p.Extension())
	}
}
