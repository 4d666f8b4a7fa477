package forge

import (
	"path/filepath"
	"testing"
)

func TestRootsRelativePath(t *testing.T) {
	var r Roots
	r.SetRoots("/in", "/out")

	rel, err := r.RelativePath(filepath.Join("/in", "a", "b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if rel != filepath.Join("a", "b.txt") {
		t.Fatalf("want a/b.txt, got %s", rel)
	}

	rel, err = r.RelativePath(filepath.Join("/out", "c.png"))
	if err != nil {
		t.Fatal(err)
	}
	if rel != "c.png" {
		t.Fatalf("want c.png, got %s", rel)
	}

	if _, err := r.RelativePath("/elsewhere/d.txt"); err == nil {
		t.Fatal("want an error for a path outside both roots")
	}
}
