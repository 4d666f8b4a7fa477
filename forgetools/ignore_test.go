package forgetools

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreExcludesMatchingFiles(t *testing.T) {
	inner := &CopyingTool{}
	ig := NewIgnore(inner, "forgeignore")

	input := t.TempDir()
	output := t.TempDir()
	inner.SetRoots(input, output)

	os.WriteFile(filepath.Join(input, "keep.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(input, "skip.log"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(input, ".forgeignore"), []byte("*.log\n"), 0o644)

	if err := ig.Start(input, output); err != nil {
		t.Fatal(err)
	}

	ok, err := ig.Match(filepath.Join(input, "keep.txt"))
	if err != nil || !ok {
		t.Fatalf("want keep.txt to match, got ok=%v err=%v", ok, err)
	}
	ok, err = ig.Match(filepath.Join(input, "skip.log"))
	if err != nil || ok {
		t.Fatalf("want skip.log to be excluded, got ok=%v err=%v", ok, err)
	}
}

func TestIgnoreAnchoredPattern(t *testing.T) {
	inner := &CopyingTool{}
	ig := NewIgnore(inner, "forgeignore")

	input := t.TempDir()
	output := t.TempDir()
	inner.SetRoots(input, output)

	os.MkdirAll(filepath.Join(input, "sub"), 0o755)
	os.WriteFile(filepath.Join(input, "build.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(input, "sub", "build.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(input, ".forgeignore"), []byte("/build.txt\n"), 0o644)

	if err := ig.Start(input, output); err != nil {
		t.Fatal(err)
	}

	ok, _ := ig.Match(filepath.Join(input, "build.txt"))
	if ok {
		t.Fatal("want anchored pattern to exclude top-level build.txt")
	}
	ok, _ = ig.Match(filepath.Join(input, "sub", "build.txt"))
	if !ok {
		t.Fatal("want anchored pattern to leave sub/build.txt untouched")
	}
}

func TestIgnoreBypassesWhitelistOutsideInputRoot(t *testing.T) {
	inner := &CopyingTool{}
	ig := NewIgnore(inner, "forgeignore")

	input := t.TempDir()
	output := t.TempDir()
	inner.SetRoots(input, output)

	if err := ig.Start(input, output); err != nil {
		t.Fatal(err)
	}

	intermediate := filepath.Join(output, "generated.png")
	os.WriteFile(intermediate, []byte("x"), 0o644)

	ok, err := ig.Match(intermediate)
	if err != nil || !ok {
		t.Fatalf("want files outside the input root to bypass the whitelist, got ok=%v err=%v", ok, err)
	}
}
