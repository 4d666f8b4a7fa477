package forgetools

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cavaliercoder/go-cpio"
)

func TestArchiveToolMatchesMarker(t *testing.T) {
	tool := &ArchiveTool{}
	input := t.TempDir()
	output := t.TempDir()
	tool.SetRoots(input, output)

	dir := filepath.Join(input, "bundle")
	os.MkdirAll(dir, 0o755)
	marker := filepath.Join(dir, ".archive")
	os.WriteFile(marker, nil, 0o644)

	ok, err := tool.Match(marker)
	if err != nil || !ok {
		t.Fatalf("want marker to match, got ok=%v err=%v", ok, err)
	}

	notMarker := filepath.Join(dir, "asset.bin")
	os.WriteFile(notMarker, []byte("x"), 0o644)
	ok, err = tool.Match(notMarker)
	if err != nil || ok {
		t.Fatalf("want non-marker file to not match, got ok=%v err=%v", ok, err)
	}
}

func TestArchiveToolBuildPacksSiblings(t *testing.T) {
	tool := &ArchiveTool{}
	input := t.TempDir()
	output := t.TempDir()
	tool.SetRoots(input, output)

	dir := filepath.Join(input, "bundle")
	os.MkdirAll(dir, 0o755)
	marker := filepath.Join(dir, ".archive")
	os.WriteFile(marker, nil, 0o644)
	os.WriteFile(filepath.Join(dir, "a.bin"), []byte("aaa"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.bin"), []byte("bb"), 0o644)

	deps, err := tool.Deps(marker)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 2 {
		t.Fatalf("want 2 dependencies (the two sibling files), got %v", deps)
	}

	if err := tool.Build(marker); err != nil {
		t.Fatal(err)
	}

	outs, err := tool.Outputs(marker)
	if err != nil {
		t.Fatal(err)
	}
	gzData, err := os.ReadFile(outs[0])
	if err != nil {
		t.Fatal(err)
	}
	gr, err := gzip.NewReader(bytes.NewReader(gzData))
	if err != nil {
		t.Fatal(err)
	}
	defer gr.Close()

	rd := cpio.NewReader(gr)
	var names []string
	for {
		hdr, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
	}
	if len(names) != 2 {
		t.Fatalf("want 2 archived files, got %v", names)
	}
}
