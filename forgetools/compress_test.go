package forgetools

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCompressionToolMatch(t *testing.T) {
	tool := &CompressionTool{}
	ok, _ := tool.Match("/x/data.bin")
	if !ok {
		t.Fatal("want .bin file to match")
	}
	ok, _ = tool.Match("/x/data.bin.bin")
	if ok {
		t.Fatal("want a double .bin to not match (exactly one occurrence required)")
	}
	ok, _ = tool.Match("/x/data.txt")
	if ok {
		t.Fatal("want non-.bin file to not match")
	}
}

func TestCompressionToolBuildRoundTrips(t *testing.T) {
	tool := &CompressionTool{}
	input := t.TempDir()
	output := t.TempDir()
	tool.SetRoots(input, output)

	src := filepath.Join(input, "data.bin")
	payload := bytes.Repeat([]byte("asset-data"), 100)
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := tool.Build(src); err != nil {
		t.Fatal(err)
	}

	outs, err := tool.Outputs(src)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(outs[0]) != "data.bin.z" {
		t.Fatalf("want data.bin.z, got %s", filepath.Base(outs[0]))
	}

	compressed, err := os.ReadFile(outs[0])
	if err != nil {
		t.Fatal(err)
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("want decompressed data to round-trip")
	}
}
