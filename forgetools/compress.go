package forgetools

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/xerrors"

	"github.com/forgekit/forge"
)

// CompressionTool zlib-compresses any file whose name ends in exactly one
// ".bin" suffix, writing a "<name>.bin.z" output at the same relative path
// under the output root. The raw
// zlib framing (no gzip header) matches what the original C++ loader's
// inflateInit/inflate pair expects from a memory-mapped file.
type CompressionTool struct {
	forge.Roots
	logSink
}

func (t *CompressionTool) ToolName() string { return "CompressionTool" }

func (t *CompressionTool) Match(file string) (bool, error) {
	return strings.Count(filepath.Base(file), ".bin") == 1 && strings.HasSuffix(file, ".bin"), nil
}

func (t *CompressionTool) Deps(file string) ([]string, error) { return nil, nil }

func (t *CompressionTool) Outputs(file string) ([]string, error) {
	rel, err := t.RelativePath(file)
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(t.OutputRoot, rel+".z")}, nil
}

func (t *CompressionTool) Build(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", file, err)
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return xerrors.Errorf("compressing %s: %w", file, err)
	}
	if err := w.Close(); err != nil {
		return xerrors.Errorf("closing zlib stream for %s: %w", file, err)
	}

	outs, err := t.Outputs(file)
	if err != nil {
		return err
	}
	dest := outs[0]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("writing %s: %w", dest, err)
	}
	t.logf("compressed %s -> %s (%d -> %d bytes)", file, dest, len(data), buf.Len())
	return nil
}
