package forgetools

import (
	"encoding/binary"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/mmap"
	"golang.org/x/xerrors"

	"github.com/forgekit/forge"
)

// atlasEntry is one sprite rectangle inside the atlas source image.
type atlasEntry struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type atlasSource struct {
	Type    string       `json:"type"`
	Image   string       `json:"image"`
	Entries []atlasEntry `json:"entries"`
}

// AtlasTool packs a JSON atlas description plus its source image into a
// compact binary blob: a two-uint32 header (entry count, text blob size),
// one 4-float UV rectangle per entry scaled to [0,1], then a text blob of
// entry IDs in the same order, each terminated by a NUL byte. This is the layout a C++ client
// expects to memcpy directly into a fixed-size struct array.
type AtlasTool struct {
	forge.Roots
	logSink
}

func (t *AtlasTool) ToolName() string { return "AtlasTool" }

func (t *AtlasTool) Match(file string) (bool, error) {
	if strings.Count(filepath.Base(file), ".atlas") != 1 {
		return false, nil
	}
	rel, err := filepath.Rel(t.InputRoot, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

func (t *AtlasTool) Deps(file string) ([]string, error) {
	src, err := readAtlasSource(file)
	if err != nil {
		return nil, err
	}
	if src.Type != "single_image" {
		return nil, xerrors.Errorf("%s: unsupported atlas type %q", file, src.Type)
	}
	return []string{filepath.Join(filepath.Dir(file), src.Image)}, nil
}

func (t *AtlasTool) Outputs(file string) ([]string, error) {
	rel, err := t.RelativePath(file)
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(t.OutputRoot, atlasBinName(rel))}, nil
}

// atlasBinName mimics Path.with_suffix(".atlas.bin"): the last extension is
// replaced, not appended after.
func atlasBinName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".atlas.bin"
}

func readAtlasSource(file string) (*atlasSource, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, xerrors.Errorf("reading atlas %s: %w", file, err)
	}
	var src atlasSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, xerrors.Errorf("parsing atlas %s: %w", file, err)
	}
	return &src, nil
}

func (t *AtlasTool) Build(file string) error {
	src, err := readAtlasSource(file)
	if err != nil {
		return err
	}

	imgPath := filepath.Join(filepath.Dir(file), src.Image)
	width, height, err := imageDimensions(imgPath)
	if err != nil {
		return xerrors.Errorf("reading image %s: %w", imgPath, err)
	}

	var uvData []byte
	var textBlob []byte
	for _, e := range src.Entries {
		uvData = appendFloat32(uvData, float32(e.X)/float32(width))
		uvData = appendFloat32(uvData, float32(e.Y)/float32(height))
		uvData = appendFloat32(uvData, float32(e.X+e.Width)/float32(width))
		uvData = appendFloat32(uvData, float32(e.Y+e.Height)/float32(height))
		textBlob = append(textBlob, e.ID...)
		textBlob = append(textBlob, 0)
	}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(src.Entries)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(textBlob)))

	outs, err := t.Outputs(file)
	if err != nil {
		return err
	}
	dest := outs[0]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}

	out := append(append(header, uvData...), textBlob...)
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return xerrors.Errorf("writing %s: %w", dest, err)
	}
	t.logf("atlas binary written to %s (%d entries)", dest, len(src.Entries))
	return nil
}

func appendFloat32(b []byte, f float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
	return append(b, buf[:]...)
}

// imageDimensions reads just enough of a source image to learn its size,
// memory-mapping the file instead of loading it whole: atlas source
// textures can be large, and every entry only needs the bounds.
func imageDimensions(path string) (width, height int, err error) {
	r, err := mmap.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	cfg, _, err := image.DecodeConfig(io.NewSectionReader(r, 0, int64(r.Len())))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
