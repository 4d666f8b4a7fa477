package forgetools

import (
	"encoding/xml"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"github.com/forgekit/forge"
)

// SVGToPNGTool rasterizes a restricted subset of SVG — the <rect> and
// <circle> shapes with solid fills — into a PNG sized by the root element's
// integer width/height attributes (256x256 for any that is absent or not an
// integer; viewBox is not read). None of the example
// corpus this tool was modeled from vendors a full SVG rasterizer (the
// reference implementation shells out to cairosvg), so this is a
// deliberately partial, dependency-free implementation rather than a
// stand-in for one: unsupported elements (paths, gradients, text, nested
// transforms) are silently skipped rather than failing the build.
type SVGToPNGTool struct {
	forge.Roots
	logSink
}

func (t *SVGToPNGTool) ToolName() string { return "SVGToPNGTool" }

func (t *SVGToPNGTool) Match(file string) (bool, error) {
	if strings.Count(filepath.Base(file), ".svg") != 1 {
		return false, nil
	}
	rel, err := filepath.Rel(t.InputRoot, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

func (t *SVGToPNGTool) Deps(file string) ([]string, error) { return nil, nil }

func (t *SVGToPNGTool) Outputs(file string) ([]string, error) {
	rel, err := t.RelativePath(file)
	if err != nil {
		return nil, err
	}
	pngName := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".png"
	return []string{filepath.Join(t.OutputRoot, pngName)}, nil
}

func (t *SVGToPNGTool) Build(file string) error {
	doc, err := parseSVG(file)
	if err != nil {
		return xerrors.Errorf("parsing %s: %w", file, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, doc.width, doc.height))
	for _, shape := range doc.shapes {
		shape.draw(img)
	}

	outs, err := t.Outputs(file)
	if err != nil {
		return err
	}
	dest := outs[0]
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return xerrors.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return xerrors.Errorf("encoding %s: %w", dest, err)
	}
	t.logf("rasterized %s -> %s (%dx%d)", file, dest, doc.width, doc.height)
	return nil
}

type svgShape interface {
	draw(img *image.RGBA)
}

type svgRect struct {
	x, y, w, h int
	fill       color.Color
}

func (r svgRect) draw(img *image.RGBA) {
	rect := image.Rect(r.x, r.y, r.x+r.w, r.y+r.h).Intersect(img.Bounds())
	draw.Draw(img, rect, &image.Uniform{C: r.fill}, image.Point{}, draw.Src)
}

type svgCircle struct {
	cx, cy, r int
	fill      color.Color
}

func (c svgCircle) draw(img *image.RGBA) {
	bounds := img.Bounds()
	for y := c.cy - c.r; y <= c.cy+c.r; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := c.cx - c.r; x <= c.cx+c.r; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx, dy := x-c.cx, y-c.cy
			if dx*dx+dy*dy <= c.r*c.r {
				img.Set(x, y, c.fill)
			}
		}
	}
}

type svgDoc struct {
	width, height int
	shapes        []svgShape
}

// xmlNode is a generic XML element, used to walk the SVG tree without a
// struct per element type.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
}

func (n xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func parseSVG(file string) (*svgDoc, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var root xmlNode
	if err := xml.NewDecoder(f).Decode(&root); err != nil {
		return nil, err
	}

	width, height := 256, 256
	if w, ok := root.attr("width"); ok {
		if v, err := strconv.Atoi(strings.TrimSuffix(w, "px")); err == nil {
			width = v
		}
	}
	if h, ok := root.attr("height"); ok {
		if v, err := strconv.Atoi(strings.TrimSuffix(h, "px")); err == nil {
			height = v
		}
	}

	doc := &svgDoc{width: width, height: height}
	var walk func(n xmlNode)
	walk = func(n xmlNode) {
		switch n.XMLName.Local {
		case "rect":
			doc.shapes = append(doc.shapes, svgRect{
				x:    atoiAttr(n, "x"),
				y:    atoiAttr(n, "y"),
				w:    atoiAttr(n, "width"),
				h:    atoiAttr(n, "height"),
				fill: fillAttr(n),
			})
		case "circle":
			doc.shapes = append(doc.shapes, svgCircle{
				cx:   atoiAttr(n, "cx"),
				cy:   atoiAttr(n, "cy"),
				r:    atoiAttr(n, "r"),
				fill: fillAttr(n),
			})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

func atoiAttr(n xmlNode, name string) int {
	v, ok := n.attr(name)
	if !ok {
		return 0
	}
	i, _ := strconv.Atoi(v)
	return i
}

func fillAttr(n xmlNode) color.Color {
	v, ok := n.attr("fill")
	if !ok || v == "" || v == "none" {
		return color.RGBA{0, 0, 0, 255}
	}
	if strings.HasPrefix(v, "#") && (len(v) == 7 || len(v) == 4) {
		if c, ok := parseHexColor(v); ok {
			return c
		}
	}
	return color.RGBA{0, 0, 0, 255}
}

func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, true
}
