package pathviz

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
	"github.com/matzehuels/sbhasm/pkg/render"
)

// Output formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Options configures path diagram rendering.
type Options struct {
	// Detailed adds the fragment index and sequence offset to node labels.
	Detailed bool

	// ShowUnused draws fragments missing from the order in a grey cluster.
	ShowUnused bool
}

// ToDOT converts a fragment order to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [Render].
func ToDOT(asm *assembly.Assembler, order []int, opts Options) string {
	set := asm.Fragments()
	m := asm.Overlaps()
	width := set.Width()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=14];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	offset := 0
	for pos, f := range order {
		if pos > 0 {
			offset += width - m.At(order[pos-1], f)
		}
		fmt.Fprintf(&buf, "  %s [label=%q];\n", nodeID(f), fmtLabel(set.At(f), f, offset, opts.Detailed))
	}

	if len(order) > 1 {
		buf.WriteString("\n")
	}
	for pos := 1; pos < len(order); pos++ {
		from, to := order[pos-1], order[pos]
		ov := m.At(from, to)
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", nodeID(from), nodeID(to), strings.Join(fmtEdgeAttrs(ov, width), ", "))
	}

	if opts.ShowUnused {
		writeUnused(&buf, asm, order, opts.Detailed)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeUnused(buf *bytes.Buffer, asm *assembly.Assembler, order []int, detailed bool) {
	set := asm.Fragments()
	used := make([]bool, set.Len())
	for _, f := range order {
		used[f] = true
	}
	var unused []int
	for f, u := range used {
		if !u {
			unused = append(unused, f)
		}
	}
	if len(unused) == 0 {
		return
	}

	buf.WriteString("\n  subgraph cluster_unused {\n")
	buf.WriteString("    label=\"unused\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    color=grey;\n")
	for _, f := range unused {
		label := set.At(f)
		if detailed {
			label = fmt.Sprintf("%s\n#%d", label, f)
		}
		fmt.Fprintf(buf, "    %s [label=%q, fillcolor=lightgrey, fontcolor=grey30];\n", nodeID(f), label)
	}
	buf.WriteString("  }\n")
}

func nodeID(f int) string {
	return "f" + strconv.Itoa(f)
}

func fmtLabel(text string, index, offset int, detailed bool) string {
	if !detailed {
		return text
	}
	return fmt.Sprintf("%s\n#%d @%d", text, index, offset)
}

// fmtEdgeAttrs scales pen width with the overlap so that a full overlap is
// drawn at 4pt and no overlap at 1pt.
func fmtEdgeAttrs(overlap, width int) []string {
	pen := 1.0
	if width > 0 {
		pen += 3 * float64(overlap) / float64(width)
	}
	attrs := []string{
		fmt.Sprintf("label=%q", strconv.Itoa(overlap)),
		fmt.Sprintf("penwidth=%.2f", pen),
	}
	if overlap == 0 {
		attrs = append(attrs, "style=dashed", "color=red")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces the diagram in the named format.
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPDF:
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	case FormatPNG:
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, 2.0)
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported diagram format %q (must be one of: dot, svg, pdf, png)", format)
}

// FormatFromPath returns the diagram format implied by path's extension.
// Paths without a recognised extension default to DOT.
func FormatFromPath(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case FormatSVG, FormatPDF, FormatPNG:
		return ext
	}
	return FormatDOT
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
