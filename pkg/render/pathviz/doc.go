// Package pathviz renders an assembled fragment order as a Graphviz diagram.
//
// # Overview
//
// The order is drawn as a left-to-right chain. Each node is one fragment,
// labelled with its text, and each edge carries the overlap between the two
// neighbours. Heavier overlaps get thicker edges, so weak joints in an
// assembly stand out at a glance.
//
// # Usage
//
//	dot := pathviz.ToDOT(asm, result.Order, pathviz.Options{Detailed: true})
//	svg, err := pathviz.RenderSVG(ctx, dot)
//
// [Render] picks the output format by name ("dot", "svg", "pdf", "png");
// [FormatFromPath] derives that name from a file extension.
//
// # Options
//
//   - Detailed: labels also show the fragment index and its offset in the
//     assembled sequence
//   - ShowUnused: fragments left out of the order are drawn greyed out in a
//     separate cluster
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package pathviz
