// Package render provides output conversion for sbhasm's diagrams.
//
// # Overview
//
// Diagrams are produced as SVG by the [pathviz] subpackage. This package
// converts SVG to other formats using the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := pathviz.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Path Diagrams
//
// The [pathviz] subpackage draws a fragment order as a left-to-right chain
// whose edges carry the overlap between neighbouring fragments.
package render
