// Package svgdist measures the shortest distance between two shapes of an
// SVG document.
//
// # Overview
//
// Each shape is named by a CSS selector. The measurer isolates the shape
// (every sibling along its ancestor chain is hidden, so inherited
// transforms and styles still apply), rasterizes the isolated document,
// extracts an alpha occupancy mask and runs an exact Euclidean distance
// transform over the first mask. The smallest transform value under the
// second mask, divided by the raster scale, is the distance in document
// units.
//
// # Quick Start
//
//	doc, err := svg.ParseFile("score.svg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	d, err := svgdist.Distance(ctx, doc, "#note-1", "#note-2")
//
// # Accuracy
//
// Distances are measured between centers of occupied pixels, and
// anti-aliased edge pixels count as occupied. The result therefore differs
// from the true outline distance by up to one unit along an axis and up to
// sqrt(2) diagonally, both divided by the scale. A result of 0 means the
// shapes touch or are less than about one unit apart. Raise the scale with
// [WithScale] to tighten the bound.
//
// # Backends
//
// Rasterization goes through [raster.Rasterizer]. Two backends register
// themselves when this package is imported: "gg" (github.com/gogpu/gg, the
// default) and "vector" (golang.org/x/image/vector). Select one with
// [WithBackend] or supply any implementation with [WithRasterizer].
package svgdist
