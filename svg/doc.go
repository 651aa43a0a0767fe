// Package svg is a small SVG document model: an element tree with parent
// links, a CSS selector engine, and the subtree isolation used before
// rasterizing a single shape.
//
// # Parsing
//
//	doc, err := svg.ParseFile("score.svg")
//	el, err := doc.Query("g.note > use")
//
// # Isolation
//
// Isolate returns a deep copy of the document in which every sibling of the
// selected element and of each of its ancestors is hidden. Ancestors keep
// their attributes (size, transforms, viewBox), so the isolated shape renders
// exactly where it did in the original document.
//
//	iso, target, err := svg.Isolate(doc, "#notehead-1")
//
// Hidden state is an explicit flag on Element; the input document is never
// modified. Encode writes hidden elements with display="none".
package svg
