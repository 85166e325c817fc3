// Package sink serializes converted scenes for consumers: stable JSON for
// the renderer boundary and a Graphviz DOT/SVG preview for debugging layout
// output without a canvas.
package sink
