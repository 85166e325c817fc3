package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/sketchpipe/sketchpipe/pkg/errors"
	"github.com/sketchpipe/sketchpipe/pkg/render"
)

// ToDOT converts a scene to Graphviz DOT for a quick structural preview.
// Graphviz performs its own placement, so the preview shows topology rather
// than the computed coordinates; frames appear as dashed grey boxes and
// connectors with an unresolved endpoint are omitted.
func ToDOT(elems []render.Element) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, el := range elems {
		if el.Kind == "arrow" {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", el.ID, strings.Join(nodeAttrs(el), ", "))
	}

	buf.WriteString("\n")
	for _, el := range elems {
		if el.Kind != "arrow" || el.Start == nil || el.End == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", el.Start.ElementID, el.End.ElementID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(el render.Element) []string {
	label := el.Label
	if label == "" {
		label = el.ID
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch el.Kind {
	case "diamond":
		attrs = append(attrs, "shape=diamond")
	case "ellipse":
		attrs = append(attrs, "shape=ellipse")
	case "text":
		attrs = append(attrs, "shape=plaintext", "style=\"\"")
	case "frame":
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if el.Background != "" && el.Background != render.DefaultBackground {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", el.Background))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the document is anchored at
// the origin with explicit pixel dimensions. Graphviz emits point-based
// sizes with an offset viewBox, which scales badly when embedded.
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
