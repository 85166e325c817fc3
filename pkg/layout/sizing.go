package layout

import (
	"math"
	"unicode"
)

// estimateSizes assigns width/height to every shape and text element that
// does not already carry explicit dimensions. Frames are sized later from
// their descendants and connectors carry no geometry of their own.
//
// Width comes from the label's estimated pixel width with a per-character
// weight (CJK glyphs are wider than Latin ones), floored at MinNodeWidth
// and capped at MaxNodeWidth. Height comes from the number of lines the
// label wraps into at that width.
func (ctx *layoutContext) estimateSizes() {
	for _, el := range ctx.elems {
		if el.IsFrame() || el.IsConnector() || el.HasGeometry() {
			continue
		}
		w, h := ctx.estimateSize(el.Label)
		el.SetGeometry(0, 0, w, h)
	}
}

func (ctx *layoutContext) estimateSize(label string) (w, h float64) {
	opts := ctx.opts
	textWidth, hasCJK := ctx.textWidth(label)

	w = textWidth + 2*opts.TextPadding
	if w < opts.MinNodeWidth {
		w = opts.MinNodeWidth
	}
	if w > opts.MaxNodeWidth {
		w = opts.MaxNodeWidth
	}

	avail := w - 2*opts.TextPadding
	lines := 1.0
	if textWidth > 0 && avail > 0 {
		lines = math.Ceil(textWidth / avail)
	}

	h = lines*opts.LineHeight + 2*opts.TextPadding
	if hasCJK {
		h += opts.CJKExtraHeight
	}
	return w, h
}

// textWidth estimates the unwrapped pixel width of a label and reports
// whether it contains CJK glyphs.
func (ctx *layoutContext) textWidth(label string) (float64, bool) {
	var width float64
	hasCJK := false
	for _, r := range label {
		if isCJK(r) {
			width += ctx.opts.CJKCharWidth
			hasCJK = true
		} else {
			width += ctx.opts.CharWidth
		}
	}
	return width, hasCJK
}

// isCJK reports whether the rune renders at full ideographic width.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r) ||
		(r >= 0xFF00 && r <= 0xFFEF) // full-width forms
}
