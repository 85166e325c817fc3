package layout

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/sketchpipe/sketchpipe/pkg/errors"
)

// Direction is the primary flow axis of the layered placement.
type Direction string

const (
	// DirectionTopToBottom ranks flow downward. This is the default.
	DirectionTopToBottom Direction = "tb"
	// DirectionLeftToRight ranks flow rightward.
	DirectionLeftToRight Direction = "lr"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionTopToBottom, DirectionLeftToRight:
		return Direction(s), nil
	case "":
		return DirectionTopToBottom, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidDirection, "invalid direction: %q (must be tb or lr)", s)
	}
}

// Options configures the layout engine. All values are optional; zero
// values are replaced by the corresponding default. The geometric constants
// are empirically chosen - correctness tests assert the invariants
// (containment, no overlap), not these exact values.
type Options struct {
	// Direction is the primary flow axis.
	Direction Direction `toml:"direction"`

	// RankSep is the gap between consecutive ranks along the flow axis.
	RankSep float64 `toml:"rank_sep"`
	// NodeSep is the gap between neighboring nodes within a rank.
	NodeSep float64 `toml:"node_sep"`
	// MarginX and MarginY are the outer canvas margins.
	MarginX float64 `toml:"margin_x"`
	MarginY float64 `toml:"margin_y"`

	// FramePadding expands a frame's box beyond its descendants on all sides.
	FramePadding float64 `toml:"frame_padding"`
	// FrameTitleSpace is extra vertical room above a frame's content for its title.
	FrameTitleSpace float64 `toml:"frame_title_space"`
	// MinFrameGap is the minimum horizontal gap between sibling frames.
	MinFrameGap float64 `toml:"min_frame_gap"`
	// AlignThreshold is the vertical distance under which sibling frames are
	// treated as one visual rank and top-aligned.
	AlignThreshold float64 `toml:"align_threshold"`

	// ReflowMinChildren is the child count above which a single-row frame is
	// rearranged into a grid.
	ReflowMinChildren int `toml:"reflow_min_children"`
	// ReflowGapX and ReflowGapY are the grid cell gaps used during reflow.
	ReflowGapX float64 `toml:"reflow_gap_x"`
	ReflowGapY float64 `toml:"reflow_gap_y"`

	// MinNodeWidth floors the estimated width of a sized element.
	MinNodeWidth float64 `toml:"min_node_width"`
	// MaxNodeWidth caps estimated width; longer labels wrap.
	MaxNodeWidth float64 `toml:"max_node_width"`
	// LineHeight is the per-line height used for wrapped label estimation.
	LineHeight float64 `toml:"line_height"`
	// CharWidth and CJKCharWidth are per-character pixel weights. CJK glyphs
	// are wider than Latin glyphs in every font the renderer ships.
	CharWidth    float64 `toml:"char_width"`
	CJKCharWidth float64 `toml:"cjk_char_width"`
	// TextPadding is the fixed internal horizontal padding of a shape.
	TextPadding float64 `toml:"text_padding"`
	// CJKExtraHeight is additional vertical padding for labels with CJK glyphs.
	CJKExtraHeight float64 `toml:"cjk_extra_height"`
}

// DefaultOptions returns the default layout configuration.
func DefaultOptions() Options {
	return Options{
		Direction:         DirectionTopToBottom,
		RankSep:           80,
		NodeSep:           60,
		MarginX:           40,
		MarginY:           40,
		FramePadding:      16,
		FrameTitleSpace:   28,
		MinFrameGap:       24,
		AlignThreshold:    40,
		ReflowMinChildren: 4,
		ReflowGapX:        24,
		ReflowGapY:        20,
		MinNodeWidth:      100,
		MaxNodeWidth:      280,
		LineHeight:        24,
		CharWidth:         8,
		CJKCharWidth:      15,
		TextPadding:       12,
		CJKExtraHeight:    6,
	}
}

// normalized fills zero-valued fields with defaults.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Direction == "" {
		o.Direction = def.Direction
	}
	if o.RankSep == 0 {
		o.RankSep = def.RankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = def.NodeSep
	}
	if o.MarginX == 0 {
		o.MarginX = def.MarginX
	}
	if o.MarginY == 0 {
		o.MarginY = def.MarginY
	}
	if o.FramePadding == 0 {
		o.FramePadding = def.FramePadding
	}
	if o.FrameTitleSpace == 0 {
		o.FrameTitleSpace = def.FrameTitleSpace
	}
	if o.MinFrameGap == 0 {
		o.MinFrameGap = def.MinFrameGap
	}
	if o.AlignThreshold == 0 {
		o.AlignThreshold = def.AlignThreshold
	}
	if o.ReflowMinChildren == 0 {
		o.ReflowMinChildren = def.ReflowMinChildren
	}
	if o.ReflowGapX == 0 {
		o.ReflowGapX = def.ReflowGapX
	}
	if o.ReflowGapY == 0 {
		o.ReflowGapY = def.ReflowGapY
	}
	if o.MinNodeWidth == 0 {
		o.MinNodeWidth = def.MinNodeWidth
	}
	if o.MaxNodeWidth == 0 {
		o.MaxNodeWidth = def.MaxNodeWidth
	}
	if o.LineHeight == 0 {
		o.LineHeight = def.LineHeight
	}
	if o.CharWidth == 0 {
		o.CharWidth = def.CharWidth
	}
	if o.CJKCharWidth == 0 {
		o.CJKCharWidth = def.CJKCharWidth
	}
	if o.TextPadding == 0 {
		o.TextPadding = def.TextPadding
	}
	if o.CJKExtraHeight == 0 {
		o.CJKExtraHeight = def.CJKExtraHeight
	}
	return o
}

// LoadOptions reads layout options from a TOML file. Keys absent from the
// file keep their defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	opts := DefaultOptions()
	if err := toml.Unmarshal(data, &opts); err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if _, err := ParseDirection(string(opts.Direction)); err != nil {
		return Options{}, err
	}
	return opts, nil
}
