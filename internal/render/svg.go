// Package render turns simulation frames into SVG documents.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"

	"yew-art/server/internal/sim"
	"yew-art/server/internal/world"
)

const (
	ExportFilename    = "yew-art.svg"
	ExportContentType = "image/svg+xml;charset=utf-8"

	FillOpacity = 0.75
	StrokeWidth = 3
)

// SVG renders state as a complete document.
func SVG(state sim.RenderState) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail.
	_ = WriteSVG(&buf, state)
	return buf.Bytes()
}

// WriteSVG streams state to w. History circles are emitted before live circles
// so the live set paints on top.
func WriteSVG(w io.Writer, state sim.RenderState) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	view := state.View

	// viewBox takes an origin and a size, not two corners.
	canvas.Start(dimension(view.Width()), dimension(view.Height()),
		`id="svg"`,
		fmt.Sprintf(`viewBox="%s %s %s %s"`, formatFloat(view.XMin), formatFloat(view.YMin), formatFloat(view.Width()), formatFloat(view.Height())),
		`fill="none"`,
		`style="display:block"`,
	)
	canvas.Title("yew-art")

	canvas.Gid("history")
	for _, c := range state.History {
		writeCircle(canvas.Writer, c)
	}
	canvas.Gend()

	canvas.Gid("circles")
	for _, c := range state.Circles {
		writeCircle(canvas.Writer, c)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

// Hex converts the HSL color to an sRGB hex triplet.
func Hex(c world.Color) string {
	return colorful.Hsl(c.H, c.S, c.L).Clamped().Hex()
}

// svgo only draws integer circles, so circles are written by hand at full precision.
func writeCircle(w io.Writer, c world.Circle) {
	color := c.Color.String()
	fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%d"/>`+"\n",
		formatFloat(c.Position.X),
		formatFloat(c.Position.Y),
		formatFloat(c.Radius),
		color,
		formatFloat(FillOpacity),
		color,
		StrokeWidth,
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func dimension(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Ceil(v))
}

// errWriter remembers the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
