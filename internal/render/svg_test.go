package render

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yew-art/server/internal/sim"
	"yew-art/server/internal/world"
)

var circlePattern = regexp.MustCompile(`<circle cx="([^"]+)" cy="([^"]+)" r="([^"]+)" fill="([^"]+)" fill-opacity="0.75" stroke="([^"]+)" stroke-width="3"/>`)

func testState() sim.RenderState {
	return sim.RenderState{
		View: world.ViewWindow{XMin: 0, XMax: 750, YMin: 0, YMax: 750},
		History: []world.Circle{
			{Position: world.Position{X: 1, Y: 2}, Radius: 3, Color: world.Color{H: 10, S: 0.5, L: 0.5}},
			{Position: world.Position{X: 4, Y: 5}, Radius: 6, Color: world.Color{H: 20, S: 0.5, L: 0.5}},
		},
		Circles: []world.Circle{
			{Position: world.Position{X: 7.25, Y: 8.5}, Radius: 0.125, Color: world.Color{H: 200, S: 1, L: 0.25}},
		},
	}
}

func TestSVGDrawsHistoryBeforeLiveCircles(t *testing.T) {
	doc := string(SVG(testState()))

	matches := circlePattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"1", "2", "3"}, matches[0][1:4])
	assert.Equal(t, []string{"4", "5", "6"}, matches[1][1:4])
	assert.Equal(t, []string{"7.25", "8.5", "0.125"}, matches[2][1:4])

	assert.Less(t, strings.Index(doc, `id="history"`), strings.Index(doc, `id="circles"`))
}

func TestSVGUsesHSLForFillAndStroke(t *testing.T) {
	doc := string(SVG(testState()))
	matches := circlePattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, matches, 3)
	last := matches[2]
	assert.Equal(t, "hsl(200.00, 100.00%, 25.00%)", last[4])
	assert.Equal(t, last[4], last[5])
}

func TestSVGDocumentFraming(t *testing.T) {
	doc := string(SVG(testState()))
	assert.Contains(t, doc, `<svg`)
	assert.Contains(t, doc, `width="750" height="750"`)
	assert.Contains(t, doc, `viewBox="0 0 750 750"`)
	assert.Contains(t, doc, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, doc, `<title>yew-art</title>`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(doc), "</svg>"))
}

func TestSVGEmptyState(t *testing.T) {
	doc := string(SVG(sim.RenderState{View: world.ViewWindow{XMax: 10.5, YMax: 20}}))
	assert.Empty(t, circlePattern.FindAllString(doc, -1))
	assert.Contains(t, doc, `width="11" height="20"`)
	assert.Contains(t, doc, `viewBox="0 0 10.5 20"`)
}

func TestSVGViewBoxUsesSizeForOffsetOrigin(t *testing.T) {
	view := world.ViewWindow{XMin: 100, XMax: 400, YMin: -50, YMax: 150}
	doc := string(SVG(sim.RenderState{View: view}))
	assert.Contains(t, doc, `width="300" height="200"`)
	assert.Contains(t, doc, `viewBox="100 -50 300 200"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteSVGReportsWriteError(t *testing.T) {
	err := WriteSVG(failingWriter{}, testState())
	require.EqualError(t, err, "disk full")
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff0000", Hex(world.Color{H: 0, S: 1, L: 0.5}))
	assert.Equal(t, "#ffffff", Hex(world.Color{H: 123, S: 0.3, L: 1}))
	assert.Equal(t, "#000000", Hex(world.Color{H: 300, S: 0.7, L: 0}))
}
