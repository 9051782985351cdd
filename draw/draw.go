// Package draw renders projected polygons to raster images for quick visual
// inspection of projection output.
package draw

import (
	"errors"
	"math"

	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl64"
)

// padding keeps the polygon off the image border.
const padding = 20

// ErrNoVertices is returned when there is nothing to render.
var ErrNoVertices = errors.New("draw: polygon has no vertices")

// Style selects the rendering colors and scale. The zero value is unusable;
// start from DefaultStyle.
type Style struct {
	// Scale is the number of pixels per polygon unit.
	Scale float64

	// LineWidth is the stroke width in pixels.
	LineWidth float64

	Background [3]float64
	Fill       [3]float64
	Stroke     [3]float64
}

// DefaultStyle matches the debugging palette: green fill, cyan outline on
// black.
func DefaultStyle() Style {
	return Style{
		Scale:      100,
		LineWidth:  2,
		Background: [3]float64{0, 0, 0},
		Fill:       [3]float64{0, 0.5, 0},
		Stroke:     [3]float64{0, 1, 1},
	}
}

// Render draws the polygon onto a fresh context sized to fit it. The vertical
// axis points up, so the image matches the mathematical orientation of the
// vertices. Degenerate one- or two-vertex inputs render as a dot or a line.
func Render(vertices []mgl64.Vec2, style Style) (*gg.Context, error) {
	if len(vertices) == 0 {
		return nil, ErrNoVertices
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vertices {
		minX = math.Min(minX, v[0])
		minY = math.Min(minY, v[1])
		maxX = math.Max(maxX, v[0])
		maxY = math.Max(maxY, v[1])
	}

	width := int(style.Scale*(maxX-minX)) + padding*2
	height := int(style.Scale*(maxY-minY)) + padding*2
	c := gg.NewContext(width, height)
	c.SetRGB(style.Background[0], style.Background[1], style.Background[2])
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip the context so the origin is at the bottom left.
	c.Translate(0, float64(height))
	c.Scale(1, -1)

	c.Translate(padding, padding)
	c.Scale(style.Scale, style.Scale)
	c.Translate(-minX, -minY)

	c.SetLineWidth(style.LineWidth / style.Scale)
	switch len(vertices) {
	case 1:
		c.DrawCircle(vertices[0][0], vertices[0][1], style.LineWidth*2/style.Scale)
		c.SetRGB(style.Stroke[0], style.Stroke[1], style.Stroke[2])
		c.Fill()
	case 2:
		c.MoveTo(vertices[0][0], vertices[0][1])
		c.LineTo(vertices[1][0], vertices[1][1])
		c.SetRGB(style.Stroke[0], style.Stroke[1], style.Stroke[2])
		c.Stroke()
	default:
		c.MoveTo(vertices[0][0], vertices[0][1])
		for _, v := range vertices[1:] {
			c.LineTo(v[0], v[1])
		}
		c.ClosePath()
		c.SetRGB(style.Fill[0], style.Fill[1], style.Fill[2])
		c.FillPreserve()
		c.SetRGB(style.Stroke[0], style.Stroke[1], style.Stroke[2])
		c.Stroke()
	}

	return c, nil
}

// SavePNG renders the polygon and writes it to path.
func SavePNG(path string, vertices []mgl64.Vec2, style Style) error {
	c, err := Render(vertices, style)
	if err != nil {
		return err
	}
	return c.SavePNG(path)
}
