package offgrid

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// submitBatches walks the sorted commands and issues draw calls to target.
func (d *Document) submitBatches(target *ebiten.Image) {
	var op ebiten.DrawImageOptions
	for i := range d.commands {
		cmd := &d.commands[i]
		switch cmd.Type {
		case CommandFill:
			submitFill(target, cmd, &op)
		case CommandImage:
			submitImage(target, cmd, &op)
		case CommandStroke:
			submitStroke(target, cmd)
		case CommandViewer:
			cmd.viewer.Draw(target, cmd.Transform, cmd.Width, cmd.Height, float64(cmd.Color.A))
		}
	}
}

// submitFill stretches the white pixel over the command rectangle.
func submitFill(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.GeoM.Scale(cmd.Width, cmd.Height)
	op.GeoM.Concat(commandGeoM(cmd))
	applyColor(op, cmd)
	target.DrawImage(ensureWhitePixel(), op)
}

// submitImage draws a pre-rendered image at the command transform.
func submitImage(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	if cmd.image == nil {
		return
	}
	op.GeoM.Reset()
	op.GeoM.Concat(commandGeoM(cmd))
	applyColor(op, cmd)
	target.DrawImage(cmd.image, op)
}

// submitStroke outlines the transformed rectangle edge by edge so skewed and
// rotated boxes keep their shape.
func submitStroke(target *ebiten.Image, cmd *RenderCommand) {
	corners := quadCorners(cmd.Transform, cmd.Width, cmd.Height)
	c := premultiplied(cmd.Color)
	w := float32(cmd.strokeWidth)
	for i := 0; i < 4; i++ {
		p, q := corners[i], corners[(i+1)%4]
		vector.StrokeLine(target, float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), w, c, true)
	}
}

// applyColor writes the premultiplied color scale and blend mode.
func applyColor(op *ebiten.DrawImageOptions, cmd *RenderCommand) {
	op.ColorScale.Reset()
	a := cmd.Color.A
	op.ColorScale.Scale(cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a, a)
	op.Blend = cmd.Blend.EbitenBlend()
}

func premultiplied(c color32) color.RGBA {
	return Color{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}.toRGBA()
}

// commandGeoM converts a command's affine transform into an ebiten.GeoM.
func commandGeoM(cmd *RenderCommand) ebiten.GeoM {
	return geoM(cmd.Transform)
}

func geoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}

// countDrawCalls counts the draw calls the command list will issue. Strokes
// draw one line per edge.
func countDrawCalls(commands []RenderCommand) int {
	count := 0
	for i := range commands {
		if commands[i].Type == CommandStroke {
			count += 4
			continue
		}
		count++
	}
	return count
}
