package offgrid

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- White pixel singleton (no sync.Once, offgrid is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used
// for solid fills.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// quadCorners returns the corners of a w x h rectangle under transform, in
// clockwise order from the local origin.
func quadCorners(transform [6]float64, w, h float64) [4]Vec2 {
	var out [4]Vec2
	local := [4]Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
	for i, p := range local {
		x, y := transformPoint(transform, p.X, p.Y)
		out[i] = Vec2{x, y}
	}
	return out
}

// --- Pattern generators ---

// pixelFunc returns the straight-alpha color of pixel (x, y).
type pixelFunc func(x, y int) Color

// rasterize builds a w x h image from fn, premultiplying as it writes.
func rasterize(w, h int, fn pixelFunc) *ebiten.Image {
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := fn(x, y).toRGBA()
			i := 4 * (y*w + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(pix)
	return img
}

// NoisePattern returns monochrome film grain with the given maximum alpha.
// The same seed always produces the same grain.
func NoisePattern(seed uint64, alpha float64) PatternFunc {
	return func(w, h int) *ebiten.Image {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return rasterize(w, h, func(int, int) Color {
			v := rng.Float64()
			return Color{v, v, v, alpha * rng.Float64()}
		})
	}
}

// GridPattern returns a grid of one-pixel lines every cell pixels,
// horizontal lines in hColor and vertical lines in vColor.
func GridPattern(cell int, hColor, vColor Color) PatternFunc {
	if cell < 2 {
		cell = 2
	}
	return func(w, h int) *ebiten.Image {
		return rasterize(w, h, func(x, y int) Color {
			switch {
			case y%cell == 0 && x%cell == 0:
				return blendOver(hColor, vColor)
			case y%cell == 0:
				return hColor
			case x%cell == 0:
				return vColor
			}
			return Color{}
		})
	}
}

// RadialGradient returns a circular gradient from c at the point (cx, cy),
// given as fractions of the size, fading linearly to transparent at radius
// pixels.
func RadialGradient(c Color, cx, cy, radius float64) PatternFunc {
	return func(w, h int) *ebiten.Image {
		px, py := cx*float64(w), cy*float64(h)
		return rasterize(w, h, func(x, y int) Color {
			dist := math.Hypot(float64(x)-px, float64(y)-py)
			t := 1 - dist/radius
			if t <= 0 {
				return Color{}
			}
			return c.WithAlpha(c.A * smoothstep(t))
		})
	}
}

// LinearGradient returns a gradient at angle degrees (0 = left to right,
// 90 = top to bottom) from c at the start edge, fading to transparent at
// stop (0-1) of the way across.
func LinearGradient(c Color, angle, stop float64) PatternFunc {
	sin, cos := math.Sincos(angle * degToRad)
	return func(w, h int) *ebiten.Image {
		// Project onto the direction vector, normalized so the far corner is 1.
		span := math.Abs(cos)*float64(w) + math.Abs(sin)*float64(h)
		ox := math.Min(0, cos) * float64(w)
		oy := math.Min(0, sin) * float64(h)
		return rasterize(w, h, func(x, y int) Color {
			t := (float64(x)*cos + float64(y)*sin - ox - oy) / span
			if t >= stop {
				return Color{}
			}
			return c.WithAlpha(c.A * (1 - t/stop))
		})
	}
}

// LayeredPattern composites patterns back to front into one image.
func LayeredPattern(layers ...PatternFunc) PatternFunc {
	return func(w, h int) *ebiten.Image {
		out := ebiten.NewImage(w, h)
		for _, layer := range layers {
			img := layer(w, h)
			out.DrawImage(img, nil)
			img.Deallocate()
		}
		return out
	}
}

// blendOver composites top over bottom in straight alpha.
func blendOver(top, bottom Color) Color {
	a := top.A + bottom.A*(1-top.A)
	if a == 0 {
		return Color{}
	}
	mix := func(t, b float64) float64 {
		return (t*top.A + b*bottom.A*(1-top.A)) / a
	}
	return Color{mix(top.R, bottom.R), mix(top.G, bottom.G), mix(top.B, bottom.B), a}
}

func smoothstep(t float64) float64 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}
