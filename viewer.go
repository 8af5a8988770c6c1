package offgrid

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Viewer is an opaque embedded scene. The page only controls where it is
// drawn and in which order; everything inside is the viewer's business.
type Viewer interface {
	// Update advances the scene by dt seconds.
	Update(dt float64)
	// Draw renders the scene into the w x h box placed by transform.
	Draw(dst *ebiten.Image, transform [6]float64, w, h, alpha float64)
}

// WireframeViewer is the default Viewer: a slowly tumbling wireframe solid
// whose shape, colors and spin are derived from a scene URL, so the same
// URL always renders the same scene.
type WireframeViewer struct {
	URL string

	verts  [][3]float64
	edges  [][2]int
	colors []Color
	spinX  float64
	spinY  float64
	angleX float64
	angleY float64
	t      float64
}

// NewWireframeViewer builds a viewer for the scene at url.
func NewWireframeViewer(url string, palette ...Color) *WireframeViewer {
	h := fnv.New64a()
	_, _ = h.Write([]byte(url))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>17|1))

	if len(palette) == 0 {
		palette = []Color{ColorWhite}
	}
	v := &WireframeViewer{
		URL:   url,
		spinX: 0.15 + rng.Float64()*0.25,
		spinY: 0.25 + rng.Float64()*0.35,
	}

	// A jittered UV sphere: rings x segments, each vertex pushed in or out.
	rings := 5 + rng.IntN(4)
	segs := 7 + rng.IntN(6)
	for r := 1; r < rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segs; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segs)
			rad := 0.75 + rng.Float64()*0.5
			v.verts = append(v.verts, [3]float64{
				rad * math.Sin(phi) * math.Cos(theta),
				rad * math.Cos(phi),
				rad * math.Sin(phi) * math.Sin(theta),
			})
			i := (r-1)*segs + s
			v.edges = append(v.edges, [2]int{i, (r-1)*segs + (s+1)%segs})
			if r > 1 {
				v.edges = append(v.edges, [2]int{i, i - segs})
			}
		}
	}
	for i := range v.edges {
		v.colors = append(v.colors, palette[i%len(palette)])
	}
	return v
}

// Update implements Viewer.
func (v *WireframeViewer) Update(dt float64) {
	v.t += dt
	v.angleX += v.spinX * dt
	v.angleY += v.spinY * dt
}

// Draw implements Viewer.
func (v *WireframeViewer) Draw(dst *ebiten.Image, transform [6]float64, w, h, alpha float64) {
	if len(v.verts) == 0 || alpha <= 0 {
		return
	}
	size := math.Min(w, h) * 0.4
	cx, cy := w/2, h/2
	sinX, cosX := math.Sincos(v.angleX)
	sinY, cosY := math.Sincos(v.angleY)
	breathe := 1 + 0.04*math.Sin(v.t*1.3)

	proj := make([]Vec2, len(v.verts))
	for i, p := range v.verts {
		x, y, z := p[0], p[1], p[2]
		y, z = y*cosX-z*sinX, y*sinX+z*cosX
		x, z = x*cosY+z*sinY, -x*sinY+z*cosY
		f := 3 / (3 + z) * size * breathe
		proj[i].X, proj[i].Y = transformPoint(transform, cx+x*f, cy+y*f)
	}
	for i, e := range v.edges {
		a, b := proj[e[0]], proj[e[1]]
		c := v.colors[i]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, c.WithAlpha(c.A*alpha*0.8).toRGBA(), true)
	}
}
