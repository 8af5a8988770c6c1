package offgrid

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandFill   CommandType = iota // solid rectangle
	CommandImage                     // textured rectangle (text, patterns, offscreen output)
	CommandStroke                    // rectangle outline
	CommandViewer                    // embedded scene
)

// color32 is a compact RGBA color using float32, for render commands only.
// Not premultiplied.
type color32 struct {
	R, G, B, A float32
}

func toColor32(c Color, alpha float64) color32 {
	return color32{float32(c.R), float32(c.G), float32(c.B), float32(c.A * alpha)}
}

// RenderCommand is a single draw instruction emitted during tree traversal.
type RenderCommand struct {
	Type          CommandType
	Transform     [6]float64
	Width, Height float64
	Color         color32
	Blend         BlendMode
	Layer         Layer
	treeOrder     int // assigned during traversal for stable sort

	image       *ebiten.Image
	strokeWidth float64
	viewer      Viewer
}

// sortedChildren returns e's children in ZIndex order, rebuilding the cached
// order when it is stale.
func sortedChildren(e *Element) []*Element {
	if len(e.children) == 0 {
		return nil
	}
	if !e.childrenSorted {
		rebuildSortedChildren(e)
	}
	if e.sortedChildren != nil {
		return e.sortedChildren
	}
	return e.children
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order with a
// stable insertion sort; children are few and usually already ordered.
func rebuildSortedChildren(e *Element) {
	nc := len(e.children)
	if cap(e.sortedChildren) < nc {
		e.sortedChildren = make([]*Element, nc)
	}
	e.sortedChildren = e.sortedChildren[:nc]
	copy(e.sortedChildren, e.children)
	for i := 1; i < nc; i++ {
		key := e.sortedChildren[i]
		j := i - 1
		for j >= 0 && e.sortedChildren[j].ZIndex > key.ZIndex {
			e.sortedChildren[j+1] = e.sortedChildren[j]
			j--
		}
		e.sortedChildren[j+1] = key
	}
	e.childrenSorted = true
}

// traverse walks the tree depth-first and emits render commands. Transforms
// are composed on the way down so offscreen passes can reuse it with a
// different parent frame.
func (d *Document) traverse(e *Element, parentTransform [6]float64, parentAlpha float64, parentLayer Layer, treeOrder *int) {
	if !e.Visible {
		return
	}
	transform := multiplyAffine(parentFrame(e, parentTransform), computeLocalTransform(e))
	alpha := parentAlpha * e.Alpha
	if alpha <= 0 {
		return
	}
	layer := parentLayer
	if e.Layer > layer {
		layer = e.Layer
	}

	if e.Clip < 1 {
		if e.Clip <= 0 {
			return
		}
		d.renderClipped(e, transform, alpha, layer, treeOrder)
		return
	}

	d.emitElement(e, transform, alpha, layer, treeOrder)
	for _, child := range sortedChildren(e) {
		d.traverse(child, transform, alpha, layer, treeOrder)
	}
}

// emitElement emits the commands for a single element: glow, fill, content
// and border, back to front.
func (d *Document) emitElement(e *Element, transform [6]float64, alpha float64, layer Layer, treeOrder *int) {
	push := func(cmd RenderCommand) {
		*treeOrder++
		cmd.Layer = layer
		cmd.treeOrder = *treeOrder
		if cmd.Blend == BlendNormal {
			cmd.Blend = e.Blend
		}
		d.commands = append(d.commands, cmd)
	}

	if e.Glow.A > 0 && e.Width > 0 && e.Height > 0 {
		for i := glowRings; i >= 1; i-- {
			g := float64(i) * glowSpread / glowRings
			push(RenderCommand{
				Type:      CommandFill,
				Transform: translateLocal(transform, -g, -g),
				Width:     e.Width + 2*g,
				Height:    e.Height + 2*g,
				Color:     toColor32(e.Glow, alpha/glowRings),
				Blend:     BlendAdd,
			})
		}
	}

	if e.Fill.A > 0 && e.Width > 0 && e.Height > 0 {
		push(RenderCommand{
			Type:      CommandFill,
			Transform: transform,
			Width:     e.Width,
			Height:    e.Height,
			Color:     toColor32(e.Fill, alpha),
		})
	}

	switch e.Kind {
	case KindText:
		if e.Text == nil {
			break
		}
		if img := e.Text.render(); img != nil {
			b := img.Bounds()
			push(RenderCommand{
				Type:      CommandImage,
				Transform: translateLocal(transform, -e.Text.pad, -e.Text.pad),
				Width:     float64(b.Dx()),
				Height:    float64(b.Dy()),
				Color:     color32{1, 1, 1, float32(alpha)},
				image:     img,
			})
		}
	case KindPattern:
		if img := e.ensurePattern(); img != nil {
			b := img.Bounds()
			push(RenderCommand{
				Type:      CommandImage,
				Transform: transform,
				Width:     float64(b.Dx()),
				Height:    float64(b.Dy()),
				Color:     color32{1, 1, 1, float32(alpha)},
				image:     img,
			})
		}
	case KindViewer:
		if e.Viewer != nil {
			push(RenderCommand{
				Type:      CommandViewer,
				Transform: transform,
				Width:     e.Width,
				Height:    e.Height,
				Color:     color32{1, 1, 1, float32(alpha)},
				viewer:    e.Viewer,
			})
		}
	}

	if e.Border.A > 0 && e.BorderWidth > 0 {
		push(RenderCommand{
			Type:        CommandStroke,
			Transform:   transform,
			Width:       e.Width,
			Height:      e.Height,
			Color:       toColor32(e.Border, alpha),
			strokeWidth: e.BorderWidth,
		})
	}
}

const (
	glowRings  = 4
	glowSpread = 48.0
)

// ensurePattern generates the pattern image on first use.
func (e *Element) ensurePattern() *ebiten.Image {
	if e.patternImage != nil || e.Pattern == nil {
		return e.patternImage
	}
	w, h := int(math.Ceil(e.Width)), int(math.Ceil(e.Height))
	if w <= 0 || h <= 0 {
		return nil
	}
	e.patternImage = e.Pattern(w, h)
	return e.patternImage
}

// translateLocal returns transform * Translate(lx, ly).
func translateLocal(m [6]float64, lx, ly float64) [6]float64 {
	return [6]float64{
		m[0], m[1], m[2], m[3],
		m[0]*lx + m[2]*ly + m[4],
		m[1]*lx + m[3]*ly + m[5],
	}
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same
// position as b. Using <= for treeOrder keeps the sort stable.
func commandLessOrEqual(a, b *RenderCommand) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts d.commands in place using d.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations once the buffer reaches its
// high-water mark.
func (d *Document) mergeSort() {
	n := len(d.commands)
	if n <= 1 {
		return
	}
	if cap(d.sortBuf) < n {
		d.sortBuf = make([]RenderCommand, n)
	}
	d.sortBuf = d.sortBuf[:n]

	a := d.commands
	b := d.sortBuf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(d.commands, d.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
