package offgrid

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Render texture pool ---

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions. After warmup, Acquire/Release are zero-alloc.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		return img
	}
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool. It is cleared on the next Acquire.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	key := poolKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// --- Clipped subtrees ---

// clipRows returns how many pixel rows of an element of height h are shown
// at the given clip fraction.
func clipRows(h, clip float64) int {
	return int(math.Ceil(h * clamp01(clip)))
}

// renderClipped draws e and its subtree into a pooled offscreen image in
// e's local space, then emits only the top Clip fraction of it at e's
// transform. The main command buffer is swapped out for the duration.
func (d *Document) renderClipped(e *Element, transform [6]float64, alpha float64, layer Layer, treeOrder *int) {
	w := int(math.Ceil(e.Width))
	h := int(math.Ceil(e.Height))
	rows := clipRows(e.Height, e.Clip)
	if w <= 0 || h <= 0 || rows <= 0 {
		return
	}

	rt := d.rtPool.Acquire(w, h)

	saved := d.commands
	if d.offscreenDepth == 0 {
		d.commands = d.offscreenCmds[:0]
	} else {
		d.commands = make([]RenderCommand, 0, 64)
	}
	d.offscreenDepth++

	order := 0
	d.emitElement(e, identityTransform, 1, layer, &order)
	for _, child := range sortedChildren(e) {
		d.traverse(child, identityTransform, 1, layer, &order)
	}
	d.mergeSort()
	d.submitBatches(rt)

	d.offscreenDepth--
	if d.offscreenDepth == 0 {
		d.offscreenCmds = d.commands[:0]
	}
	d.commands = saved

	d.rtDeferred = append(d.rtDeferred, rt)
	sub := rt.SubImage(image.Rect(0, 0, w, rows)).(*ebiten.Image)

	*treeOrder++
	d.commands = append(d.commands, RenderCommand{
		Type:      CommandImage,
		Transform: transform,
		Width:     float64(w),
		Height:    float64(rows),
		Color:     color32{1, 1, 1, float32(alpha)},
		Blend:     e.Blend,
		Layer:     layer,
		treeOrder: *treeOrder,
		image:     sub,
	})
}
