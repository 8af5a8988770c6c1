package offgrid

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

const degToRad = math.Pi / 180

// computeLocalTransform computes the local affine matrix from the element's
// layout and motion. Returns [a, b, c, d, tx, ty].
//
// Composition order, matching CSS "translate rotate skew scale" around the
// transform origin:
//
//	Translate(-origin) -> Scale -> Skew -> Rotate -> Translate(origin + position)
func computeLocalTransform(e *Element) [6]float64 {
	m := &e.Motion

	sx := m.Scale
	sy := m.Scale
	if m.RotateY != 0 {
		sx *= math.Cos(m.RotateY * degToRad)
	}
	if m.RotateX != 0 {
		sy *= math.Cos(m.RotateX * degToRad)
	}

	sin, cos := math.Sincos((e.Rotation + m.Rotation) * degToRad)

	var tanSkewX, tanSkewY float64
	if skx := e.SkewX + m.SkewX; skx != 0 {
		tanSkewX = math.Tan(skx * degToRad)
	}
	if sky := e.SkewY + m.SkewY; sky != 0 {
		tanSkewY = math.Tan(sky * degToRad)
	}

	// After Scale * Translate(-origin):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	//
	// After Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := e.OriginX * e.Width
	py := e.OriginY * e.Height
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(origin + position + motion):
	x := e.X + px + m.X + m.XPercent/100*e.Width
	y := e.Y + py + m.Y + m.YPercent/100*e.Height
	return [6]float64{ra, rb, rc, rd, rtx + x, rty + y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// parentFrame returns the transform and alpha a child inherits. Fixed
// elements escape every ancestor transform but still inherit opacity.
func parentFrame(child *Element, parentTransform [6]float64) [6]float64 {
	if child.Fixed {
		return identityTransform
	}
	return parentTransform
}

// updateWorldTransform recomputes an element's worldTransform and worldAlpha.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this element even if it's not dirty.
func updateWorldTransform(e *Element, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := e.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(e)
		e.worldTransform = multiplyAffine(parentFrame(e, parentTransform), local)
		e.worldAlpha = parentAlpha * e.Alpha
		e.transformDirty = false
	}

	for _, child := range e.children {
		updateWorldTransform(child, e.worldTransform, e.worldAlpha, recompute)
	}
}

// --- Property setters ---

// SetPosition sets the element's layout X and Y and marks it dirty.
func (e *Element) SetPosition(x, y float64) {
	e.X = x
	e.Y = y
	e.transformDirty = true
}

// SetSize sets the element's layout size and marks it dirty.
func (e *Element) SetSize(w, h float64) {
	e.Width = w
	e.Height = h
	e.transformDirty = true
}

// SetAlpha sets the element's alpha and marks it dirty.
func (e *Element) SetAlpha(a float64) {
	e.Alpha = a
	e.transformDirty = true
}

// MarkDirty marks the element's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (e *Element) MarkDirty() {
	e.transformDirty = true
}

// --- Coordinate conversion ---

// WorldToLocal converts a viewport-space point to this element's local
// coordinate space using the transform computed on the last frame.
func (e *Element) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(e.worldTransform)
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to viewport space.
func (e *Element) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(e.worldTransform, lx, ly)
}

// freshWorldTransform walks the ancestor chain and composes the current
// transform without relying on the per-frame cache.
func (e *Element) freshWorldTransform() [6]float64 {
	local := computeLocalTransform(e)
	if e.Fixed || e.Parent == nil {
		return local
	}
	return multiplyAffine(e.Parent.freshWorldTransform(), local)
}

// Bounds returns the viewport-space axis-aligned bounding box of the element
// including every animated transform, like getBoundingClientRect.
func (e *Element) Bounds() Rect {
	return worldAABB(e.freshWorldTransform(), e.Width, e.Height)
}

// PageBounds returns the element's untransformed layout rectangle in page
// coordinates, summing layout offsets up the ancestor chain (offsetTop
// semantics). Animated motion and scrolling are ignored, so scroll triggers
// stay stable while their targets move.
func (e *Element) PageBounds() Rect {
	x, y := 0.0, 0.0
	for p := e; p != nil; p = p.Parent {
		x += p.X
		y += p.Y
		if p.Fixed {
			break
		}
	}
	return Rect{X: x, Y: y, Width: e.Width, Height: e.Height}
}

// worldAABB computes the axis-aligned bounding box for a rectangle of size
// (w, h) transformed by the given affine matrix.
func worldAABB(transform [6]float64, w, h float64) Rect {
	x0, y0 := transformPoint(transform, 0, 0)
	x1, y1 := transformPoint(transform, w, 0)
	x2, y2 := transformPoint(transform, w, h)
	x3, y3 := transformPoint(transform, 0, h)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
