package offgrid

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- computeLocalTransform ---

func TestLocalTransformIdentity(t *testing.T) {
	e := NewElement("div")
	assertMatrix(t, "identity", computeLocalTransform(e), identityTransform)
}

func TestLocalTransformTranslation(t *testing.T) {
	e := NewElement("div")
	e.X = 10
	e.Y = 20
	assertMatrix(t, "translation", computeLocalTransform(e), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestLocalTransformMotionAddsToLayout(t *testing.T) {
	e := NewElement("div")
	e.X = 10
	e.Motion.X = 5
	e.Motion.Y = -3
	assertMatrix(t, "motion", computeLocalTransform(e), [6]float64{1, 0, 0, 1, 15, -3})
}

func TestLocalTransformPercentOfOwnSize(t *testing.T) {
	e := NewElement("div")
	e.SetSize(200, 50)
	e.Motion.XPercent = 10
	e.Motion.YPercent = -20
	m := computeLocalTransform(e)
	assertNear(t, "tx", m[4], 20)
	assertNear(t, "ty", m[5], -10)
}

func TestLocalTransformRotation90(t *testing.T) {
	e := NewElement("div")
	e.Motion.Rotation = 90
	// cos(90)=0, sin(90)=1 -> a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", computeLocalTransform(e), [6]float64{0, 1, -1, 0, 0, 0})
}

func TestLocalTransformRotatesAroundOrigin(t *testing.T) {
	e := NewElement("div")
	e.SetSize(100, 100)
	e.Motion.Rotation = 180
	m := computeLocalTransform(e)
	// The center stays put.
	cx, cy := transformPoint(m, 50, 50)
	assertNear(t, "cx", cx, 50)
	assertNear(t, "cy", cy, 50)
	x, y := transformPoint(m, 0, 0)
	assertNear(t, "corner x", x, 100)
	assertNear(t, "corner y", y, 100)
}

func TestLocalTransformRotateYFlattensWidth(t *testing.T) {
	e := NewElement("div")
	e.Motion.RotateY = 60
	m := computeLocalTransform(e)
	assertNear(t, "a", m[0], 0.5)
	assertNear(t, "d", m[3], 1)
}

func TestLocalTransformScale(t *testing.T) {
	e := NewElement("div")
	e.OriginX, e.OriginY = 0, 0
	e.Motion.Scale = 2
	assertMatrix(t, "scale", computeLocalTransform(e), [6]float64{2, 0, 0, 2, 0, 0})
}

// --- World transforms ---

func TestWorldTransformComposesParents(t *testing.T) {
	root := NewElement("body")
	parent := NewElement("section")
	parent.SetPosition(100, 200)
	child := NewElement("div")
	child.SetPosition(10, 20)
	root.AppendChild(parent)
	parent.AppendChild(child)

	updateWorldTransform(root, identityTransform, 1, false)
	assertMatrix(t, "child", child.worldTransform, [6]float64{1, 0, 0, 1, 110, 220})
}

func TestFixedElementEscapesAncestorTransforms(t *testing.T) {
	root := NewElement("body")
	content := NewElement("div")
	content.Motion.Y = -500
	content.Motion.Rotation = 15
	root.AppendChild(content)
	fixed := NewElement("nav")
	fixed.Fixed = true
	fixed.SetPosition(30, 40)
	content.AppendChild(fixed)

	updateWorldTransform(root, identityTransform, 1, false)
	assertMatrix(t, "fixed", fixed.worldTransform, [6]float64{1, 0, 0, 1, 30, 40})
	b := fixed.Bounds()
	assertNear(t, "bounds x", b.X, 30)
	assertNear(t, "bounds y", b.Y, 40)
}

func TestFixedElementInheritsAlpha(t *testing.T) {
	root := NewElement("body")
	root.Alpha = 0.5
	fixed := NewElement("nav")
	fixed.Fixed = true
	root.AppendChild(fixed)
	updateWorldTransform(root, identityTransform, 1, false)
	assertNear(t, "alpha", fixed.worldAlpha, 0.5)
}

func TestPageBoundsIgnoresMotion(t *testing.T) {
	root := NewElement("body")
	section := NewElement("section")
	section.SetPosition(0, 800)
	card := NewBox("div", 300, 200, ColorWhite)
	card.SetPosition(40, 100)
	card.Motion.Y = 60
	card.Motion.Rotation = 3
	root.AppendChild(section)
	section.AppendChild(card)

	r := card.PageBounds()
	assertNear(t, "x", r.X, 40)
	assertNear(t, "y", r.Y, 900)
	assertNear(t, "w", r.Width, 300)
	assertNear(t, "h", r.Height, 200)
}

func TestBoundsIncludesMotion(t *testing.T) {
	el := NewBox("div", 100, 50, ColorWhite)
	el.SetPosition(10, 10)
	el.Motion.X = 20
	b := el.Bounds()
	assertNear(t, "x", b.X, 30)
	assertNear(t, "w", b.Width, 100)
}

func TestWorldToLocalRoundTrip(t *testing.T) {
	root := NewElement("body")
	el := NewBox("div", 120, 80, ColorWhite)
	el.SetPosition(50, 60)
	el.Motion.Rotation = 30
	el.Motion.SkewX = 10
	root.AppendChild(el)
	updateWorldTransform(root, identityTransform, 1, false)

	wx, wy := el.LocalToWorld(25, 35)
	lx, ly := el.WorldToLocal(wx, wy)
	if math.Abs(lx-25) > 1e-6 || math.Abs(ly-35) > 1e-6 {
		t.Errorf("round trip = (%v, %v), want (25, 35)", lx, ly)
	}
}

func TestInvertSingularReturnsIdentity(t *testing.T) {
	assertMatrix(t, "singular", invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityTransform)
}

func TestDirtyFlagClearedAfterUpdate(t *testing.T) {
	root := NewElement("body")
	el := NewElement("div")
	root.AppendChild(el)
	updateWorldTransform(root, identityTransform, 1, false)
	if el.transformDirty {
		t.Error("transform should be clean after update")
	}
	el.Set(PropX, 4)
	if !el.transformDirty {
		t.Error("Set should mark the element dirty")
	}
}
