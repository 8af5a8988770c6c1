package offgrid

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Motion is the animated transform layered on top of an element's layout
// transform, equivalent to the inline transform a tweening library writes.
// Angles are in degrees. The zero value is not the identity: Scale must be 1.
type Motion struct {
	X, Y               float64 // translation in pixels
	XPercent, YPercent float64 // translation as a percentage of the element's own size
	Rotation           float64
	SkewX, SkewY       float64
	Scale              float64
	RotateX, RotateY   float64 // projected onto the plane as cos() scaling
}

// IdentityMotion is the resting Motion: no offset, unit scale.
var IdentityMotion = Motion{Scale: 1}

// PatternFunc produces the pixels of a KindPattern element at the given size.
type PatternFunc func(w, h int) *ebiten.Image

// elementIDCounter is a plain counter (no atomic, offgrid is single-threaded).
var elementIDCounter uint32

func nextSerial() uint32 {
	elementIDCounter++
	return elementIDCounter
}

// Element is the fundamental page tree node. A single flat struct is used for
// all kinds to avoid interface dispatch on the hot path.
type Element struct {
	// Identity
	ID     string
	Tag    string
	Kind   ElementKind
	serial uint32

	classes []string

	// Hierarchy
	Parent   *Element
	children []*Element

	// Layout, local to the parent. Rotation and skew are degrees.
	X, Y          float64
	Width, Height float64
	Rotation      float64
	SkewX, SkewY  float64
	// OriginX/OriginY are the transform origin as a fraction of the size.
	OriginX, OriginY float64

	// Fixed elements are positioned against the viewport and ignore every
	// ancestor transform, including scrolling.
	Fixed  bool
	ZIndex int
	Layer  Layer

	// Animated state.
	Motion Motion
	Alpha  float64
	// Clip is the revealed fraction of the element, top edge first:
	// 0 is fully clipped, 1 is fully visible.
	Clip float64

	// Style
	Fill        Color
	Border      Color
	BorderWidth float64
	Glow        Color
	Blend       BlendMode

	Text    *TextStyle
	Pattern PatternFunc
	Viewer  Viewer
	// Href is an in-page anchor ("#bento") followed on click.
	Href string

	Visible      bool
	Interactable bool

	// Computed
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Internal
	disposed       bool
	childrenSorted bool
	sortedChildren []*Element
	patternImage   *ebiten.Image
}

// elementDefaults sets the common default field values shared by all constructors.
func elementDefaults(e *Element) {
	e.serial = nextSerial()
	e.OriginX = 0.5
	e.OriginY = 0.5
	e.Motion = IdentityMotion
	e.Alpha = 1
	e.Clip = 1
	e.Visible = true
	e.transformDirty = true
	e.childrenSorted = true
}

// NewElement creates an empty box element, the equivalent of a plain div.
func NewElement(tag string) *Element {
	e := &Element{Tag: tag, Kind: KindBox}
	elementDefaults(e)
	return e
}

// NewBox creates a filled box of the given size.
func NewBox(tag string, w, h float64, fill Color) *Element {
	e := NewElement(tag)
	e.Width = w
	e.Height = h
	e.Fill = fill
	return e
}

// NewText creates a text element. Its size is measured from the font.
func NewText(tag, content string, font *Font) *Element {
	e := &Element{
		Tag:  tag,
		Kind: KindText,
		Text: &TextStyle{
			Content: content,
			Font:    font,
			Color:   ColorWhite,
			dirty:   true,
		},
	}
	elementDefaults(e)
	e.Width, e.Height = e.Text.measure()
	return e
}

// NewPattern creates an element whose pixels come from fn, generated once on
// first draw.
func NewPattern(tag string, w, h float64, fn PatternFunc) *Element {
	e := &Element{Tag: tag, Kind: KindPattern, Width: w, Height: h, Pattern: fn}
	elementDefaults(e)
	return e
}

// NewViewerElement creates an element that hosts an embedded scene viewer.
func NewViewerElement(tag string, w, h float64, v Viewer) *Element {
	e := &Element{Tag: tag, Kind: KindViewer, Width: w, Height: h, Viewer: v}
	elementDefaults(e)
	return e
}

// --- Classes ---

// AddClass adds one or more marker classes. Duplicates are ignored.
func (e *Element) AddClass(names ...string) *Element {
	for _, name := range names {
		if !e.HasClass(name) {
			e.classes = append(e.classes, name)
		}
	}
	return e
}

// RemoveClass removes a marker class. No-op if absent.
func (e *Element) RemoveClass(name string) {
	for i, c := range e.classes {
		if c == name {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the element carries the marker class.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

// Classes returns the marker classes. The returned slice MUST NOT be mutated.
func (e *Element) Classes() []string {
	return e.classes
}

// --- Tree manipulation ---

// AppendChild appends child to this element's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this element (cycle).
func (e *Element) AppendChild(child *Element) *Element {
	if child == nil {
		panic("offgrid: cannot append nil child")
	}
	if isAncestor(child, e) {
		panic("offgrid: appending child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = e
	e.children = append(e.children, child)
	e.childrenSorted = false
	markSubtreeDirty(child)
	return child
}

// InsertChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AppendChild.
func (e *Element) InsertChildAt(child *Element, index int) {
	if child == nil {
		panic("offgrid: cannot insert nil child")
	}
	if isAncestor(child, e) {
		panic("offgrid: inserting child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(e.children) {
		panic("offgrid: child index out of range")
	}
	child.Parent = e
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	e.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this element.
// Panics if child.Parent != e.
func (e *Element) RemoveChild(child *Element) {
	if child.Parent != e {
		panic("offgrid: child's parent is not this element")
	}
	e.removeChildByPtr(child)
	child.Parent = nil
	e.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this element from its parent.
// No-op if this element has no parent.
func (e *Element) RemoveFromParent() {
	if e.Parent == nil {
		return
	}
	e.Parent.RemoveChild(e)
}

// FirstChild returns the first child or nil.
func (e *Element) FirstChild() *Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (e *Element) Children() []*Element {
	return e.children
}

// NumChildren returns the number of children.
func (e *Element) NumChildren() int {
	return len(e.children)
}

// ChildAt returns the child at the given index.
func (e *Element) ChildAt(index int) *Element {
	return e.children[index]
}

// SetZIndex sets the element's ZIndex and marks the parent's children as unsorted.
func (e *Element) SetZIndex(z int) {
	if e.ZIndex == z {
		return
	}
	e.ZIndex = z
	if e.Parent != nil {
		e.Parent.childrenSorted = false
	}
}

// Root returns the topmost ancestor (the element itself when detached).
func (e *Element) Root() *Element {
	r := e
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// --- Queries ---

// Walk visits the element and its descendants depth-first in tree order.
// Returning false from fn skips the visited element's subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// GetElementByID returns the first element in the subtree with the given ID.
func (e *Element) GetElementByID(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if el.ID == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// QueryClass returns every descendant (and the element itself) carrying the
// marker class, in tree order.
func (e *Element) QueryClass(class string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.HasClass(class) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// --- Disposal ---

// Dispose removes this element from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (e *Element) Dispose() {
	if e.disposed {
		return
	}
	e.RemoveFromParent()
	e.dispose()
}

func (e *Element) dispose() {
	e.disposed = true
	for _, child := range e.children {
		child.Parent = nil
		child.dispose()
	}
	e.children = nil
	e.sortedChildren = nil
	e.Parent = nil
	e.Viewer = nil
	e.Pattern = nil
	if e.patternImage != nil {
		e.patternImage.Deallocate()
		e.patternImage = nil
	}
	if e.Text != nil {
		e.Text.release()
	}
}

// IsDisposed returns true if this element has been disposed.
func (e *Element) IsDisposed() bool {
	return e.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of (or equal to) node.
func isAncestor(candidate, node *Element) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from e.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (e *Element) removeChildByPtr(child *Element) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on an element and all its descendants.
func markSubtreeDirty(e *Element) {
	e.transformDirty = true
	for _, child := range e.children {
		markSubtreeDirty(child)
	}
}
