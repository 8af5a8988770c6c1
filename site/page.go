// Package site composes the landing page: the hero, the bento grid, the
// diagonal panels, the footer and the floating menu.
package site

import (
	"go.uber.org/zap"

	"github.com/phanxgames/offgrid"
)

// Section builds one part of the page and binds its effects.
type Section interface {
	// Name identifies the section in logs and scope names.
	Name() string
	// Build returns a detached tree sized for the builder's viewport. Fixed
	// roots float over the page; all others stack top to bottom.
	Build(b *Builder) *offgrid.Element
	// Animate registers the section's effects on s.
	Animate(s *offgrid.Scope, root *offgrid.Element, cfg offgrid.EffectConfig)
}

// DefaultSections returns the page sections in document order.
func DefaultSections() []Section {
	return []Section{Menu{}, Hero{}, Bento{}, Diagonal{}, Footer{}}
}

// Wrapper and content IDs required by the scroll smoother.
const (
	WrapperID = "smooth-wrapper"
	ContentID = "smooth-content"
)

// EnsureScrollWrapper makes sure the body holds a #smooth-wrapper with a
// #smooth-content inside it. Missing containers are created and existing
// children moved into the content container in order. Calling it again
// changes nothing.
func EnsureScrollWrapper(doc *offgrid.Document) (wrapper, content *offgrid.Element) {
	body := doc.Body()
	wrapper = doc.GetElementByID(WrapperID)
	content = doc.GetElementByID(ContentID)
	switch {
	case wrapper == nil:
		wrapper = offgrid.NewElement("div")
		wrapper.ID = WrapperID
		content = offgrid.NewElement("div")
		content.ID = ContentID
		for body.NumChildren() > 0 {
			content.AppendChild(body.FirstChild())
		}
		wrapper.AppendChild(content)
		body.AppendChild(wrapper)
	case content == nil:
		content = offgrid.NewElement("div")
		content.ID = ContentID
		for wrapper.NumChildren() > 0 {
			content.AppendChild(wrapper.FirstChild())
		}
		wrapper.AppendChild(content)
	}
	return wrapper, content
}

type mounted struct {
	section Section
	root    *offgrid.Element
	scope   *offgrid.Scope
}

// Page is the root composition. Mount builds and animates every section;
// Unmount closes their scopes and removes them.
type Page struct {
	doc      *offgrid.Document
	choreo   *offgrid.Choreographer
	theme    *Theme
	sections []Section
	log      *zap.Logger

	wrapped bool
	content *offgrid.Element
	grain   *offgrid.Element
	mounts  []mounted
	builtW  float64

	removeHook func()
	resizeWait float64
}

// NewPage creates a page over doc. With no sections the default set is used.
func NewPage(doc *offgrid.Document, choreo *offgrid.Choreographer, theme *Theme, sections ...Section) *Page {
	if len(sections) == 0 {
		sections = DefaultSections()
	}
	return &Page{
		doc:      doc,
		choreo:   choreo,
		theme:    theme,
		sections: sections,
		log:      doc.Logger().Named("page"),
	}
}

// Mounted reports whether the page is mounted.
func (p *Page) Mounted() bool { return len(p.mounts) > 0 }

// Scopes returns the open scope of every mounted section, in mount order.
func (p *Page) Scopes() []*offgrid.Scope {
	out := make([]*offgrid.Scope, len(p.mounts))
	for i, m := range p.mounts {
		out[i] = m.scope
	}
	return out
}

// Content returns the scroll content container, or nil before the first
// mount.
func (p *Page) Content() *offgrid.Element { return p.content }

// Mount builds every section, restructures the tree for smooth scrolling on
// the first call, attaches the smoother and registers the effects. Mounting
// a mounted page is a no-op.
func (p *Page) Mount() {
	if p.Mounted() {
		return
	}
	w, h := p.doc.Viewport()
	b := NewBuilder(p.theme, w, h)
	p.builtW = w

	parent := p.doc.Body()
	if p.content != nil && p.doc.Contains(p.content) {
		parent = p.content
	}

	p.grain = offgrid.NewPattern("grain", w, h, offgrid.NoisePattern(13, 1))
	p.grain.ID = "grain"
	p.grain.Fixed = true
	p.grain.Alpha = 0.06
	p.grain.Blend = offgrid.BlendSoftLight
	p.grain.Layer = offgrid.LayerOverlay
	parent.AppendChild(p.grain)

	y := 0.0
	for _, sec := range p.sections {
		root := sec.Build(b)
		if !root.Fixed {
			root.SetPosition(0, y)
			y += root.Height
		}
		parent.AppendChild(root)
		p.mounts = append(p.mounts, mounted{section: sec, root: root})
	}
	p.doc.Body().SetSize(w, y)

	if !p.wrapped {
		_, p.content = EnsureScrollWrapper(p.doc)
		p.wrapped = true
	}

	cfg := p.choreo.Config()
	if cfg.Smooth > 0 {
		p.doc.NewScrollSmoother(p.content, cfg.Smooth)
	}

	for i := range p.mounts {
		m := &p.mounts[i]
		m.scope = p.choreo.Scope(m.section.Name())
		m.section.Animate(m.scope, m.root, cfg)
	}

	p.removeHook = p.doc.OnFrame(p.watchResize)
	if n := p.doc.CheckTree(); n > 0 {
		p.log.Warn("page tree has problems", zap.Int("warnings", n))
	}
	p.log.Info("page mounted",
		zap.Int("sections", len(p.mounts)),
		zap.Float64("width", w),
		zap.Float64("height", y))
}

// Unmount closes every section scope in reverse mount order and removes the
// section trees. The scroll wrapper stays in place.
func (p *Page) Unmount() {
	if !p.Mounted() {
		return
	}
	if p.removeHook != nil {
		p.removeHook()
		p.removeHook = nil
	}
	for i := len(p.mounts) - 1; i >= 0; i-- {
		p.mounts[i].scope.Close()
	}
	for i := len(p.mounts) - 1; i >= 0; i-- {
		p.mounts[i].root.Dispose()
	}
	p.mounts = nil
	if p.grain != nil {
		p.grain.Dispose()
		p.grain = nil
	}
	if s := p.doc.Smoother(); s != nil {
		s.Kill()
	}
	p.log.Info("page unmounted")
}

// Remount unmounts and mounts again, keeping the scroll position.
func (p *Page) Remount() {
	y := p.doc.ScrollY()
	p.Unmount()
	p.Mount()
	p.doc.ScrollTo(y)
}

// Apply swaps the effect tuning and remounts so every effect picks it up.
func (p *Page) Apply(cfg offgrid.EffectConfig) {
	p.choreo.SetConfig(cfg)
	if p.Mounted() {
		p.Remount()
	}
}

// resizeSettle is how long the width must stay changed before the page is
// rebuilt for it.
const resizeSettle = 0.25

// watchResize rebuilds the page once the viewport width settles on a new
// value.
func (p *Page) watchResize(dt float64) {
	w, _ := p.doc.Viewport()
	if w == p.builtW {
		p.resizeWait = 0
		return
	}
	p.resizeWait += dt
	if p.resizeWait < resizeSettle {
		return
	}
	p.resizeWait = 0
	p.log.Debug("viewport resized, rebuilding", zap.Float64("width", w))
	p.Remount()
}
