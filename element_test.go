package offgrid

import "testing"

func TestNewElementDefaults(t *testing.T) {
	e := NewElement("div")
	if e.Motion != IdentityMotion {
		t.Errorf("Motion = %+v, want identity", e.Motion)
	}
	if e.Alpha != 1 || e.Clip != 1 {
		t.Errorf("Alpha, Clip = %v, %v, want 1, 1", e.Alpha, e.Clip)
	}
	if !e.Visible {
		t.Error("new element should be visible")
	}
	if e.OriginX != 0.5 || e.OriginY != 0.5 {
		t.Errorf("origin = (%v, %v), want center", e.OriginX, e.OriginY)
	}
}

func TestClasses(t *testing.T) {
	e := NewElement("div").AddClass("reveal", "magnet", "reveal")
	if got := len(e.Classes()); got != 2 {
		t.Fatalf("classes = %v, want 2 unique", e.Classes())
	}
	if !e.HasClass("magnet") {
		t.Error("missing magnet")
	}
	e.RemoveClass("magnet")
	e.RemoveClass("absent")
	if e.HasClass("magnet") {
		t.Error("magnet should be removed")
	}
}

func TestAppendChildReparents(t *testing.T) {
	a := NewElement("a")
	b := NewElement("b")
	c := NewElement("c")
	a.AppendChild(c)
	b.AppendChild(c)
	if c.Parent != b {
		t.Error("c should belong to b")
	}
	if a.NumChildren() != 0 {
		t.Errorf("a children = %d, want 0", a.NumChildren())
	}
}

func TestAppendChildCyclePanics(t *testing.T) {
	a := NewElement("a")
	b := NewElement("b")
	a.AppendChild(b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on cycle")
		}
	}()
	b.AppendChild(a)
}

func TestInsertChildAt(t *testing.T) {
	p := NewElement("p")
	x := NewElement("x")
	y := NewElement("y")
	z := NewElement("z")
	p.AppendChild(x)
	p.AppendChild(z)
	p.InsertChildAt(y, 1)
	for i, want := range []*Element{x, y, z} {
		if p.ChildAt(i) != want {
			t.Errorf("child %d = %s, want %s", i, p.ChildAt(i).Tag, want.Tag)
		}
	}
	p.InsertChildAt(z, 0)
	if p.FirstChild() != z || p.NumChildren() != 3 {
		t.Error("moving an existing child to the front failed")
	}
}

func TestQueries(t *testing.T) {
	root := NewElement("body")
	sec := NewElement("section")
	sec.ID = "hero"
	a := NewElement("h1").AddClass("reveal")
	b := NewElement("p").AddClass("reveal")
	root.AppendChild(sec)
	sec.AppendChild(a)
	sec.AppendChild(b)

	if root.GetElementByID("hero") != sec {
		t.Error("GetElementByID failed")
	}
	if root.GetElementByID("nope") != nil {
		t.Error("unknown id should return nil")
	}
	got := root.QueryClass("reveal")
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("QueryClass order wrong: %v", got)
	}
}

func TestDisposeDetachesSubtree(t *testing.T) {
	doc := NewDocument(800, 600)
	sec := NewElement("section")
	child := NewElement("div")
	sec.AppendChild(child)
	doc.Body().AppendChild(sec)

	if !doc.Contains(child) {
		t.Fatal("child should be attached")
	}
	sec.Dispose()
	if doc.Contains(child) || doc.Contains(sec) {
		t.Error("disposed elements must not be contained")
	}
	if !child.IsDisposed() {
		t.Error("descendants should be disposed")
	}
	sec.Dispose() // idempotent
}

func TestContainsDetached(t *testing.T) {
	doc := NewDocument(800, 600)
	if doc.Contains(nil) {
		t.Error("nil is never contained")
	}
	if doc.Contains(NewElement("div")) {
		t.Error("detached element is not contained")
	}
}

func TestGetSetProps(t *testing.T) {
	e := NewElement("div")
	e.Apply(Props{PropX: 4, PropYPercent: 10, PropAlpha: 0.5, PropClip: 0.25, PropRotateX: 30})
	cases := []struct {
		p    Prop
		want float64
	}{
		{PropX, 4},
		{PropYPercent, 10},
		{PropAlpha, 0.5},
		{PropClip, 0.25},
		{PropRotateX, 30},
		{PropScale, 1},
	}
	for _, c := range cases {
		if got := e.Get(c.p); got != c.want {
			t.Errorf("Get(%s) = %v, want %v", c.p, got, c.want)
		}
	}
	if e.Get(numProps) != 0 {
		t.Error("unknown prop should read as zero")
	}
	if numProps.String() != "unknown" || PropSkewY.String() != "skewY" {
		t.Error("prop names wrong")
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ccff00")
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "r", c.R, 0.8)
	assertNear(t, "g", c.G, 1)
	assertNear(t, "b", c.B, 0)
	assertNear(t, "a", c.A, 1)

	c, err = ParseHex("ffffff80")
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "a", c.A, 128.0/255)

	for _, bad := range []string{"", "#fff", "#gggggg", "#1234567"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) should fail", bad)
		}
	}
}

func TestCheckTreeFlagsDuplicateIDs(t *testing.T) {
	doc := NewDocument(800, 600)
	a := NewElement("section")
	a.ID = "hero"
	b := NewElement("section")
	b.ID = "hero"
	doc.Body().AppendChild(a)
	doc.Body().AppendChild(b)
	if got := doc.CheckTree(); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}
}

func TestSanitizeLabel(t *testing.T) {
	cases := map[string]string{
		"hero":        "hero",
		" bento grid": "bento_grid",
		"":            "unlabeled",
		"a/b":         "a_b",
	}
	for in, want := range cases {
		if got := sanitizeLabel(in); got != want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
