package text

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func goFont(t *testing.T) *Font {
	t.Helper()
	f := DefaultRegistry().Font("Go", "normal", "normal")
	if f == nil {
		t.Fatal("default registry has no Go font")
	}
	return f
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		family, weight, style string
		wantFamily            string
		bold, italic          bool
	}{
		{"Go", "normal", "normal", "Go", false, false},
		{"go", "bold", "", "Go", true, false},
		{"Go", "700", "italic", "Go", true, true},
		{"Go", "500", "oblique", "Go", false, true},
		{"Go Mono", "", "", "Go Mono", false, false},
		{"'Playfair Display', monospace", "", "", "Go Mono", false, false},
		{"Comic Sans", "bold", "", "Go", true, false},
		{"", "", "", "Go", false, false},
	}
	for _, tt := range tests {
		f := r.Font(tt.family, tt.weight, tt.style)
		if f == nil {
			t.Fatalf("Font(%q) = nil", tt.family)
		}
		if f.Family() != tt.wantFamily || f.Bold() != tt.bold || f.Italic() != tt.italic {
			t.Errorf("Font(%q, %q, %q) = %s bold=%v italic=%v", tt.family, tt.weight, tt.style,
				f.Family(), f.Bold(), f.Italic())
		}
	}
}

func TestRegistryVariantFallback(t *testing.T) {
	r := NewRegistry()
	if r.Font("Go", "", "") != nil {
		t.Fatal("empty registry should return nil")
	}
	regular := DefaultRegistry().Font("Go", "", "")
	r.add("Brand", regular)
	r.SetFallback("Brand")
	if f := r.Font("Brand", "bold", "italic"); f != regular {
		t.Error("missing variants should fall back to regular")
	}
	if f := r.Font("Unknown", "", ""); f != regular {
		t.Error("unknown family should use the fallback family")
	}
	if r.Families() != 1 {
		t.Errorf("Families() = %d, want 1", r.Families())
	}
	if err := r.Register("Broken", false, false, []byte("not a font")); !errors.Is(err, ErrInvalidFont) {
		t.Errorf("Register(garbage) error = %v", err)
	}
}

func TestIsBold(t *testing.T) {
	for w, want := range map[string]bool{
		"bold": true, "BOLDER": true, "600": true, "900": true,
		"": false, "normal": false, "500": false, "heavy": false,
	} {
		if got := IsBold(w); got != want {
			t.Errorf("IsBold(%q) = %v, want %v", w, got, want)
		}
	}
}

func TestShape(t *testing.T) {
	f := goFont(t)
	glyphs := f.Shape([]rune("Hello"), 20)
	if len(glyphs) != 5 {
		t.Fatalf("Shape(Hello) = %d glyphs, want 5", len(glyphs))
	}
	for i, g := range glyphs {
		if g.Cluster != i || !(g.Advance > 0) || g.ID == 0 {
			t.Errorf("glyph %d = %+v", i, g)
		}
	}
	if f.Shape(nil, 20) != nil || f.Shape([]rune("x"), 0) != nil {
		t.Error("empty input or size should shape to nil")
	}
	if narrow, wide := f.Measure("ii", 20), f.Measure("WW", 20); !(narrow < wide) {
		t.Errorf("Measure(ii) = %v, Measure(WW) = %v", narrow, wide)
	}
	if a, b := f.Measure("abc", 10), f.Measure("abc", 20); math.Abs(b-2*a) > 1 {
		t.Errorf("advances should scale with size: %v vs %v", a, b)
	}
}

func TestMetrics(t *testing.T) {
	m := goFont(t).Metrics(20)
	if !(m.Ascent > 10 && m.Ascent < 25) || !(m.Descent > 0 && m.Descent < 10) || !(m.XHeight > 0) {
		t.Errorf("Metrics(20) = %+v", m)
	}
}

func TestCase(t *testing.T) {
	tests := []struct {
		c    Case
		in   string
		want string
	}{
		{CaseUppercase, "best friends", "BEST FRIENDS"},
		{CaseLowercase, "Best FRIENDS", "best friends"},
		{CaseCapitalize, "best friends", "Best Friends"},
		{CaseCapitalize, "mcDonald", "McDonald"},
		{"UPPERCASE", "straße", "STRASSE"},
		{CaseNone, "Keep", "Keep"},
		{"shout", "Keep", "Keep"},
	}
	for _, tt := range tests {
		if got := tt.c.Apply(tt.in); got != tt.want {
			t.Errorf("%s.Apply(%q) = %q, want %q", tt.c, tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"héllo", 2, "hé"},
		{"héllo", 5, "héllo"},
		{"héllo", 9, "héllo"},
		{"héllo", 0, "héllo"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func lineTexts(l *Layout) []string {
	out := make([]string, len(l.Lines))
	for i, ln := range l.Lines {
		out[i] = ln.Text
	}
	return out
}

func TestLayoutWrapping(t *testing.T) {
	f := goFont(t)
	word := f.Measure("friend", 20)
	space := f.Measure(" ", 20)

	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"no box", "friend friend friend", 0, []string{"friend friend friend"}},
		{"fits", "friend", word + 1, []string{"friend"}},
		{"two per line", "friend friend friend", 2*word + space + 1, []string{"friend friend", "friend"}},
		{"explicit newline", "a\nb", 500, []string{"a", "b"}},
		{"empty", "", 100, []string{""}},
		{"hyphen", "best-friend", math.Max(f.Measure("best-", 20), word) + 1, []string{"best-", "friend"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout(f, tt.text, Options{Size: 20, Width: tt.width})
			if got := lineTexts(l); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutBreaksLongWords(t *testing.T) {
	f := goFont(t)
	width := f.Measure("WWW", 20) + 0.5
	l := NewLayout(f, "WWWWWWWW", Options{Size: 20, Width: width})
	if len(l.Lines) != 3 {
		t.Fatalf("lines = %q, want 3 lines", lineTexts(l))
	}
	for _, ln := range l.Lines {
		if ln.Width > width {
			t.Errorf("line %q is %v wide, box is %v", ln.Text, ln.Width, width)
		}
	}
}

func TestLayoutAlignment(t *testing.T) {
	f := goFont(t)
	const w, h = 300.0, 100.0
	base := Options{Size: 20, Width: w, Height: h}

	left := NewLayout(f, "Hi", base)
	if left.Lines[0].X != 0 {
		t.Errorf("left X = %v", left.Lines[0].X)
	}

	center := base
	center.Align = AlignCenter
	c := NewLayout(f, "Hi", center)
	if want := (w - c.Lines[0].Width) / 2; math.Abs(c.Lines[0].X-want) > 1e-9 {
		t.Errorf("center X = %v, want %v", c.Lines[0].X, want)
	}

	right := base
	right.Align = AlignRight
	r := NewLayout(f, "Hi", right)
	if got := r.Lines[0].X + r.Lines[0].Width; math.Abs(got-w) > 1e-9 {
		t.Errorf("right edge = %v, want %v", got, w)
	}

	top := NewLayout(f, "Hi", base)
	mid := base
	mid.VerticalAlign = AlignMiddle
	bottom := base
	bottom.VerticalAlign = AlignBottom
	m := NewLayout(f, "Hi", mid)
	b := NewLayout(f, "Hi", bottom)
	lh := top.LineHeight()
	if math.Abs(lh-24) > 1e-9 {
		t.Errorf("LineHeight() = %v, want 24", lh)
	}
	if d := m.Lines[0].Baseline - top.Lines[0].Baseline; math.Abs(d-(h-lh)/2) > 1e-9 {
		t.Errorf("middle shift = %v, want %v", d, (h-lh)/2)
	}
	if d := b.Lines[0].Baseline - top.Lines[0].Baseline; math.Abs(d-(h-lh)) > 1e-9 {
		t.Errorf("bottom shift = %v, want %v", d, h-lh)
	}
}

func TestLayoutLetterSpacing(t *testing.T) {
	f := goFont(t)
	plain := NewLayout(f, "abcd", Options{Size: 20})
	spaced := NewLayout(f, "abcd", Options{Size: 20, LetterSpacing: 2})
	if d := spaced.Lines[0].Width - plain.Lines[0].Width; math.Abs(d-8) > 1e-9 {
		t.Errorf("letter spacing added %v, want 8", d)
	}
	g := spaced.Lines[0].Glyphs
	if g[1].X-g[0].X <= plain.Lines[0].Glyphs[1].X-plain.Lines[0].Glyphs[0].X {
		t.Error("glyphs should move apart with letter spacing")
	}
}

func TestLayoutPath(t *testing.T) {
	f := goFont(t)
	l := NewLayout(f, "Go", Options{Size: 40, Width: 200, Height: 60})
	if l.Empty() {
		t.Fatal("layout of Go is empty")
	}
	p := l.Path()
	pb := p.Bounds()
	if pb.Empty() {
		t.Fatal("glyph path is empty")
	}
	lb := l.Bounds()
	if pb.X < lb.X-1 || pb.X+pb.Width > lb.X+lb.Width+1 || pb.Y < lb.Y-1 || pb.Y+pb.Height > lb.Y+lb.Height+1 {
		t.Errorf("glyph bounds %+v escape line bounds %+v", pb, lb)
	}

	spaces := NewLayout(f, "   ", Options{Size: 40})
	if !spaces.Path().Empty() {
		t.Error("spaces should not produce outlines")
	}

	if u := l.DecorationPath(DecorationUnderline).Bounds(); u.Y < l.Lines[0].Baseline {
		t.Errorf("underline at %v is above the baseline %v", u.Y, l.Lines[0].Baseline)
	}
	if s := l.DecorationPath(DecorationLineThrough).Bounds(); s.Y > l.Lines[0].Baseline {
		t.Errorf("line-through at %v is below the baseline", s.Y)
	}
	if l.DecorationPath(DecorationNone) != nil || l.DecorationPath("blink") != nil {
		t.Error("none and unknown decorations should be nil")
	}
}

func TestLayoutDegenerate(t *testing.T) {
	for _, opts := range []Options{{Size: 0}, {Size: -3}, {Size: math.Inf(1)}, {Size: math.NaN()}} {
		if l := NewLayout(goFont(t), "x", opts); len(l.Lines) != 0 {
			t.Errorf("size %v: %d lines", opts.Size, len(l.Lines))
		}
	}
	if l := NewLayout(nil, "x", Options{Size: 10}); len(l.Lines) != 0 {
		t.Error("nil font should lay out nothing")
	}
}
