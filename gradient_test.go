package pairkit

import "testing"

func TestLinearGradientColorAt(t *testing.T) {
	g := NewLinearGradient(0, 0, 100, 0).
		AddColorStop(1, White).
		AddColorStop(0, Black)

	tests := []struct {
		name string
		x    float64
		want RGBA
	}{
		{"start", 0, Black},
		{"middle", 50, RGB(0.5, 0.5, 0.5)},
		{"end", 100, White},
		{"before start pads", -50, Black},
		{"after end pads", 150, White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ColorAt(tt.x, 42); !colorsClose(got, tt.want, 1e-9) {
				t.Errorf("ColorAt(%v) = %+v, want %+v", tt.x, got, tt.want)
			}
		})
	}
}

func TestGradientExtendModes(t *testing.T) {
	tests := []struct {
		mode ExtendMode
		t    float64
		want float64
	}{
		{ExtendPad, 1.25, 1},
		{ExtendRepeat, 1.25, 0.25},
		{ExtendReflect, 1.25, 0.75},
		{ExtendReflect, -0.25, 0.25},
	}
	for _, tt := range tests {
		if got := applyExtendMode(tt.t, tt.mode); got != tt.want {
			t.Errorf("applyExtendMode(%v, %d) = %v, want %v", tt.t, tt.mode, got, tt.want)
		}
	}
}

func TestGradientCoincidentStopsKeepOrder(t *testing.T) {
	red, blue := RGB(1, 0, 0), RGB(0, 0, 1)
	g := NewLinearGradient(0, 0, 10, 0).
		AddColorStop(0, red).
		AddColorStop(0.5, red).
		AddColorStop(0.5, blue).
		AddColorStop(1, blue)
	if got := g.ColorAt(2, 0); got != red {
		t.Errorf("ColorAt(2) = %+v, want red", got)
	}
	if got := g.ColorAt(8, 0); got != blue {
		t.Errorf("ColorAt(8) = %+v, want blue", got)
	}
}

func TestRadialGradientColorAt(t *testing.T) {
	g := NewRadialGradient(50, 50, 0, 50).
		AddColorStop(0, White).
		AddColorStop(1, Black)
	if got := g.ColorAt(50, 50); got != White {
		t.Errorf("centre = %+v, want White", got)
	}
	if got := g.ColorAt(50, 100); !colorsClose(got, Black, 1e-9) {
		t.Errorf("edge = %+v, want Black", got)
	}
	if got := g.ColorAt(75, 50); !colorsClose(got, RGB(0.5, 0.5, 0.5), 1e-9) {
		t.Errorf("half radius = %+v, want mid grey", got)
	}
}

func TestGradientWithoutStops(t *testing.T) {
	if got := NewLinearGradient(0, 0, 1, 1).ColorAt(0, 0); got != Transparent {
		t.Errorf("no stops = %+v, want Transparent", got)
	}
}
