package pairkit

import (
	"math"
	"testing"
)

func TestParseBlendMode(t *testing.T) {
	tests := []struct {
		in     string
		want   BlendMode
		wantOK bool
	}{
		{"", BlendNormal, true},
		{"source-over", BlendNormal, true},
		{"Multiply", BlendMultiply, true},
		{" soft-light ", BlendSoftLight, true},
		{"exclusion", BlendExclusion, true},
		{"hue", BlendNormal, false},
	}
	for _, tt := range tests {
		got, ok := ParseBlendMode(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBlendMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
	for m := BlendNormal; m <= BlendExclusion; m++ {
		if got, ok := ParseBlendMode(m.String()); !ok || got != m {
			t.Errorf("round trip of %v failed", m)
		}
	}
}

func TestBlendComposite(t *testing.T) {
	// Opaque source over opaque backdrop: the result is B(Cs, Cb).
	tests := []struct {
		mode BlendMode
		s, d float64
		want float64
	}{
		{BlendNormal, 0.25, 0.75, 0.25},
		{BlendMultiply, 0.5, 0.5, 0.25},
		{BlendScreen, 0.5, 0.5, 0.75},
		{BlendDarken, 0.2, 0.6, 0.2},
		{BlendLighten, 0.2, 0.6, 0.6},
		{BlendDifference, 0.2, 0.6, 0.4},
		{BlendExclusion, 0.5, 0.5, 0.5},
		{BlendOverlay, 0.5, 0.25, 0.25},
		{BlendHardLight, 0.25, 0.5, 0.25},
		{BlendColorDodge, 0.5, 0.25, 0.5},
		{BlendColorBurn, 0.5, 0.75, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			r, _, _, a := tt.mode.composite(tt.s, 0, 0, 1, tt.d, 0, 0, 1)
			if math.Abs(r-tt.want) > 1e-9 || a != 1 {
				t.Errorf("composite = %v (alpha %v), want %v", r, a, tt.want)
			}
		})
	}
}

func TestBlendTransparentBackdrop(t *testing.T) {
	// Over a transparent backdrop every mode reduces to the source.
	for m := BlendNormal; m <= BlendExclusion; m++ {
		r, g, b, a := m.composite(0.3, 0.2, 0.1, 0.5, 0, 0, 0, 0)
		if r != 0.3 || g != 0.2 || b != 0.1 || a != 0.5 {
			t.Errorf("%v over transparent = %v %v %v %v", m, r, g, b, a)
		}
	}
}
