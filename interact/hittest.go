package interact

import (
	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/layer"
	"github.com/gogpu/pairkit/scene"
	"github.com/gogpu/pairkit/template"
)

// HitTest returns the ID of the topmost layer under the canvas point
// (x, y), or "" when only the background is hit. Image slots are tested
// against their rotated frame; other layers against their bounds.
func HitTest(tree *scene.Tree, x, y float64) string {
	if tree == nil {
		return ""
	}
	p := pairkit.Pt(x, y)
	for i := len(tree.Nodes) - 1; i >= 0; i-- {
		n := tree.Nodes[i]
		if n.Kind == template.KindBackground || n.Primitive == nil {
			continue
		}
		if hit(n.Primitive, p) {
			return n.LayerID
		}
	}
	return ""
}

func hit(prim layer.Primitive, p pairkit.Point) bool {
	if s, ok := prim.(*layer.Slot); ok {
		inv, ok := s.Matrix.Invert()
		if !ok {
			return false
		}
		q := inv.TransformPoint(p)
		return pairkit.Rect{Width: s.Width, Height: s.Height}.Contains(q)
	}
	return prim.Bounds().Contains(p)
}
