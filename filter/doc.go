// Package filter implements the non-destructive image adjustments a user
// can attach to slot content, plus the blurred shadow images behind drop
// shadows and glows.
//
// Filters never modify their input. A filter chain is a list of Spec values
// applied in declared order:
//
//	out := filter.Apply(src, []filter.Spec{
//		{Name: filter.Brightness, Amount: 0.1},
//		{Name: filter.Blur, Amount: 2},
//	})
//
// The pixel work is done by github.com/anthonynsimon/bild.
package filter
