// Package layout computes memory layouts of types for a target.
//
// A Layout records size, alignment, field offsets, whether the type is
// inhabited, and for enums how the active variant is stored:
//
//   - Single: only one variant can exist, nothing is stored.
//   - Multiple with Direct encoding: a tag field holds the discriminant
//     truncated to the tag width.
//   - Multiple with Niche encoding: the tag is an invalid bit pattern of a
//     field inside the untagged variant's payload, as with Option<&T>.
//
// The Calculator computes layouts on demand and caches them per type:
//
//	calc := layout.NewCalculator(layout.DefaultTarget())
//	l, err := calc.LayoutOf(opt)
package layout
