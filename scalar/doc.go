// Package scalar provides fixed-width integer values and the wrapping
// arithmetic used to encode and decode tags.
//
// Widths go up to 128 bits. Every constructor truncates (wraparound, never
// saturation), so an Int always holds exactly the bits a target integer of
// that layout would hold.
//
//	a := scalar.FromUint64(0xfe, scalar.U8)
//	b := scalar.FromUint64(2, scalar.U8)
//	sum, _ := scalar.Wrapping{}.Add(a, b) // 0x00
//
// Values read from memory are either plain integers or pointer-like values
// (an allocation plus offset with no concrete address). Only the former can
// take part in arithmetic.
package scalar
