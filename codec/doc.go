// Package codec reads and writes the active variant of tagged values in
// typed memory.
//
// Four operations cover the conversions between variant index, logical
// discriminant and stored tag:
//
//	DiscriminantForVariant  variant index -> discriminant
//	TagForVariant           variant index -> tag to store, if any
//	ReadDiscriminant        memory -> variant index
//	WriteDiscriminant       variant index -> memory
//
// Layouts come from an Oracle, memory from an Accessor, and wrapping
// arithmetic from an Arith, all injected through New. Failures are
// *errors.Error values: class ub for undefined behaviour in the evaluated
// program (an invalid tag, an uninhabited variant) and class bug for
// layouts that contradict themselves. Every failure passes through the
// configured Reporter before it is returned.
//
// A niche-encoded variant that needs no tag is written by checking that
// memory already decodes to it:
//
//	c := codec.NewWithDefaults(calc, machine)
//	if err := c.WriteDiscriminant(1, place); errors.IsUB(err) {
//	    // memory does not hold a value of that variant
//	}
package codec
