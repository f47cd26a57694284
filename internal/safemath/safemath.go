// Package safemath provides overflow-checked unsigned arithmetic. The second
// return is false when the result does not fit.
package safemath

import "math/bits"

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}
