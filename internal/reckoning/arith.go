package reckoning

// integer is the set of signed integer types the floor helpers accept.
type integer interface {
	~int | ~int64
}

// floorDiv divides a by b rounding toward negative infinity. Go's / truncates
// toward zero, which gives the wrong year for negative day counts.
func floorDiv[T integer](a, b T) T {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod returns a mod b with the sign of b.
func floorMod[T integer](a, b T) T {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// clamp bounds v to [lo, hi]. When hi < lo the result is lo.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
