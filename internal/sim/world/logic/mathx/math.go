package mathx

import "math"

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SignInt returns -1, 0 or 1.
func SignInt(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// FloorDivF is floor(a / b) as an int.
func FloorDivF(a, b float64) int {
	return int(math.Floor(a / b))
}
