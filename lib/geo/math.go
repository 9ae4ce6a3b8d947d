package geo

import "math"

const PRECISION = 0.0001

// decimal places kept by Round. Coordinates are millimeters, so this leaves
// sub-femtometer noise behind while keeping every real dimension intact.
const roundDecimals = 10

func EuclideanDistance(x1, y1, x2, y2 float64) float64 {
	if x1 == x2 {
		return math.Abs(y1 - y2)
	} else if y1 == y2 {
		return math.Abs(x1 - x2)
	} else {
		return math.Sqrt((x1-x2)*(x1-x2) + (y1-y2)*(y1-y2))
	}
}

// compare a and b and consider them equal if
// difference is less than precision e (e.g. e=0.001)
func PrecisionCompare(a, b, e float64) int {
	if math.Abs(a-b) < e {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// Round rounds to 10 decimal places, to avoid issues with floats on
// different machines. Orientation predicates compare through it.
func Round(v float64) float64 {
	pow := math.Pow(10, roundDecimals)
	rounded := math.Round(v*pow) / pow
	if rounded == 0 {
		// avoid -0
		return 0
	}
	return rounded
}

func Sign(i float64) int {
	if i < 0 {
		return -1
	}
	if i > 0 {
		return 1
	}
	return 0
}
