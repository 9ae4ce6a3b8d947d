package geo

import (
	"math"
)

// A N-Dimensional Vector with components (x, y, z, ...) based on the origin
type Vector []float64

// New Vector from components
func NewVector(components ...float64) Vector {
	return components
}

// New Vector of length and pointing in the direction of angle, measured
// counter-clockwise from the positive x-axis
func NewVectorFromProperties(length float64, angleInRadians float64) Vector {
	return NewVector(
		length*math.Cos(angleInRadians),
		length*math.Sin(angleInRadians),
	)
}

// Creates a Vector by extending the length of the current one by length
func (a Vector) AddLength(length float64) Vector {
	return a.Unit().Multiply(a.Length() + length)
}

func (a Vector) Add(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]+b[i])
	}
	return c
}

func (a Vector) Minus(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]-b[i])
	}
	return c
}

func (a Vector) Multiply(v float64) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]*v)
	}
	return c
}

func (a Vector) Length() float64 {
	sum := 0.0
	for _, comp := range a {
		sum += comp * comp
	}
	return math.Sqrt(sum)
}

// Creates an unit Vector pointing in the same direction of this Vector
func (a Vector) Unit() Vector {
	return a.Multiply(1 / a.Length())
}

func (a Vector) ToPoint() *Point {
	return &Point{a[0], a[1]}
}

// Dot is rounded through Round so that orientation predicates built on it
// are stable across platforms
func (a Vector) Dot(b Vector) float64 {
	sum := 0.0
	for i := 0; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return Round(sum)
}

// Cross returns the z-component of the cross product of two plane vectors,
// rounded like Dot
func (a Vector) Cross(b Vector) float64 {
	return Round(a[0]*b[1] - a[1]*b[0])
}

// Rotate returns the plane vector rotated counter-clockwise by the given
// angle in radians
func (a Vector) Rotate(angleInRadians float64) Vector {
	sin, cos := math.Sin(angleInRadians), math.Cos(angleInRadians)
	return NewVector(
		Round(a[0]*cos-a[1]*sin),
		Round(a[0]*sin+a[1]*cos),
	)
}

// Perp returns the plane vector rotated a quarter turn counter-clockwise
func (a Vector) Perp() Vector {
	return NewVector(-a[1], a[0])
}

// SnapToAxis returns the unit vector along the dominant axis of the vector.
// Ties snap to the x-axis.
func (a Vector) SnapToAxis() Vector {
	if math.Abs(a[0]) >= math.Abs(a[1]) {
		return NewVector(float64(Sign(a[0])), 0)
	}
	return NewVector(0, float64(Sign(a[1])))
}
