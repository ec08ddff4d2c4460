package geometry

import "math"

// Unit tags the unit an angle value was expressed in.
type Unit int

const (
	Radian Unit = iota
	Degree
)

// Angle is a signed planar angle. The zero value is a null rotation.
type Angle struct {
	rad float64
}

// NewAngle builds an angle from a value in the given unit.
func NewAngle(value float64, unit Unit) Angle {
	if unit == Degree {
		return Degrees(value)
	}
	return Radians(value)
}

func Radians(r float64) Angle {
	return Angle{rad: r}
}

func Degrees(d float64) Angle {
	return Angle{rad: d * math.Pi / 180}
}

func (a Angle) Radians() float64 {
	return a.rad
}

func (a Angle) Degrees() float64 {
	return a.rad * 180 / math.Pi
}

// In returns the angle value expressed in unit.
func (a Angle) In(unit Unit) float64 {
	if unit == Degree {
		return a.Degrees()
	}
	return a.rad
}

func (a Angle) Add(o Angle) Angle {
	return Angle{rad: a.rad + o.rad}
}

func (a Angle) Neg() Angle {
	return Angle{rad: -a.rad}
}

// Scale multiplies the angle by k.
func (a Angle) Scale(k float64) Angle {
	return Angle{rad: a.rad * k}
}
