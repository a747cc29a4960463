package engine

import "fmt"

// Point is an exact rational transfer point. Values stay in [0, 1] during
// resolution; floating point is deliberately avoided so that chained
// exit/enter round trips (for example 1/3 of 1/3) stay lossless.
//
// Points are always kept in canonical reduced form with a positive
// denominator, so struct equality is value equality. Denominators are bounded
// by products of the block side lengths encountered within one turn, which
// keeps them far inside the int64 range.
type Point struct {
	num int64
	den int64
}

// Middle is the transfer point 1/2, used when movement starts in the middle
// of a cell.
var Middle = Point{num: 1, den: 2}

// One is the transfer point 1/1, the complement base for flips.
var One = Point{num: 1, den: 1}

// NewPoint builds the reduced rational num/den. den must be non-zero.
func NewPoint(num, den int64) Point {
	if den == 0 {
		panic("engine: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(num, den)
	return Point{num: num / g, den: den / g}
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// AddInt returns p + n.
func (p Point) AddInt(n int) Point {
	return NewPoint(p.num+int64(n)*p.den, p.den)
}

// DivInt returns p / n for positive n.
func (p Point) DivInt(n int) Point {
	return NewPoint(p.num, p.den*int64(n))
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return NewPoint(p.num*q.den-q.num*p.den, p.den*q.den)
}

// Complement returns 1 - p, the mirror of the point across the edge midline.
func (p Point) Complement() Point {
	return One.Sub(p)
}

// Scale maps the point onto a side of the given length: it returns
// floor(p*side) clamped to a valid coordinate, plus the residual point
// p*side - floor(p*side).
func (p Point) Scale(side int) (int, Point) {
	t := p.num * int64(side)
	c := t / p.den
	if t%p.den < 0 {
		c--
	}
	rest := NewPoint(t-c*p.den, p.den)
	coord := int(c)
	if coord < 0 {
		coord = 0
	}
	if coord > side-1 {
		coord = side - 1
	}
	return coord, rest
}

// Num returns the reduced numerator.
func (p Point) Num() int64 { return p.num }

// Den returns the reduced denominator.
func (p Point) Den() int64 { return p.den }

func (p Point) String() string {
	return fmt.Sprintf("%d/%d", p.num, p.den)
}
