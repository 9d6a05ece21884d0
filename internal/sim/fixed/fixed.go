// Package fixed implements Q32.16 fixed-point arithmetic. Every quantity that
// feeds back into simulation outcomes uses Point instead of float64 so that
// results are bit-identical across machines, which replay and multiplayer
// lockstep depend on.
package fixed

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a signed fixed-point number with 16 fractional bits.
type Point int64

const (
	Shift = 16
	One   = Point(1 << Shift)
	Zero  = Point(0)
)

func FromInt(v int64) Point {
	return Point(v << Shift)
}

// FromFraction returns num/den. den must be non-zero.
func FromFraction(num, den int64) Point {
	return Point((num << Shift) / den)
}

// Parse accepts "12", "-3.5", "0.25". Fractional digits beyond the
// representable precision are truncated toward zero.
func Parse(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("fixed: empty string")
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	ip, err := strconv.ParseInt(intPart, 10, 48)
	if err != nil {
		return 0, fmt.Errorf("fixed: parse %q: %w", s, err)
	}
	v := ip << Shift
	if fracPart != "" {
		fp, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("fixed: parse %q: %w", s, err)
		}
		den := int64(1)
		for range fracPart {
			den *= 10
		}
		v += (fp << Shift) / den
	}
	if neg {
		v = -v
	}
	return Point(v), nil
}

func (p Point) Add(q Point) Point { return p + q }
func (p Point) Sub(q Point) Point { return p - q }
func (p Point) Neg() Point        { return -p }

func (p Point) Abs() Point {
	if p < 0 {
		return -p
	}
	return p
}

// Mul truncates toward zero.
func (p Point) Mul(q Point) Point {
	return Point(int64(p) * int64(q) >> Shift)
}

// Div truncates toward zero. q must be non-zero.
func (p Point) Div(q Point) Point {
	return Point((int64(p) << Shift) / int64(q))
}

// Int truncates toward zero.
func (p Point) Int() int64 {
	if p < 0 {
		return -int64(-p >> Shift)
	}
	return int64(p >> Shift)
}

// Floor rounds toward negative infinity.
func (p Point) Floor() int64 {
	return int64(p >> Shift)
}

// Round rounds half away from zero.
func (p Point) Round() int64 {
	if p < 0 {
		return -int64((-p + One/2) >> Shift)
	}
	return int64((p + One/2) >> Shift)
}

// Float64 is for display and logging only; never feed the result back into
// simulation state.
func (p Point) Float64() float64 {
	return float64(p) / float64(One)
}

func (p Point) String() string {
	return strconv.FormatFloat(p.Float64(), 'f', -1, 64)
}

// DecayLinear returns magnitude scaled by the fraction of duration remaining
// after elapsed ticks, in pure integer math: magnitude * (duration-elapsed) /
// duration, clamped to zero once fully elapsed. For a fixed magnitude the
// result is non-increasing in elapsed (non-decreasing for negative magnitude),
// and it is a pure function of its arguments: two callers at the same tick
// always agree.
func DecayLinear(magnitude Point, elapsed, duration int64) Point {
	if duration <= 0 || elapsed >= duration {
		return 0
	}
	if elapsed <= 0 {
		return magnitude
	}
	return Point(int64(magnitude) * (duration - elapsed) / duration)
}
