// Package mathkernel implements the MathKernel component of spec.md §2:
// ε-aware comparison of quantized coordinates, rational sin/cos for
// cardinal angles, and safe (never-panicking) numeric primitives. It
// intentionally does not reimplement a general vector/matrix library —
// spec.md §1 treats that as an external collaborator — so 3D affine
// transforms are expressed as github.com/go-gl/mathgl/mgl64 types and
// merely consumed here.
package mathkernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/matrix/ops"
	"github.com/thinlayer/csg2d/pkg/epsilon"
)

// Vec2 is a 2D point or direction. Unlike Vec3 (which rides on mgl64,
// the external vector/matrix collaborator for 3D work) this is an
// internal type: the whole 2D sweep/triangulation pipeline lives here
// and benefits from a type that cannot accidentally be multiplied by a
// 4x4 matrix.
type Vec2 struct {
	X, Y float64
}

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Sub returns v-w.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and w.
func (v Vec2) Dot(w Vec2) float64 { return v.X*w.X + v.Y*w.Y }

// Cross returns the z-component of the 3D cross product of v and w
// (extended with z=0), i.e. the signed area of the parallelogram they
// span. Positive means w is counter-clockwise from v.
func (v Vec2) Cross(w Vec2) float64 { return v.X*w.Y - v.Y*w.X }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v normalized to unit length, or the zero vector if v is
// (within SQR_EPSILON of) the zero vector — per spec §7, unit-vectoring
// a zero vector returns zero rather than dividing by zero.
func (v Vec2) Unit(cfg epsilon.Config) Vec2 {
	l2 := v.X*v.X + v.Y*v.Y
	if l2 <= cfg.SQR {
		return Vec2{}
	}
	l := math.Sqrt(l2)
	return Vec2{v.X / l, v.Y / l}
}

// Quantize snaps a coordinate to the nearest multiple of cfg.PT. This is
// the "quantized coordinate" operation of spec §3: after quantization,
// lex-comparing two points is a sound identity test.
func Quantize(cfg epsilon.Config, x float64) float64 {
	q := math.Round(x/cfg.PT) * cfg.PT
	// Avoid retaining a signed zero, which would otherwise make
	// Quantize(-1e-20) != Quantize(0) under a naive bit comparison.
	if q == 0 {
		return 0
	}
	return q
}

// QuantizeVec2 quantizes both components of v.
func QuantizeVec2(cfg epsilon.Config, v Vec2) Vec2 {
	return Vec2{Quantize(cfg, v.X), Quantize(cfg, v.Y)}
}

// EqScalar reports whether a and b are equal within cfg.EQ.
func EqScalar(cfg epsilon.Config, a, b float64) bool {
	d := a - b
	return d*d <= cfg.EQ
}

// Eq reports whether two (already-quantized) points are equal within
// cfg.EQ in both coordinates.
func Eq(cfg epsilon.Config, a, b Vec2) bool {
	return EqScalar(cfg, a.X, b.X) && EqScalar(cfg, a.Y, b.Y)
}

// Cmp performs a lexicographic comparison of two points: x primary, y
// secondary, returning -1, 0, or 1. Equality uses the same ε tolerance
// as Eq, so Cmp is consistent with Eq (Cmp(a,b)==0 iff Eq(a,b)).
func Cmp(cfg epsilon.Config, a, b Vec2) int {
	if EqScalar(cfg, a.X, b.X) {
		if EqScalar(cfg, a.Y, b.Y) {
			return 0
		}
		if a.Y < b.Y {
			return -1
		}
		return 1
	}
	if a.X < b.X {
		return -1
	}
	return 1
}

// SafeDiv returns a/b, or 0 if b is zero. Per spec §7, dividing by a
// zero determinant is mapped to zero, a sound fixed point for the
// subsequent computation.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// cardinalAngles maps an angle in degrees, reduced mod 360, to an exact
// (sin, cos) pair for the four axis-aligned cases where floating point
// sin/cos of a multiple of pi/2 would otherwise introduce a tiny but
// nonzero error (e.g. math.Sin(math.Pi) != 0). This is the "rational
// sin/cos" of spec §2/§9: OpenSCAD-family tools special-case multiples
// of 90 degrees for exactly this reason.
var cardinalAngles = map[float64][2]float64{
	0:   {0, 1},
	90:  {1, 0},
	180: {0, -1},
	270: {-1, 0},
}

// SinCosDegrees returns (sin, cos) of degAngle. For exact multiples of
// 90 degrees it returns the rational values {-1, 0, 1} rather than the
// float64 sin/cos approximation, avoiding hairline gaps in extrusions
// generated at cardinal angles.
func SinCosDegrees(degAngle float64) (sin, cos float64) {
	norm := math.Mod(degAngle, 360)
	if norm < 0 {
		norm += 360
	}
	if v, ok := cardinalAngles[norm]; ok {
		return v[0], v[1]
	}
	rad := degAngle * math.Pi / 180
	return math.Sin(rad), math.Cos(rad)
}

// Invert3 computes the inverse of the upper-left 3x3 (rotation/scale)
// block of m using github.com/katalvlaran/lvlath/matrix's LU-based
// Inverse. If the block is singular, it returns the zero Mat3 rather
// than an error — per spec §7's divide-by-zero policy, "a zero-
// determinant inverse has zero determinant", a sound fixed point for
// downstream multiplication.
func Invert3(m mgl64.Mat3) mgl64.Mat3 {
	dense, err := matrix.NewDense(3, 3)
	if err != nil {
		return mgl64.Mat3{}
	}
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			// mgl64.Mat3 is stored column-major: m[col*3+row].
			if err := dense.Set(row, col, m[col*3+row]); err != nil {
				return mgl64.Mat3{}
			}
		}
	}

	inv, err := ops.Inverse(dense)
	if err != nil {
		// Singular (ops.ErrSingular) or otherwise malformed: zero is
		// the documented sound fixed point.
		return mgl64.Mat3{}
	}

	var out mgl64.Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			v, err := inv.At(row, col)
			if err != nil {
				return mgl64.Mat3{}
			}
			out[col*3+row] = v
		}
	}
	return out
}

// Mat3FromMat4 extracts the upper-left 3x3 block of a 4x4 affine
// transform (the rotation/scale part, discarding translation).
func Mat3FromMat4(m mgl64.Mat4) mgl64.Mat3 {
	return mgl64.Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}
