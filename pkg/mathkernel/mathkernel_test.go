package mathkernel_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

func TestQuantizeSnapsToGrid(t *testing.T) {
	cfg := epsilon.Default()
	got := mathkernel.Quantize(cfg, 1.0/512.0*3.49)
	want := 3.0 / 512.0
	if !mathkernel.EqScalar(cfg, got, want) {
		t.Errorf("Quantize(%v) = %v, want ~%v", 1.0/512.0*3.49, got, want)
	}
}

func TestQuantizeNoSignedZero(t *testing.T) {
	cfg := epsilon.Default()
	got := mathkernel.Quantize(cfg, -1e-20)
	if math.Signbit(got) {
		t.Errorf("Quantize(-1e-20) retained a signed zero: %v", got)
	}
}

func TestEqAndCmp(t *testing.T) {
	cfg := epsilon.Default()
	a := mathkernel.Vec2{X: 1, Y: 2}
	b := mathkernel.Vec2{X: 1 + cfg.EQ/10, Y: 2}
	if !mathkernel.Eq(cfg, a, b) {
		t.Error("expected a ~= b within EQ")
	}
	if mathkernel.Cmp(cfg, a, b) != 0 {
		t.Error("expected Cmp(a,b) == 0 when Eq(a,b)")
	}

	c := mathkernel.Vec2{X: 2, Y: 0}
	if mathkernel.Cmp(cfg, a, c) >= 0 {
		t.Error("expected a < c lexicographically")
	}
}

func TestSafeDivByZero(t *testing.T) {
	if got := mathkernel.SafeDiv(5, 0); got != 0 {
		t.Errorf("SafeDiv(5,0) = %v, want 0", got)
	}
	if got := mathkernel.SafeDiv(6, 2); got != 3 {
		t.Errorf("SafeDiv(6,2) = %v, want 3", got)
	}
}

func TestSinCosDegreesCardinal(t *testing.T) {
	tests := []struct {
		deg          float64
		sin, cos int
	}{
		{0, 0, 1},
		{90, 1, 0},
		{180, 0, -1},
		{270, -1, 0},
		{450, 1, 0}, // 450 mod 360 == 90
	}
	for _, tt := range tests {
		sin, cos := mathkernel.SinCosDegrees(tt.deg)
		if sin != float64(tt.sin) || cos != float64(tt.cos) {
			t.Errorf("SinCosDegrees(%v) = (%v,%v), want (%v,%v)", tt.deg, sin, cos, tt.sin, tt.cos)
		}
	}
}

func TestSinCosDegreesNonCardinal(t *testing.T) {
	sin, cos := mathkernel.SinCosDegrees(45)
	want := math.Sqrt2 / 2
	if math.Abs(sin-want) > 1e-9 || math.Abs(cos-want) > 1e-9 {
		t.Errorf("SinCosDegrees(45) = (%v,%v), want ~(%v,%v)", sin, cos, want, want)
	}
}

func TestInvert3Identity(t *testing.T) {
	id := mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	inv := mathkernel.Invert3(id)
	if inv != id {
		t.Errorf("Invert3(identity) = %v, want identity", inv)
	}
}

func TestInvert3Singular(t *testing.T) {
	// A rank-deficient 3x3 (duplicate rows): must not panic and must
	// return the zero matrix, per the divide-by-zero-is-sound-zero policy.
	singular := mgl64.Mat3{
		1, 2, 3,
		2, 4, 6,
		0, 0, 1,
	}
	got := mathkernel.Invert3(singular)
	if got != (mgl64.Mat3{}) {
		t.Errorf("Invert3(singular) = %v, want zero matrix", got)
	}
}

func TestInvert3RoundTrip(t *testing.T) {
	// A simple uniform scale-by-2 matrix inverts to scale-by-0.5.
	scale := mgl64.Mat3{2, 0, 0, 0, 2, 0, 0, 0, 2}
	inv := mathkernel.Invert3(scale)
	want := mgl64.Mat3{0.5, 0, 0, 0, 0.5, 0, 0, 0, 0.5}
	for i := range inv {
		if math.Abs(inv[i]-want[i]) > 1e-9 {
			t.Fatalf("Invert3(scale2) = %v, want %v", inv, want)
		}
	}
}

func TestMat3FromMat4(t *testing.T) {
	m := mgl64.Translate3D(5, 6, 7)
	m3 := mathkernel.Mat3FromMat4(m)
	if m3 != (mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}) {
		t.Errorf("Mat3FromMat4(translation) = %v, want identity rotation block", m3)
	}
}
