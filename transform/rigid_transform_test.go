package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/camtools/se3cam/spatialmath"
)

func rot90z() spatialmath.Orientation {
	return &spatialmath.R4AA{Theta: math.Pi / 2, RZ: 1}
}

func genericTransform() *RigidTransform {
	ea := &spatialmath.EulerAngles{A1: 0.4, A2: -0.9, A3: 1.2, Order: spatialmath.OrderXYZ}
	return NewSingleRigidTransform(ea, r3.Vector{X: -1.5, Y: 2.25, Z: 0.5})
}

func TestConstructionExtraction(t *testing.T) {
	rm := rot90z().RotationMatrix()
	tr := r3.Vector{X: 1, Y: 2, Z: 3}
	rt, err := NewRigidTransform([]spatialmath.Orientation{rm}, []r3.Vector{tr})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rt.BatchSize(), test.ShouldEqual, 1)

	// rotation and translation must survive the storage transpose exactly
	gotRM := rt.Rotations()[0]
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			test.That(t, gotRM.At(r, c), test.ShouldEqual, rm.At(r, c))
		}
	}
	test.That(t, rt.Translations()[0], test.ShouldResemble, tr)
}

func TestConstructionShapeMismatch(t *testing.T) {
	rots := []spatialmath.Orientation{rot90z(), rot90z()}
	trans := []r3.Vector{{}, {}, {}}
	_, err := NewRigidTransform(rots, trans)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrShapeMismatch), test.ShouldBeTrue)
}

func TestNilRotationIsIdentity(t *testing.T) {
	rt, err := NewRigidTransform([]spatialmath.Orientation{nil}, []r3.Vector{{X: 5, Y: 0, Z: 0}})
	test.That(t, err, test.ShouldBeNil)
	pts, err := rt.TransformPoints([][]r3.Vector{{{X: 1, Y: 2, Z: 3}}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts[0][0], test.ShouldResemble, r3.Vector{X: 6, Y: 2, Z: 3})
}

func TestTransformPoints(t *testing.T) {
	rt := NewSingleRigidTransform(rot90z(), r3.Vector{X: 1, Y: 2, Z: 3})
	pts, err := rt.TransformPoints([][]r3.Vector{{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}})
	test.That(t, err, test.ShouldBeNil)
	// 90 degrees about z maps +x to +y, then the translation applies
	test.That(t, pts[0][0].X, test.ShouldAlmostEqual, 1)
	test.That(t, pts[0][0].Y, test.ShouldAlmostEqual, 3)
	test.That(t, pts[0][0].Z, test.ShouldAlmostEqual, 3)
	test.That(t, pts[0][1], test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	_, err = rt.TransformPoints([][]r3.Vector{{}, {}})
	test.That(t, errors.Is(err, ErrShapeMismatch), test.ShouldBeTrue)
}

func TestInverse(t *testing.T) {
	rt := genericTransform()

	// inverse of the inverse is the original
	test.That(t, rt.Inverse().Inverse().AlmostEqual(rt, 1e-12), test.ShouldBeTrue)

	// the inverse undoes the transform on points
	pts, err := rt.TransformPoints([][]r3.Vector{{{X: 1, Y: 0, Z: 0}}})
	test.That(t, err, test.ShouldBeNil)
	back, err := rt.Inverse().TransformPoints(pts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back[0][0].X, test.ShouldAlmostEqual, 1)
	test.That(t, back[0][0].Y, test.ShouldAlmostEqual, 0)
	test.That(t, back[0][0].Z, test.ShouldAlmostEqual, 0)
}

func TestComposeIdentity(t *testing.T) {
	rt := genericTransform()
	composed, err := Identity(1).Compose(rt)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, composed.AlmostEqual(rt, 1e-12), test.ShouldBeTrue)

	composed, err = rt.Compose(Identity(1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, composed.AlmostEqual(rt, 1e-12), test.ShouldBeTrue)
}

func TestComposeInverseIsIdentity(t *testing.T) {
	rt := genericTransform()
	composed, err := rt.Compose(rt.Inverse())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, composed.AlmostEqual(Identity(1), 1e-10), test.ShouldBeTrue)
}

func TestComposeAssociative(t *testing.T) {
	a := genericTransform()
	b := NewSingleRigidTransform(rot90z(), r3.Vector{X: 0, Y: -1, Z: 4})
	c := NewSingleRigidTransform(&spatialmath.R4AA{Theta: 1, RX: 1}, r3.Vector{X: 2, Y: 0, Z: 0})

	ab, err := a.Compose(b)
	test.That(t, err, test.ShouldBeNil)
	abc1, err := ab.Compose(c)
	test.That(t, err, test.ShouldBeNil)
	bc, err := b.Compose(c)
	test.That(t, err, test.ShouldBeNil)
	abc2, err := a.Compose(bc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, abc1.AlmostEqual(abc2, 1e-10), test.ShouldBeTrue)
}

func TestComposeShapeMismatch(t *testing.T) {
	_, err := Identity(2).Compose(Identity(3))
	test.That(t, errors.Is(err, ErrShapeMismatch), test.ShouldBeTrue)
}

func TestComposeTwoQuarterTurns(t *testing.T) {
	quarter := NewSingleRigidTransform(rot90z(), r3.Vector{})
	half, err := quarter.Compose(quarter)
	test.That(t, err, test.ShouldBeNil)
	aa := half.Rotations()[0].AxisAngles()
	test.That(t, aa.Theta, test.ShouldAlmostEqual, math.Pi)
	test.That(t, math.Abs(aa.RZ), test.ShouldAlmostEqual, 1)
}

func TestComposePreservesOrthogonality(t *testing.T) {
	rt := genericTransform()
	// chain many compositions and confirm R^T R stays the identity
	acc := Identity(1)
	var err error
	for i := 0; i < 200; i++ {
		acc, err = acc.Compose(rt)
		test.That(t, err, test.ShouldBeNil)
	}
	rm := acc.Rotations()[0]
	rtr := rm.Transposed()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.
			if r == c {
				want = 1.
			}
			got := rtr.Row(r).Dot(rm.Col(c))
			test.That(t, got, test.ShouldAlmostEqual, want, 1e-9)
		}
	}
}

func TestClone(t *testing.T) {
	rt := genericTransform()
	c := rt.Clone()
	test.That(t, c, test.ShouldNotEqual, rt)
	test.That(t, c.AlmostEqual(rt, 0), test.ShouldBeTrue)
	// backing storage must be independent
	c.mats[0][12]++
	test.That(t, c.AlmostEqual(rt, 1e-9), test.ShouldBeFalse)
}

func TestDelta(t *testing.T) {
	a := NewSingleRigidTransform(nil, r3.Vector{X: 1, Y: 0, Z: 0})
	b := NewSingleRigidTransform(rot90z(), r3.Vector{X: 1, Y: 0, Z: 2})
	d, err := Delta(a, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d[0].V, test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 2})
	test.That(t, d[0].W.Z, test.ShouldAlmostEqual, math.Pi/2)

	same, err := Delta(a, a)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same[0].V.Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, same[0].W.Norm(), test.ShouldAlmostEqual, 0)

	_, err = Delta(a, Identity(4))
	test.That(t, errors.Is(err, ErrShapeMismatch), test.ShouldBeTrue)
}
