package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestZeroTwistIsIdentity(t *testing.T) {
	rt := NewRigidTransformFromTwists([]Twist{{}})
	test.That(t, rt.AlmostEqual(Identity(1), 1e-12), test.ShouldBeTrue)
}

// The generator parts must land in the right channels end to end: a twist whose V is
// set and whose W is zero is a pure translation, and vice versa a pure rotation.
func TestTwistChannelOrdering(t *testing.T) {
	pureTrans := NewRigidTransformFromTwists([]Twist{{V: r3.Vector{X: 1, Y: 2, Z: 3}}})
	test.That(t, isIdentityRotation(t, pureTrans), test.ShouldBeTrue)
	tr := pureTrans.Translations()[0]
	test.That(t, tr.X, test.ShouldAlmostEqual, 1)
	test.That(t, tr.Y, test.ShouldAlmostEqual, 2)
	test.That(t, tr.Z, test.ShouldAlmostEqual, 3)

	pureRot := NewRigidTransformFromTwists([]Twist{{W: r3.Vector{X: 0, Y: 0, Z: math.Pi / 2}}})
	test.That(t, pureRot.Translations()[0].Norm(), test.ShouldAlmostEqual, 0)
	aa := pureRot.Rotations()[0].AxisAngles()
	test.That(t, aa.Theta, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, aa.RZ, test.ShouldAlmostEqual, 1)

	// and back through the log
	back := pureTrans.Twists()[0]
	test.That(t, back.V.X, test.ShouldAlmostEqual, 1)
	test.That(t, back.V.Y, test.ShouldAlmostEqual, 2)
	test.That(t, back.V.Z, test.ShouldAlmostEqual, 3)
	test.That(t, back.W.Norm(), test.ShouldAlmostEqual, 0)

	back = pureRot.Twists()[0]
	test.That(t, back.V.Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, back.W.Z, test.ShouldAlmostEqual, math.Pi/2)
}

func TestExpLogRoundTrip(t *testing.T) {
	// log(exp(x)) == x for a twist mixing rotation and translation
	tw := Twist{V: r3.Vector{X: 0.5, Y: -1.25, Z: 2}, W: r3.Vector{X: 0.4, Y: -0.9, Z: 1.2}}
	rt := NewRigidTransformFromTwists([]Twist{tw})
	back := rt.Twists()[0]
	test.That(t, back.V.X, test.ShouldAlmostEqual, tw.V.X)
	test.That(t, back.V.Y, test.ShouldAlmostEqual, tw.V.Y)
	test.That(t, back.V.Z, test.ShouldAlmostEqual, tw.V.Z)
	test.That(t, back.W.X, test.ShouldAlmostEqual, tw.W.X)
	test.That(t, back.W.Y, test.ShouldAlmostEqual, tw.W.Y)
	test.That(t, back.W.Z, test.ShouldAlmostEqual, tw.W.Z)

	// exp(log(T)) == T for a generic transform
	orig := genericTransform()
	round := NewRigidTransformFromTwists(orig.Twists())
	test.That(t, round.AlmostEqual(orig, 1e-10), test.ShouldBeTrue)
}

// A quarter-turn screw about z carrying V=(1,0,0) must land at the closed-form screw
// displacement (sin(theta)/theta, (1-cos(theta))/theta, 0), not at the raw generator.
func TestScrewTranslationClosedForm(t *testing.T) {
	theta := math.Pi / 2
	rt := NewRigidTransformFromTwists([]Twist{{V: r3.Vector{X: 1, Y: 0, Z: 0}, W: r3.Vector{X: 0, Y: 0, Z: theta}}})
	tr := rt.Translations()[0]
	test.That(t, tr.X, test.ShouldAlmostEqual, math.Sin(theta)/theta)
	test.That(t, tr.Y, test.ShouldAlmostEqual, (1-math.Cos(theta))/theta)
	test.That(t, tr.Z, test.ShouldAlmostEqual, 0)
}

// When rotation and translation are both nonzero the log must pull the translation back
// through the inverse left Jacobian rather than hand back the matrix translation.
func TestMixedTwistLogRecoversGenerator(t *testing.T) {
	tw := Twist{V: r3.Vector{X: 1, Y: 2, Z: 3}, W: r3.Vector{X: 0, Y: 0, Z: 1}}
	rt := NewRigidTransformFromTwists([]Twist{tw})
	back := rt.Twists()[0]
	test.That(t, back.V.X, test.ShouldAlmostEqual, tw.V.X)
	test.That(t, back.V.Y, test.ShouldAlmostEqual, tw.V.Y)
	test.That(t, back.V.Z, test.ShouldAlmostEqual, tw.V.Z)
	test.That(t, back.W.Z, test.ShouldAlmostEqual, tw.W.Z)
	test.That(t, rt.Translations()[0].Sub(tw.V).Norm(), test.ShouldBeGreaterThan, 0.1)
}

func TestNearZeroAngleTwistRoundTrip(t *testing.T) {
	// exercises the Taylor branch of the screw coefficients
	tw := Twist{V: r3.Vector{X: 1, Y: 2, Z: 3}, W: r3.Vector{X: 0, Y: 1e-5, Z: 0}}
	rt := NewRigidTransformFromTwists([]Twist{tw})
	back := rt.Twists()[0]
	test.That(t, back.V.X, test.ShouldAlmostEqual, tw.V.X)
	test.That(t, back.V.Y, test.ShouldAlmostEqual, tw.V.Y)
	test.That(t, back.V.Z, test.ShouldAlmostEqual, tw.V.Z)
	test.That(t, back.W.Y, test.ShouldAlmostEqual, tw.W.Y)
}

func TestLogNegativeRealBranch(t *testing.T) {
	// a rotation just shy of the π singularity stays on the principal branch
	rt := NewRigidTransformFromTwists([]Twist{{W: r3.Vector{X: 0, Y: 3.0, Z: 0}}})
	round := NewRigidTransformFromTwists(rt.Twists())
	test.That(t, round.AlmostEqual(rt, 1e-9), test.ShouldBeTrue)
}

func isIdentityRotation(t *testing.T, rt *RigidTransform) bool {
	t.Helper()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.
			if r == c {
				want = 1.
			}
			if math.Abs(rt.Rotations()[0].At(r, c)-want) > 1e-9 {
				return false
			}
		}
	}
	return true
}
