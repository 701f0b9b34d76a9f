package transform

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/camtools/se3cam/spatialmath"
)

// Twist is the se(3) logarithm coordinates of one rigid transform: six numbers split
// into named generator parts so the two halves cannot be transposed by accident.
type Twist struct {
	// V is the translation generator part.
	V r3.Vector
	// W is the rotation generator part, an R3 axis angle (axis scaled by angle).
	W r3.Vector
}

// smallAngle is the rotation angle below which the closed-form screw coefficients
// switch to their Taylor expansions to avoid catastrophic cancellation.
const smallAngle = 1e-4

// NewRigidTransformFromTwists realizes the SE(3) exponential map. Each twist maps to
// the rotation exp([W]x) together with the translation V(theta)*V, where V(theta) is
// the left Jacobian of SO(3) in closed form.
func NewRigidTransformFromTwists(twists []Twist) *RigidTransform {
	rotations := make([]spatialmath.Orientation, len(twists))
	translations := make([]r3.Vector, len(twists))
	for i, tw := range twists {
		rotations[i] = spatialmath.R3ToR4(tw.W)
		theta := tw.W.Norm()
		var c1, c2 float64
		if theta < smallAngle {
			c1 = 0.5 - theta*theta/24
			c2 = 1.0/6 - theta*theta/120
		} else {
			c1 = (1 - math.Cos(theta)) / (theta * theta)
			c2 = (theta - math.Sin(theta)) / (theta * theta * theta)
		}
		translations[i] = mulVec(screwTranslationMatrix(tw.W, c1, c2), tw.V)
	}
	rt, err := NewRigidTransform(rotations, translations)
	if err != nil {
		panic(err) // equal lengths by construction
	}
	return rt
}

// Twists returns the SE(3) logarithm coordinates of each batch element: the R3 axis
// angle of the rotation and the translation pulled back through the inverse left
// Jacobian. The log map is the exact inverse of NewRigidTransformFromTwists away from
// the rotation-angle-pi singularity.
func (rt *RigidTransform) Twists() []Twist {
	out := make([]Twist, len(rt.mats))
	for i := range rt.mats {
		q := rt.rotationAt(i).Quaternion()
		if q.Real < 0 {
			// stay on the principal branch of the log
			q = spatialmath.Flip(q)
		}
		w := spatialmath.QuatToR4AA(q).ToR3()
		theta := w.Norm()
		var c2 float64
		if theta < smallAngle {
			c2 = 1.0/12 + theta*theta/720
		} else {
			c2 = (1 - theta*math.Sin(theta)/(2*(1-math.Cos(theta)))) / (theta * theta)
		}
		out[i] = Twist{
			V: mulVec(screwTranslationMatrix(w, -0.5, c2), rt.translationAt(i)),
			W: w,
		}
	}
	return out
}

// screwTranslationMatrix builds I + c1*[w]x + c2*[w]x^2, the shape shared by the SO(3)
// left Jacobian and its inverse.
func screwTranslationMatrix(w r3.Vector, c1, c2 float64) *mat.Dense {
	k := mat.NewDense(3, 3, []float64{
		0, -w.Z, w.Y,
		w.Z, 0, -w.X,
		-w.Y, w.X, 0,
	})
	var k2 mat.Dense
	k2.Mul(k, k)
	out := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	var s1, s2 mat.Dense
	s1.Scale(c1, k)
	s2.Scale(c2, &k2)
	out.Add(out, &s1)
	out.Add(out, &s2)
	return out
}

func mulVec(m *mat.Dense, v r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
