// Package transform provides batched rigid (SE(3)) transforms for pinhole camera work:
// composing independently parameterized rotations and translations into homogeneous
// matrices, inverting and chaining them in closed form, converting between rotation and
// transform parameterizations, and projecting world points to image coordinates.
package transform

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/camtools/se3cam/spatialmath"
)

// RigidTransform is a batch of independent SE(3) elements. Each element is stored as a
// 4x4 homogeneous matrix holding the transposed rotation in the top-left 3x3 block and
// the translation in the bottom row, so that points are row vectors transformed by
// right-multiplication. Every operation returns a new instance; a RigidTransform is
// never mutated after construction.
type RigidTransform struct {
	mats []mgl64.Mat4
}

// NewRigidTransform creates a batch of rigid transforms from per-element rotations and
// translations. Rotations may be given in any Orientation parameterization; a nil
// rotation element means no rotation. The two slices must have the same length or
// ErrShapeMismatch is returned.
func NewRigidTransform(rotations []spatialmath.Orientation, translations []r3.Vector) (*RigidTransform, error) {
	if len(rotations) != len(translations) {
		return nil, newShapeMismatchError("rotation and translation batch sizes", len(rotations), len(translations))
	}
	mats := make([]mgl64.Mat4, len(rotations))
	for i, rot := range rotations {
		mats[i] = homogeneousMatrix(rot, translations[i])
	}
	return &RigidTransform{mats}, nil
}

// NewSingleRigidTransform promotes one rotation and translation to a batch of size 1.
func NewSingleRigidTransform(rot spatialmath.Orientation, t r3.Vector) *RigidTransform {
	return &RigidTransform{[]mgl64.Mat4{homogeneousMatrix(rot, t)}}
}

// Identity returns a batch of n identity transforms.
func Identity(n int) *RigidTransform {
	mats := make([]mgl64.Mat4, n)
	for i := range mats {
		mats[i] = mgl64.Ident4()
	}
	return &RigidTransform{mats}
}

// BatchSize returns the number of SE(3) elements in the batch.
func (rt *RigidTransform) BatchSize() int {
	return len(rt.mats)
}

// Rotations extracts the rotation matrix of each batch element.
func (rt *RigidTransform) Rotations() []*spatialmath.RotationMatrix {
	out := make([]*spatialmath.RotationMatrix, len(rt.mats))
	for i := range rt.mats {
		out[i] = rt.rotationAt(i)
	}
	return out
}

// Translations extracts the translation vector of each batch element.
func (rt *RigidTransform) Translations() []r3.Vector {
	out := make([]r3.Vector, len(rt.mats))
	for i := range rt.mats {
		out[i] = rt.translationAt(i)
	}
	return out
}

// Inverse returns the closed-form SE(3) inverse of each batch element: the rotation is
// transposed and the translation is -Rinv*t. Because the rotation block is orthogonal
// this is exact, where a general 4x4 inversion could drift off the rigid-transform
// manifold.
func (rt *RigidTransform) Inverse() *RigidTransform {
	mats := make([]mgl64.Mat4, len(rt.mats))
	for i := range rt.mats {
		rmInv := rt.rotationAt(i).Transposed()
		tInv := rmInv.Mul(rt.translationAt(i)).Mul(-1)
		mats[i] = homogeneousMatrix(rmInv, tInv)
	}
	return &RigidTransform{mats}
}

// Compose chains each element of rt with the matching element of other: the result
// transforms a point by rt first, then by other. The rotation block of each raw matrix
// product is re-derived through a normalized quaternion so that rounding error from the
// product does not accumulate as a loss of orthogonality. Returns ErrShapeMismatch when
// the batch sizes disagree.
func (rt *RigidTransform) Compose(other *RigidTransform) (*RigidTransform, error) {
	if len(rt.mats) != len(other.mats) {
		return nil, newShapeMismatchError("composed batch sizes", len(rt.mats), len(other.mats))
	}
	mats := make([]mgl64.Mat4, len(rt.mats))
	for i := range rt.mats {
		raw := RigidTransform{[]mgl64.Mat4{rt.mats[i].Mul4(other.mats[i])}}
		q := raw.rotationAt(0).Quaternion()
		rot := spatialmath.NewQuaternion(q.Real, q.Imag, q.Jmag, q.Kmag)
		mats[i] = homogeneousMatrix(rot, raw.translationAt(0))
	}
	return &RigidTransform{mats}, nil
}

// Clone returns a deep, independent copy of the batch.
func (rt *RigidTransform) Clone() *RigidTransform {
	mats := make([]mgl64.Mat4, len(rt.mats))
	copy(mats, rt.mats)
	return &RigidTransform{mats}
}

// TransformPoints applies each batch element to its slice of world points, returning
// the points expressed in the transformed frame. The outer length of points must equal
// the batch size; the number of points per element is unconstrained.
func (rt *RigidTransform) TransformPoints(points [][]r3.Vector) ([][]r3.Vector, error) {
	if len(points) != len(rt.mats) {
		return nil, newShapeMismatchError("transform and point batch sizes", len(rt.mats), len(points))
	}
	out := make([][]r3.Vector, len(points))
	for i, pts := range points {
		out[i] = make([]r3.Vector, len(pts))
		for j, pt := range pts {
			out[i][j] = applyToPoint(rt.mats[i], pt)
		}
	}
	return out, nil
}

// AlmostEqual reports whether two batches represent the same transforms to within tol
// on every homogeneous matrix entry.
func (rt *RigidTransform) AlmostEqual(other *RigidTransform, tol float64) bool {
	if len(rt.mats) != len(other.mats) {
		return false
	}
	for i := range rt.mats {
		for e := 0; e < 16; e++ {
			d := rt.mats[i][e] - other.mats[i][e]
			if d < -tol || d > tol {
				return false
			}
		}
	}
	return true
}

// Delta returns the per-element difference between two equal-size batches as twists:
// the translation difference and the R3 axis angle of the rotation between the
// elements. Distances in both parts are well-defined, which makes the result usable as
// an error metric.
func Delta(a, b *RigidTransform) ([]Twist, error) {
	if len(a.mats) != len(b.mats) {
		return nil, newShapeMismatchError("delta batch sizes", len(a.mats), len(b.mats))
	}
	out := make([]Twist, len(a.mats))
	for i := range a.mats {
		qa := a.dualQuaternionAt(i)
		qb := b.dualQuaternionAt(i)
		between := quat.Mul(qb.Real, quat.Conj(qa.Real))
		aTrans := dualquat.Mul(qa, dualquat.Conj(qa)).Dual
		bTrans := dualquat.Mul(qb, dualquat.Conj(qb)).Dual
		out[i] = Twist{
			V: r3.Vector{X: bTrans.Imag - aTrans.Imag, Y: bTrans.Jmag - aTrans.Jmag, Z: bTrans.Kmag - aTrans.Kmag},
			W: spatialmath.QuatToR4AA(between).ToR3(),
		}
	}
	return out, nil
}

// dualQuaternionAt packs batch element i as a unit dual quaternion with the rotation in
// the real part and Dual = (t/2)*Real. Multiplying by the combined conjugate,
// Q*Conj(Q) = 1 + t*eps, recovers the translation in the dual part.
func (rt *RigidTransform) dualQuaternionAt(i int) dualquat.Number {
	q := rt.rotationAt(i).Quaternion()
	t := rt.translationAt(i)
	return dualquat.Number{
		Real: q,
		Dual: quat.Scale(0.5, quat.Mul(quat.Number{Imag: t.X, Jmag: t.Y, Kmag: t.Z}, q)),
	}
}

// rotationAt un-transposes the top-left block of element i back into row-major form.
func (rt *RigidTransform) rotationAt(i int) *spatialmath.RotationMatrix {
	m := rt.mats[i]
	data := make([]float64, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data[3*r+c] = m.At(c, r)
		}
	}
	rm, err := spatialmath.NewRotationMatrix(data)
	if err != nil {
		panic(err) // 9 elements by construction
	}
	return rm
}

func (rt *RigidTransform) translationAt(i int) r3.Vector {
	m := rt.mats[i]
	return r3.Vector{X: m.At(3, 0), Y: m.At(3, 1), Z: m.At(3, 2)}
}

func homogeneousMatrix(rot spatialmath.Orientation, t r3.Vector) mgl64.Mat4 {
	m := mgl64.Ident4()
	if rot != nil {
		rm := rot.RotationMatrix()
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				m.Set(r, c, rm.At(c, r))
			}
		}
	}
	m.Set(3, 0, t.X)
	m.Set(3, 1, t.Y)
	m.Set(3, 2, t.Z)
	return m
}

// applyToPoint right-multiplies the homogeneous row vector [p 1] by m.
func applyToPoint(m mgl64.Mat4, p r3.Vector) r3.Vector {
	return r3.Vector{
		X: p.X*m.At(0, 0) + p.Y*m.At(1, 0) + p.Z*m.At(2, 0) + m.At(3, 0),
		Y: p.X*m.At(0, 1) + p.Y*m.At(1, 1) + p.Z*m.At(2, 1) + m.At(3, 1),
		Z: p.X*m.At(0, 2) + p.Y*m.At(1, 2) + p.Z*m.At(2, 2) + m.At(3, 2),
	}
}
