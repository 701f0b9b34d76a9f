package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// PerspectiveProjection maps batched 3D world points to 2D image coordinates through a
// pinhole camera: each point is taken into camera space by the matching extrinsic batch
// element, multiplied by the shared 3x3 intrinsic matrix, and perspective-divided by
// the projective depth channel. The outer length of points must equal the extrinsic
// batch size and intrinsic must be 3x3, else ErrShapeMismatch.
//
// A point with zero post-extrinsic depth divides to ±Inf or NaN; that matches the
// mathematical pinhole projection and is deliberately not guarded. Points must lie
// strictly in front of the camera for meaningful output.
func PerspectiveProjection(extrinsic *RigidTransform, intrinsic *mat.Dense, points [][]r3.Vector) ([][]r2.Point, error) {
	if len(points) != extrinsic.BatchSize() {
		return nil, newShapeMismatchError("extrinsic and point batch sizes", extrinsic.BatchSize(), len(points))
	}
	if r, c := intrinsic.Dims(); r != 3 || c != 3 {
		return nil, newShapeMismatchError("intrinsic matrix entries", 9, r*c)
	}
	camPoints, err := extrinsic.TransformPoints(points)
	if err != nil {
		return nil, err
	}
	out := make([][]r2.Point, len(camPoints))
	for b, pts := range camPoints {
		out[b] = make([]r2.Point, len(pts))
		for i, pt := range pts {
			u := intrinsic.At(0, 0)*pt.X + intrinsic.At(0, 1)*pt.Y + intrinsic.At(0, 2)*pt.Z
			v := intrinsic.At(1, 0)*pt.X + intrinsic.At(1, 1)*pt.Y + intrinsic.At(1, 2)*pt.Z
			w := intrinsic.At(2, 0)*pt.X + intrinsic.At(2, 1)*pt.Y + intrinsic.At(2, 2)*pt.Z
			out[b][i] = r2.Point{X: u / w, Y: v / w}
		}
	}
	return out, nil
}
