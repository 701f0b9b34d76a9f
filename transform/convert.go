package transform

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/camtools/se3cam/spatialmath"
)

// Parameterization tags the external representation of a batch of rigid transforms.
type Parameterization string

// Rotation+translation parameterizations, plus the two whole-transform tags.
const (
	Matrix     = Parameterization("matrix")
	Quaternion = Parameterization("quaternion")
	AxisAngle  = Parameterization("axis_angle")
	Euler      = Parameterization("euler")
	SE3ExpMap  = Parameterization("se3_exp_map")
	SE3LogMap  = Parameterization("se3_log_map")
)

// Value is a batch of transforms in one of the supported parameterizations. For the
// rotation+translation tags, Rotations and Translations are populated; SE3ExpMap uses
// Transform and SE3LogMap uses Twists.
type Value struct {
	Rotations    []spatialmath.Orientation
	Translations []r3.Vector
	Transform    *RigidTransform
	Twists       []Twist
}

// Convert re-expresses a batch of transforms from one parameterization in another. The
// input is first normalized into a RigidTransform, then re-exported in the requested
// tag. Unknown tags fail with ErrUnsupportedParameterization.
func Convert(v Value, from, to Parameterization, opts ...ConvertOption) (Value, error) {
	cfg := convertConfig{inOrder: spatialmath.OrderDefault, outOrder: spatialmath.OrderDefault}
	for _, opt := range opts {
		opt(&cfg)
	}
	rt, err := normalize(v, from, cfg.inOrder)
	if err != nil {
		return Value{}, err
	}
	return reexpress(rt, to, cfg.outOrder)
}

// ConvertOption adjusts how Convert interprets or emits parameterizations.
type ConvertOption func(*convertConfig)

type convertConfig struct {
	inOrder  spatialmath.EulerOrder
	outOrder spatialmath.EulerOrder
}

// WithInputEulerOrder sets the axis-order convention assumed for Euler-angle inputs
// that do not carry one themselves.
func WithInputEulerOrder(order spatialmath.EulerOrder) ConvertOption {
	return func(cfg *convertConfig) { cfg.inOrder = order }
}

// WithOutputEulerOrder sets the axis-order convention of Euler-angle outputs.
func WithOutputEulerOrder(order spatialmath.EulerOrder) ConvertOption {
	return func(cfg *convertConfig) { cfg.outOrder = order }
}

func normalize(v Value, from Parameterization, inOrder spatialmath.EulerOrder) (*RigidTransform, error) {
	switch from {
	case SE3ExpMap:
		if v.Transform == nil {
			return nil, errors.Errorf("no transform supplied for %q input", from)
		}
		return v.Transform, nil
	case SE3LogMap:
		return NewRigidTransformFromTwists(v.Twists), nil
	case Matrix, Quaternion, AxisAngle:
		return NewRigidTransform(v.Rotations, v.Translations)
	case Euler:
		if !inOrder.Valid() {
			return nil, errors.Wrapf(ErrUnsupportedParameterization, "euler axis order %q", string(inOrder))
		}
		rotations := make([]spatialmath.Orientation, len(v.Rotations))
		for i, rot := range v.Rotations {
			rotations[i] = stampEulerOrder(rot, inOrder)
		}
		return NewRigidTransform(rotations, v.Translations)
	default:
		return nil, NewUnsupportedParameterizationError(from)
	}
}

func reexpress(rt *RigidTransform, to Parameterization, outOrder spatialmath.EulerOrder) (Value, error) {
	switch to {
	case SE3ExpMap:
		return Value{Transform: rt.Clone()}, nil
	case SE3LogMap:
		return Value{Twists: rt.Twists()}, nil
	case Matrix, Quaternion, AxisAngle, Euler:
		if to == Euler && !outOrder.Valid() {
			return Value{}, errors.Wrapf(ErrUnsupportedParameterization, "euler axis order %q", string(outOrder))
		}
		rms := rt.Rotations()
		rotations := make([]spatialmath.Orientation, len(rms))
		for i, rm := range rms {
			switch to {
			case Quaternion:
				q := rm.Quaternion()
				rotations[i] = spatialmath.NewQuaternion(q.Real, q.Imag, q.Jmag, q.Kmag)
			case AxisAngle:
				rotations[i] = rm.AxisAngles()
			case Euler:
				rotations[i] = rm.EulerAngles(outOrder)
			default:
				rotations[i] = rm
			}
		}
		return Value{Rotations: rotations, Translations: rt.Translations()}, nil
	default:
		return Value{}, NewUnsupportedParameterizationError(to)
	}
}

// stampEulerOrder fills in the convention tag on Euler-angle orientations that were
// supplied without one; all other orientations pass through untouched.
func stampEulerOrder(rot spatialmath.Orientation, order spatialmath.EulerOrder) spatialmath.Orientation {
	if ea, ok := rot.(*spatialmath.EulerAngles); ok && ea.Order == "" {
		return &spatialmath.EulerAngles{A1: ea.A1, A2: ea.A2, A3: ea.A3, Order: order}
	}
	return rot
}
