package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/camtools/se3cam/utils"
)

// EulerOrder is the axis-order convention tag for a set of Euler angles: the rotation
// is the product of the single-axis rotations taken in the named order, applied
// intrinsically (each successive rotation about the already-rotated axes).
type EulerOrder string

// The six proper (Tait-Bryan) axis orders.
const (
	OrderXYZ = EulerOrder("XYZ")
	OrderXZY = EulerOrder("XZY")
	OrderYXZ = EulerOrder("YXZ")
	OrderYZX = EulerOrder("YZX")
	OrderZXY = EulerOrder("ZXY")
	OrderZYX = EulerOrder("ZYX")

	// OrderDefault is the order assumed when none is specified.
	OrderDefault = OrderXYZ
)

// Valid reports whether the order is one of the six supported axis orders.
func (o EulerOrder) Valid() bool {
	switch o {
	case OrderXYZ, OrderXZY, OrderYXZ, OrderYZX, OrderZXY, OrderZYX:
		return true
	}
	return false
}

// axes returns the axis indices (x=0, y=1, z=2) named by the order, plus the sign of the
// axis permutation: +1 for cyclic orders (XYZ, YZX, ZXY), -1 for anti-cyclic ones.
func (o EulerOrder) axes() (i, j, k int, sigma float64) {
	if !o.Valid() {
		panic("unrecognized Euler axis order " + string(o))
	}
	i = int(o[0] - 'X')
	j = int(o[1] - 'X')
	k = int(o[2] - 'X')
	sigma = 1
	if (i+1)%3 != j {
		sigma = -1
	}
	return i, j, k, sigma
}

// EulerAngles are three rotation angles in radians about the axes named by Order,
// applied first to third. A1 rotates about Order's first axis, A2 the second, A3 the third.
type EulerAngles struct {
	A1    float64    `json:"a1"`
	A2    float64    `json:"a2"`
	A3    float64    `json:"a3"`
	Order EulerOrder `json:"order"`
}

// NewEulerAngles creates an empty EulerAngles struct in the default axis order.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{Order: OrderDefault}
}

func (ea *EulerAngles) order() EulerOrder {
	if ea.Order == "" {
		return OrderDefault
	}
	return ea.Order
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	i, j, k, _ := ea.order().axes()
	return quat.Mul(quat.Mul(axisQuat(i, ea.A1), axisQuat(j, ea.A2)), axisQuat(k, ea.A3))
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	return QuatToR4AA(ea.Quaternion())
}

// EulerAngles returns orientation in Euler angle representation with the given axis order.
func (ea *EulerAngles) EulerAngles(order EulerOrder) *EulerAngles {
	if order == ea.order() {
		return &EulerAngles{ea.A1, ea.A2, ea.A3, order}
	}
	return QuatToEulerAngles(ea.Quaternion(), order)
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(ea.Quaternion())
}

// axisQuat returns the quaternion for a rotation of theta radians about a single coordinate axis.
func axisQuat(axis int, theta float64) quat.Number {
	s, c := math.Sincos(theta / 2)
	q := quat.Number{Real: c}
	switch axis {
	case 0:
		q.Imag = s
	case 1:
		q.Jmag = s
	default:
		q.Kmag = s
	}
	return q
}

// gimbalEpsilon bounds how close the middle angle may get to ±π/2 before the first and
// third axes align and only their sum (or difference) is recoverable.
const gimbalEpsilon = 1e-8

// matrixToEulerAngles factors a rotation matrix into Euler angles in the given axis order.
// At gimbal lock the third angle is pinned to zero and the remaining freedom is folded
// into the first angle.
func matrixToEulerAngles(rm *RotationMatrix, order EulerOrder) *EulerAngles {
	i, j, k, sigma := order.axes()

	s2 := utils.Clamp(sigma*rm.At(i, k), -1, 1)
	ea := &EulerAngles{A2: math.Asin(s2), Order: order}
	if math.Abs(s2) < 1-gimbalEpsilon {
		ea.A1 = math.Atan2(-sigma*rm.At(j, k), rm.At(k, k))
		ea.A3 = math.Atan2(-sigma*rm.At(i, j), rm.At(i, i))
	} else {
		ea.A1 = math.Atan2(sigma*rm.At(k, j), rm.At(j, j))
		ea.A3 = 0
	}
	return ea
}
