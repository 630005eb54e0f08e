package evergreen

import "math"

// Vec3 is a 3D vector. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// WorldUp is the +Y axis.
var WorldUp = Vec3{0, 1, 0}

// Splat returns a vector with all components set to s.
func Splat(s float64) Vec3 { return Vec3{s, s, s} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{lerp(v.X, o.X, t), lerp(v.Y, o.Y, t), lerp(v.Z, o.Z, t)}
}

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns v scaled to unit length, or the zero vector if v is
// (nearly) zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Quat is a rotation quaternion (x, y, z, w).
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quat{0, 0, 0, 1}

// QuatFromAxisAngle returns the rotation of angle radians about a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// QuatFromEuler builds a rotation from XYZ-order Euler angles.
func QuatFromEuler(x, y, z float64) Quat {
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, x)
	qy := QuatFromAxisAngle(Vec3{0, 1, 0}, y)
	qz := QuatFromAxisAngle(Vec3{0, 0, 1}, z)
	return qx.Mul(qy).Mul(qz)
}

// Mul returns q*o (apply o first, then q).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Inverse returns the inverse of a unit quaternion.
func (q Quat) Inverse() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Normalize returns q scaled to unit length.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l < 1e-12 {
		return QuatIdentity
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Slerp spherically interpolates from q toward o by t, taking the short arc.
func (q Quat) Slerp(o Quat, t float64) Quat {
	cos := q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
	if cos < 0 {
		o = Quat{-o.X, -o.Y, -o.Z, -o.W}
		cos = -cos
	}
	if cos > 0.9995 {
		return Quat{
			lerp(q.X, o.X, t), lerp(q.Y, o.Y, t),
			lerp(q.Z, o.Z, t), lerp(q.W, o.W, t),
		}.Normalize()
	}
	theta := math.Acos(cos)
	sin := math.Sin(theta)
	a := math.Sin((1-t)*theta) / sin
	b := math.Sin(t*theta) / sin
	return Quat{
		q.X*a + o.X*b, q.Y*a + o.Y*b,
		q.Z*a + o.Z*b, q.W*a + o.W*b,
	}
}

// Angle returns the rotation angle between q and o in radians.
func (q Quat) Angle(o Quat) float64 {
	d := math.Abs(q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W)
	return 2 * math.Acos(math.Min(d, 1))
}

// QuatFacing returns the rotation whose local +Z axis points along dir with
// local +Y as close to up as possible. Degenerate inputs (zero dir, or dir
// parallel to up) fall back to a stable alternative axis.
func QuatFacing(dir, up Vec3) Quat {
	z := dir.Normalize()
	if z == (Vec3{}) {
		return QuatIdentity
	}
	x := up.Cross(z)
	if x.Len() < 1e-9 {
		// dir is parallel to up; nudge with +Z as the reference.
		x = Vec3{0, 0, 1}.Cross(z)
		if x.Len() < 1e-9 {
			x = Vec3{1, 0, 0}
		}
	}
	x = x.Normalize()
	y := z.Cross(x)
	return quatFromBasis(x, y, z)
}

// quatFromBasis converts an orthonormal basis (matrix columns) to a quaternion.
func quatFromBasis(x, y, z Vec3) Quat {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quat{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s, 0.25 / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quat{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quat{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quat{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}
	return q.Normalize()
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// frameFactor converts a per-frame approach factor tuned at 60 Hz into the
// equivalent factor for a step of dt seconds.
func frameFactor(perFrame, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return 1 - math.Pow(1-perFrame, dt*60)
}
