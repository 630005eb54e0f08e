package evergreen

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// assertAngle checks a rotation angle; Angle goes through acos, which loses
// precision near zero.
func assertAngle(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVecNear(t *testing.T, name string, got, want Vec3, tol float64) {
	t.Helper()
	if got.Dist(want) > tol {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestComposeAffineIdentity(t *testing.T) {
	m := ComposeAffine(Vec3{}, QuatIdentity, Splat(1))
	if m != identityTransform {
		t.Errorf("ComposeAffine(identity) = %v, want %v", m, identityTransform)
	}
}

func TestComposeAffineOrder(t *testing.T) {
	// Scale, then rotate 90° about Y, then translate.
	m := ComposeAffine(Vec3{10, 0, 0}, QuatFromAxisAngle(WorldUp, math.Pi/2), Splat(2))
	got := m.TransformPoint(Vec3{1, 0, 0})
	assertVecNear(t, "point", got, Vec3{10, 0, -2}, 1e-9)
}

func TestAffineInverseRoundTrip(t *testing.T) {
	m := ComposeAffine(Vec3{3, -2, 5}, QuatFromEuler(0.3, 1.1, -0.4), Vec3{2, 0.5, 3})
	p := Vec3{1.5, -7, 0.25}
	back := m.Inverse().TransformPoint(m.TransformPoint(p))
	assertVecNear(t, "round trip", back, p, 1e-9)

	id := m.Mul(m.Inverse())
	for i := range id {
		assertNear(t, "m*inv", id[i], identityTransform[i])
	}
}

func TestAffineInverseSingular(t *testing.T) {
	m := ComposeAffine(Vec3{1, 2, 3}, QuatIdentity, Vec3{0, 1, 1})
	if got := m.Inverse(); got != identityTransform {
		t.Errorf("singular Inverse = %v, want identity", got)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	assertVecNear(t, "rotate x", q.Rotate(Vec3{1, 0, 0}), Vec3{0, 1, 0}, 1e-12)

	inv := q.Inverse()
	assertVecNear(t, "inverse", inv.Rotate(q.Rotate(Vec3{1, 2, 3})), Vec3{1, 2, 3}, 1e-12)
}

func TestQuatFacing(t *testing.T) {
	dirs := []Vec3{
		{0, 0, 1}, {1, 0, 0}, {-3, 2, 5}, {0, -1, 0.001}, {0, 4, 0}, {0, -1, 0},
	}
	for _, d := range dirs {
		q := QuatFacing(d, WorldUp)
		assertVecNear(t, "facing +Z", q.Rotate(Vec3{0, 0, 1}), d.Normalize(), 1e-9)
	}
	if q := QuatFacing(Vec3{}, WorldUp); q != QuatIdentity {
		t.Errorf("QuatFacing(zero) = %+v, want identity", q)
	}
	// Local +Y stays as upright as the direction allows.
	up := QuatFacing(Vec3{1, 0, 0}, WorldUp).Rotate(Vec3{0, 1, 0})
	assertVecNear(t, "facing up", up, WorldUp, 1e-9)
}

func TestQuatSlerp(t *testing.T) {
	a := QuatIdentity
	b := QuatFromAxisAngle(WorldUp, math.Pi/2)
	mid := a.Slerp(b, 0.5)
	assertAngle(t, "half angle", a.Angle(mid), math.Pi/4)
	assertAngle(t, "end", a.Slerp(b, 1).Angle(b), 0)
	assertAngle(t, "start", a.Slerp(b, 0).Angle(a), 0)

	// Short arc: the negated target is the same rotation.
	neg := Quat{-b.X, -b.Y, -b.Z, -b.W}
	assertAngle(t, "short arc", a.Slerp(neg, 0.5).Angle(mid), 0)
}

func TestFrameFactor(t *testing.T) {
	assertNear(t, "one frame", frameFactor(0.1, 1.0/60), 0.1)
	assertNear(t, "two frames", frameFactor(0.1, 2.0/60), 1-0.9*0.9)
	assertNear(t, "zero dt", frameFactor(0.1, 0), 0)
}

func TestWorldTransformHierarchy(t *testing.T) {
	root := NewContainer("root")
	child := NewContainer("child")
	root.AddChild(child)

	root.SetPosition(Vec3{10, 0, 0})
	root.SetRotation(QuatFromAxisAngle(WorldUp, math.Pi/2))
	child.SetPosition(Vec3{1, 0, 0})
	updateWorldTransform(root, identityTransform, QuatIdentity, false)

	assertVecNear(t, "child world", child.WorldTransform().Translation(), Vec3{10, 0, -1}, 1e-9)
	assertVecNear(t, "local→world", child.LocalToWorld(Vec3{}), Vec3{10, 0, -1}, 1e-9)
	assertVecNear(t, "world→local", child.WorldToLocal(Vec3{10, 0, -1}), Vec3{}, 1e-9)
	assertAngle(t, "world rotation", child.WorldRotation().Angle(root.Rotation), 0)
}

func TestWorldTransformDirtyPropagation(t *testing.T) {
	root := NewContainer("root")
	child := NewContainer("child")
	root.AddChild(child)
	child.SetPosition(Vec3{0, 1, 0})
	updateWorldTransform(root, identityTransform, QuatIdentity, false)

	// Moving only the parent must still refresh the clean child.
	root.SetPosition(Vec3{0, 5, 0})
	updateWorldTransform(root, identityTransform, QuatIdentity, false)
	assertVecNear(t, "child", child.WorldTransform().Translation(), Vec3{0, 6, 0}, 1e-12)

	// Direct field writes need MarkDirty.
	child.Position = Vec3{0, 2, 0}
	child.MarkDirty()
	updateWorldTransform(root, identityTransform, QuatIdentity, false)
	assertVecNear(t, "marked", child.WorldTransform().Translation(), Vec3{0, 7, 0}, 1e-12)
}
