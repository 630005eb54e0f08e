package evergreen

// Affine is a 3D affine matrix stored as a row-major 3x3 linear part followed
// by the translation:
//
//	| m0 m1 m2  m9  |
//	| m3 m4 m5  m10 |
//	| m6 m7 m8  m11 |
//	| 0  0  0   1   |
type Affine [12]float64

// identityTransform is the identity affine matrix.
var identityTransform = Affine{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}

// ComposeAffine builds Translate(pos) * Rotate(rot) * Scale(scale).
func ComposeAffine(pos Vec3, rot Quat, scale Vec3) Affine {
	x, y, z, w := rot.X, rot.Y, rot.Z, rot.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	sx, sy, sz := scale.X, scale.Y, scale.Z
	return Affine{
		(1 - (yy + zz)) * sx, (xy - wz) * sy, (xz + wy) * sz,
		(xy + wz) * sx, (1 - (xx + zz)) * sy, (yz - wx) * sz,
		(xz - wy) * sx, (yz + wx) * sy, (1 - (xx + yy)) * sz,
		pos.X, pos.Y, pos.Z,
	}
}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties.
func computeLocalTransform(n *Node) Affine {
	return ComposeAffine(n.Position, n.Rotation, n.Scale)
}

// Mul multiplies two affine matrices: result = m * c (c applied first).
func (m Affine) Mul(c Affine) Affine {
	var r Affine
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row*3+col] = m[row*3]*c[col] + m[row*3+1]*c[3+col] + m[row*3+2]*c[6+col]
		}
		r[9+row] = m[row*3]*c[9] + m[row*3+1]*c[10] + m[row*3+2]*c[11] + m[9+row]
	}
	return r
}

// Inverse returns the inverse of m. Returns the identity matrix if the
// matrix is singular (determinant ≈ 0).
func (m Affine) Inverse() Affine {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	A := e*i - f*h
	B := -(d*i - f*g)
	C := d*h - e*g
	det := a*A + b*B + c*C
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	inv := 1 / det
	r := Affine{
		A * inv, -(b*i - c*h) * inv, (b*f - c*e) * inv,
		B * inv, (a*i - c*g) * inv, -(a*f - c*d) * inv,
		C * inv, -(a*h - b*g) * inv, (a*e - b*d) * inv,
	}
	t := Vec3{m[9], m[10], m[11]}
	r[9] = -(r[0]*t.X + r[1]*t.Y + r[2]*t.Z)
	r[10] = -(r[3]*t.X + r[4]*t.Y + r[5]*t.Z)
	r[11] = -(r[6]*t.X + r[7]*t.Y + r[8]*t.Z)
	return r
}

// TransformPoint applies m to a point.
func (m Affine) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[9],
		m[3]*p.X + m[4]*p.Y + m[5]*p.Z + m[10],
		m[6]*p.X + m[7]*p.Y + m[8]*p.Z + m[11],
	}
}

// Translation returns the translation column of m.
func (m Affine) Translation() Vec3 {
	return Vec3{m[9], m[10], m[11]}
}

// updateWorldTransform recomputes a node's world matrix and world rotation.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform Affine, parentRotation Quat, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = parentTransform.Mul(computeLocalTransform(n))
		n.worldRotation = parentRotation.Mul(n.Rotation).Normalize()
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldRotation, recompute)
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(p Vec3) {
	n.Position = p
	n.transformDirty = true
}

// SetScale sets the node's local scale and marks it dirty.
func (n *Node) SetScale(s Vec3) {
	n.Scale = s
	n.transformDirty = true
}

// SetRotation sets the node's local rotation and marks it dirty.
func (n *Node) SetRotation(q Quat) {
	n.Rotation = q
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next refresh. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(p Vec3) Vec3 {
	return n.worldTransform.Inverse().TransformPoint(p)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(p Vec3) Vec3 {
	return n.worldTransform.TransformPoint(p)
}

// WorldTransform returns the node's world matrix as of the last refresh.
func (n *Node) WorldTransform() Affine {
	return n.worldTransform
}

// WorldRotation returns the node's accumulated world rotation.
func (n *Node) WorldRotation() Quat {
	return n.worldRotation
}
