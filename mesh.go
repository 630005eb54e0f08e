package evergreen

// Mesh is an indexed triangle list in local space.
type Mesh struct {
	Vertices []Vec3
	Indices  []uint16
}

// ExtrudeOutline turns a closed 2D outline in the XY plane into a solid
// prism of the given depth along Z, centered on z=0. The outline must be
// star-shaped around its centroid (every vertex visible from it), which
// holds for regular stars and convex polygons.
func ExtrudeOutline(outline []Vec2, depth float64) *Mesh {
	n := len(outline)
	if n < 3 {
		return &Mesh{}
	}
	var cx, cy float64
	for _, p := range outline {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(n)
	cy /= float64(n)

	front, back := depth/2, -depth/2
	m := &Mesh{
		Vertices: make([]Vec3, 0, 2*(n+1)+4*n),
		Indices:  make([]uint16, 0, 6*n+6*n),
	}

	// Caps: a fan around the centroid on each face.
	for _, z := range []float64{front, back} {
		base := uint16(len(m.Vertices))
		m.Vertices = append(m.Vertices, Vec3{cx, cy, z})
		for _, p := range outline {
			m.Vertices = append(m.Vertices, Vec3{p.X, p.Y, z})
		}
		for i := 0; i < n; i++ {
			a := base + 1 + uint16(i)
			b := base + 1 + uint16((i+1)%n)
			if z == front {
				m.Indices = append(m.Indices, base, a, b)
			} else {
				m.Indices = append(m.Indices, base, b, a)
			}
		}
	}

	// Sides: one quad per outline edge, unshared vertices for flat shading.
	for i := 0; i < n; i++ {
		p, q := outline[i], outline[(i+1)%n]
		base := uint16(len(m.Vertices))
		m.Vertices = append(m.Vertices,
			Vec3{p.X, p.Y, front}, Vec3{q.X, q.Y, front},
			Vec3{q.X, q.Y, back}, Vec3{p.X, p.Y, back},
		)
		m.Indices = append(m.Indices, base, base+2, base+1, base, base+3, base+2)
	}
	return m
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (lo, hi Vec3) {
	if len(m.Vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo = Vec3{min(lo.X, v.X), min(lo.Y, v.Y), min(lo.Z, v.Z)}
		hi = Vec3{max(hi.X, v.X), max(hi.Y, v.Y), max(hi.Z, v.Z)}
	}
	return lo, hi
}

// Center translates the mesh so its bounding box is centered on the origin.
func (m *Mesh) Center() {
	lo, hi := m.Bounds()
	c := lo.Add(hi).Scale(0.5)
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Sub(c)
	}
}
