package evergreen

// FormationThreshold is the blend level at which instances stop facing the
// camera and turn to face outward from the tree axis.
const FormationThreshold = 0.8

// Instance is one per-frame transform slot of an instanced drawable.
type Instance struct {
	Position Vec3
	Scale    Vec3
	Rotation Quat
	Color    Color
}

// FrameContext carries the per-tick inputs shared by every animator.
type FrameContext struct {
	// Dt is the step in seconds; Elapsed is the scene clock in seconds.
	Dt      float64
	Elapsed float64
	Camera  *Camera
	Status  LotteryStatus
}

// Showcase reports whether a winner is being presented.
func (c *FrameContext) Showcase() bool {
	return c.Status.Showcase()
}

// InstancedGroup animates one ornament class drawn as a single instanced
// node. The group owns its instance buffer; nothing else writes to it.
type InstancedGroup struct {
	Node      *Node
	Ornaments []OrnamentInstance
	Blend     BlendState
}

// NewInstancedGroup creates a group and seeds its buffer with the formed layout.
func NewInstancedGroup(name string, ornaments []OrnamentInstance, rate float64) *InstancedGroup {
	g := &InstancedGroup{
		Node:      NewInstanced(name, len(ornaments)),
		Ornaments: ornaments,
		Blend:     NewBlendState(rate),
	}
	for i, o := range ornaments {
		g.Node.Instances[i] = Instance{
			Position: o.TargetPosition,
			Scale:    o.TargetScale,
			Rotation: QuatIdentity,
			Color:    o.BaseColor,
		}
	}
	return g
}

// SetTarget sets the blend target.
func (g *InstancedGroup) SetTarget(t float64) {
	g.Blend.Target = clamp01(t)
}

// Update steps the blend and rewrites every instance slot.
func (g *InstancedGroup) Update(ctx *FrameContext) {
	t := g.Blend.Step(ctx.Dt)
	camLocal := g.cameraLocal(ctx)
	for i := range g.Ornaments {
		o := &g.Ornaments[i]
		inst := &g.Node.Instances[i]
		inst.Position = o.ChaosPosition.Lerp(o.TargetPosition, t)
		inst.Scale = o.ChaosScale.Lerp(o.TargetScale, t)
		inst.Rotation = orientInstance(inst.Position, camLocal, t)
		inst.Color = o.BaseColor
	}
}

// cameraLocal returns the camera position in the group's local frame.
func (g *InstancedGroup) cameraLocal(ctx *FrameContext) Vec3 {
	if ctx.Camera == nil {
		return Vec3{0, 0, 1}
	}
	return g.Node.WorldToLocal(ctx.Camera.Position)
}

// orientInstance applies the orientation policy: billboard toward the camera
// while dispersing, face radially outward once nearly formed.
func orientInstance(pos, camLocal Vec3, t float64) Quat {
	if t < FormationThreshold {
		return QuatFacing(camLocal.Sub(pos), WorldUp)
	}
	return radialFacing(pos)
}

// radialFacing faces away from the tree axis at the point's own height.
func radialFacing(pos Vec3) Quat {
	return QuatFacing(Vec3{pos.X, 0, pos.Z}, WorldUp)
}
