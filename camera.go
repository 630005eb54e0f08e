package evergreen

import "math"

// Camera is a perspective camera that always looks at Target. Its local -Z
// axis is the view direction.
type Camera struct {
	Position Vec3
	Target   Vec3
	// FOV is the vertical field of view in degrees.
	FOV  float64
	Near float64

	cfg CameraConfig
}

// NewCamera creates a camera at the configured resting distance.
func NewCamera(cfg CameraConfig) *Camera {
	return &Camera{
		Position: Vec3{0, 0, cfg.Distance},
		FOV:      cfg.FOV,
		Near:     0.1,
		cfg:      cfg,
	}
}

// Rotation returns the camera's world rotation. Local +Z points from the
// target back toward the camera.
func (c *Camera) Rotation() Quat {
	return QuatFacing(c.Position.Sub(c.Target), WorldUp)
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() Affine {
	return ComposeAffine(c.Position, c.Rotation(), Splat(1)).Inverse()
}

// Project maps a world point onto a w×h viewport. depth is the distance in
// front of the camera; ok is false for points behind the near plane.
func (c *Camera) Project(p Vec3, w, h float64) (x, y, depth float64, ok bool) {
	return c.ProjectView(c.ViewMatrix(), p, w, h)
}

// ProjectView is Project with a precomputed view matrix, for hot loops.
func (c *Camera) ProjectView(view Affine, p Vec3, w, h float64) (x, y, depth float64, ok bool) {
	v := view.TransformPoint(p)
	depth = -v.Z
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	f := c.focal()
	aspect := w / h
	ndcX := f / aspect * v.X / depth
	ndcY := f * v.Y / depth
	return (ndcX + 1) / 2 * w, (1 - ndcY) / 2 * h, depth, true
}

// PixelsPerUnit returns how many pixels one world unit spans at depth on a
// viewport h pixels tall.
func (c *Camera) PixelsPerUnit(depth, h float64) float64 {
	if depth <= 0 {
		return 0
	}
	return c.focal() * h / 2 / depth
}

func (c *Camera) focal() float64 {
	return 1 / math.Tan(c.FOV*math.Pi/360)
}

// update chases the cursor-driven goal, or the fixed showcase pose while a
// winner is presented, and keeps looking at the origin.
func (c *Camera) update(dt float64, cursor Vec2, showcase bool) {
	goal := Vec3{cursor.X * c.cfg.SwayX, cursor.Y*c.cfg.SwayY + c.cfg.Lift, c.cfg.Distance}
	if showcase {
		goal = Vec3{0, 0, c.cfg.ShowcaseDistance}
	}
	c.Position = c.Position.Lerp(goal, frameFactor(c.cfg.FollowLerp, dt))
	c.Target = Vec3{}
}
