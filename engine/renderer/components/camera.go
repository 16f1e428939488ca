package components

import (
	"github.com/charmbracelet/harmonica"

	"github.com/spaghettifunk/featherwing/engine/math"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

const (
	DefaultFOV         float32 = 45
	DefaultNearClip    float32 = 0.1
	DefaultFarClip     float32 = 1000
	DefaultAspectRatio float32 = 16.0 / 9.0
	DefaultFrameRate   int     = 60

	// fov spring tuning
	fovSpringFrequency = 6.0
	fovSpringDamping   = 1.0
	fovSettleEpsilon   = 1e-3
)

/**
 * @brief Represents a camera that looks at a target. The field of view
 * is eased toward its target value by a critically damped spring, one
 * step per frame. Ideally, these are created and managed by the camera
 * system.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. */
	Target math.Vec3
	Up     math.Vec3

	/** @brief The current vertical field of view, in degrees. */
	FOV         float32
	AspectRatio float32
	NearClip    float32
	FarClip     float32

	targetFOV   float64
	fovVelocity float64
	spring      harmonica.Spring

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty           bool
	isProjectionDirty bool
	viewMatrix        math.Mat4
	projectionMatrix  math.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Position = math.NewVec3Zero()
	c.Target = math.NewVec3Forward()
	c.Up = math.NewVec3Up()
	c.FOV = DefaultFOV
	c.AspectRatio = DefaultAspectRatio
	c.NearClip = DefaultNearClip
	c.FarClip = DefaultFarClip
	c.targetFOV = float64(DefaultFOV)
	c.fovVelocity = 0
	c.SetFrameRate(DefaultFrameRate)
	c.IsDirty = true
	c.isProjectionDirty = true
}

// SetFrameRate retunes the fov spring for the given number of updates per second.
func (c *Camera) SetFrameRate(fps int) {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	c.spring = harmonica.NewSpring(harmonica.FPS(fps), fovSpringFrequency, fovSpringDamping)
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) LookAt(target math.Vec3) {
	c.Target = target
	c.IsDirty = true
}

// SetFOV jumps straight to fov degrees.
func (c *Camera) SetFOV(fov float32) {
	c.FOV = fov
	c.targetFOV = float64(fov)
	c.fovVelocity = 0
	c.isProjectionDirty = true
}

// SetTargetFOV makes Update ease the field of view toward fov degrees.
func (c *Camera) SetTargetFOV(fov float32) {
	c.targetFOV = float64(fov)
}

func (c *Camera) TargetFOV() float32 {
	return float32(c.targetFOV)
}

func (c *Camera) SetAspectRatio(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.AspectRatio = aspect
	c.isProjectionDirty = true
}

func (c *Camera) SetClipPlanes(near, far float32) {
	c.NearClip, c.FarClip = near, far
	c.isProjectionDirty = true
}

// Update advances the fov spring by one frame. It reports whether the
// projection changed.
func (c *Camera) Update() bool {
	current := float64(c.FOV)
	if current == c.targetFOV && c.fovVelocity == 0 {
		return false
	}
	pos, vel := c.spring.Update(current, c.fovVelocity, c.targetFOV)
	if diff := pos - c.targetFOV; diff < fovSettleEpsilon && diff > -fovSettleEpsilon && vel < fovSettleEpsilon && vel > -fovSettleEpsilon {
		pos, vel = c.targetFOV, 0
	}
	c.FOV = float32(pos)
	c.fovVelocity = vel
	c.isProjectionDirty = true
	return true
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.viewMatrix = math.NewMat4LookAt(c.Position, c.Target, c.Up)
		c.IsDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) GetProjection() math.Mat4 {
	if c.isProjectionDirty {
		fov := math.Clamp(c.FOV, 1, 179)
		c.projectionMatrix = math.NewMat4Perspective(math.DegToRad(fov), c.AspectRatio, c.NearClip, c.FarClip)
		c.isProjectionDirty = false
	}
	return c.projectionMatrix
}

// ViewProjection returns view followed by projection.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.GetView().Mul(c.GetProjection())
}

func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(c.Up).Normalize()
}
