package systems

import (
	"log"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
	"github.com/gonewx/mergeball/pkg/scale"
)

// ResizeSystem 视口变化协调
//
// 视口尺寸变化时重建边界，并把每个存活球的水平位置、水平速度和
// 碰撞半径按比例迁移（竖直方向是重力轴，不缩放）。请求在 tick 外
// 到达时只排队，tick 开始时统一应用；重复请求后到者胜。
type ResizeSystem struct {
	world    *physics.World
	scene    render.Scene
	factory  *entities.Factory
	registry *entities.Registry
	throw    *ThrowSystem

	pendingWidth  float64
	pendingHeight float64
	hasPending    bool
}

// NewResizeSystem 创建视口协调系统
func NewResizeSystem(world *physics.World, scene render.Scene, factory *entities.Factory,
	registry *entities.Registry, throw *ThrowSystem) *ResizeSystem {
	return &ResizeSystem{
		world:    world,
		scene:    scene,
		factory:  factory,
		registry: registry,
		throw:    throw,
	}
}

// Request 排队一次视口变化，后到的请求覆盖先前未应用的
func (r *ResizeSystem) Request(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	r.pendingWidth = width
	r.pendingHeight = height
	r.hasPending = true
}

// Apply 在 tick 开始时应用排队的视口变化
//
// 部分应用是可接受的：单个球迁移失败只记录日志，下次 resize 或
// 下次合成/生成时会自我纠正。
func (r *ResizeSystem) Apply() {
	if !r.hasPending {
		return
	}
	width, height := r.pendingWidth, r.pendingHeight
	r.hasPending = false

	log.Printf("[ResizeSystem] Applying viewport change to %.0fx%.0f", width, height)
	r.world.RebuildBoundaries(width, height)

	for _, ball := range r.registry.Snapshot() {
		if ball.Destroyed() || !physics.IsAlive(ball.Body) {
			continue
		}
		if err := r.migrateBall(ball, width); err != nil {
			log.Printf("[ResizeSystem] Failed to migrate ball %d: %v (continuing)", ball.ID, err)
		}
	}

	// 待投掷球回到（新的）发射器位置并重设视觉尺寸
	if pending := r.throw.Pending(); pending.Valid() {
		lx, ly := r.world.LauncherPosition()
		pending.Rescale(lx, ly, width)
	}
}

// migrateBall 按新视口迁移单个球
//
// 水平位置和水平速度按 scaleFactor 缩放，碰撞形状以新半径重建
// （刚体身份保留），最后更新该球的基准视口宽度。
func (r *ResizeSystem) migrateBall(ball *entities.Ball, newWidth float64) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = nil
			log.Printf("[ResizeSystem] Ball %d migration panicked: %v", ball.ID, rec)
		}
	}()

	factor := newWidth / ball.OriginalViewportWidth
	body := ball.Body

	pos := body.GetPosition()
	body.SetTransform(box2d.MakeB2Vec2(pos.X*factor, pos.Y), body.GetAngle())

	vel := body.GetLinearVelocity()
	body.SetLinearVelocity(box2d.MakeB2Vec2(vel.X*factor, vel.Y))

	radius := scale.PhysicalRadius(ball.Level, newWidth, r.world.Layout().PixelsPerUnit) *
		ball.Special.RadiusScale(r.factory.Balance())
	if err := r.factory.RebuildFixture(ball, radius); err != nil {
		return err
	}

	ball.OriginalViewportWidth = newWidth

	newPos := body.GetPosition()
	r.scene.SetPosition(ball.Visual, r.world.ToPixels(newPos.X), r.world.ToPixels(newPos.Y))
	r.scene.SetRadius(ball.Visual, r.world.ToPixels(radius))
	return nil
}
