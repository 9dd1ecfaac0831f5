package entities

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
	"github.com/gonewx/mergeball/pkg/scale"
)

// SpawnError 球创建失败（可恢复，调用方可用等级1回退重试）
type SpawnError struct {
	Level   int
	Special SpecialType
	Reason  string
}

// Error 实现 error 接口
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn ball failed (level=%d, special=%s): %s", e.Level, e.Special, e.Reason)
}

// Factory 球实体工厂
//
// 创建物理刚体 + 视觉句柄配对的唯一入口。任何一步失败都会回滚已
// 建立的部分，绝不返回"半个球"。工厂从不直接销毁球——销毁统一
// 走 Guard.SafeDestroy，保证单一销毁路径。
type Factory struct {
	world    *physics.World
	scene    render.Scene
	registry *Registry
	balance  *config.BalanceConfig
	rng      *rand.Rand
	now      func() float64
}

// NewFactory 创建球工厂
//
// 参数:
//   - world: 物理世界
//   - scene: 视觉层协作者
//   - registry: 存活球注册表
//   - balance: 平衡配置
//   - rng: 随机数源（角速度扰动）
//   - now: 仿真时钟，返回当前仿真时间（秒）
func NewFactory(world *physics.World, scene render.Scene, registry *Registry,
	balance *config.BalanceConfig, rng *rand.Rand, now func() float64) *Factory {
	return &Factory{
		world:    world,
		scene:    scene,
		registry: registry,
		balance:  balance,
		rng:      rng,
		now:      now,
	}
}

// Balance 返回工厂使用的平衡配置
func (f *Factory) Balance() *config.BalanceConfig {
	return f.balance
}

// Spawn 在指定像素坐标创建一个球
//
// 物理半径 = 等级半径 × 类型倍率，下限由 scale 包保证。
// 失败时返回 *SpawnError，已创建的刚体会在返回前销毁。
func (f *Factory) Spawn(level int, special SpecialType, xPx, yPx float64) (*Ball, error) {
	if level < scale.MinLevel || level > scale.MaxLevel {
		return nil, &SpawnError{Level: level, Special: special,
			Reason: fmt.Sprintf("level out of range [%d,%d]", scale.MinLevel, scale.MaxLevel)}
	}
	if f.world == nil || f.world.B2() == nil {
		return nil, &SpawnError{Level: level, Special: special, Reason: "world not available"}
	}

	viewportWidth, _ := f.world.Size()
	radius := scale.PhysicalRadius(level, viewportWidth, f.world.Layout().PixelsPerUnit) *
		special.RadiusScale(f.balance)

	body, fixture, err := f.createBody(special, radius, xPx, yPx)
	if err != nil {
		return nil, &SpawnError{Level: level, Special: special, Reason: err.Error()}
	}

	visual, err := f.scene.CreateVisual(
		render.VisualKind{Level: level, Variant: special.Variant()},
		xPx, yPx, f.world.ToPixels(radius))
	if err != nil {
		// 视觉创建失败：回滚刚体，绝不留下没有视觉句柄的物理实体
		f.rollbackBody(body)
		return nil, &SpawnError{Level: level, Special: special,
			Reason: fmt.Sprintf("visual creation failed: %v", err)}
	}

	ball := &Ball{
		Level:                 level,
		Special:               special,
		Body:                  body,
		Fixture:               fixture,
		Visual:                visual,
		OriginalViewportWidth: viewportWidth,
		CreatedAt:             f.now(),
	}
	body.SetUserData(ball)
	f.registry.Add(ball)

	// 动态刚体加一点随机角速度，让堆叠更自然
	body.SetAngularVelocity((f.rng.Float64()*2 - 1) * 2.0)

	return ball, nil
}

// createBody 创建刚体和碰撞形状，底层异常转为错误返回
func (f *Factory) createBody(special SpecialType, radius, xPx, yPx float64) (body *box2d.B2Body, fixture *box2d.B2Fixture, err error) {
	defer func() {
		if r := recover(); r != nil {
			body, fixture = nil, nil
			err = fmt.Errorf("body creation panicked: %v", r)
		}
	}()

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(f.world.ToUnits(xPx), f.world.ToUnits(yPx))
	bd.FixedRotation = false
	body = f.world.B2().CreateBody(&bd)

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = radius

	density, friction, restitution := special.fixtureParams()
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = density
	fd.Friction = friction
	fd.Restitution = restitution
	fd.IsSensor = special.sensor()
	fd.Filter = box2d.MakeB2Filter()
	fd.Filter.CategoryBits = special.category()
	fd.Filter.MaskBits = physics.MaskAll
	fixture = body.CreateFixtureFromDef(&fd)

	return body, fixture, nil
}

// RebuildFixture 以新的半径重建球的碰撞形状（刚体身份保留）
//
// 视口缩放时由 ResizeSystem 调用。失败时保留旧形状并返回错误。
func (f *Factory) RebuildFixture(ball *Ball, radius float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fixture rebuild panicked: %v", r)
		}
	}()
	if ball == nil || ball.Body == nil {
		return fmt.Errorf("ball has no body")
	}

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = radius

	density, friction, restitution := ball.Special.fixtureParams()
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = density
	fd.Friction = friction
	fd.Restitution = restitution
	fd.IsSensor = ball.Special.sensor()
	fd.Filter = box2d.MakeB2Filter()
	fd.Filter.CategoryBits = ball.Special.category()
	fd.Filter.MaskBits = physics.MaskAll

	newFixture := ball.Body.CreateFixtureFromDef(&fd)

	if ball.Fixture != nil {
		old := ball.Fixture
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Factory] Failed to destroy old fixture of ball %d: %v", ball.ID, r)
				}
			}()
			ball.Body.DestroyFixture(old)
		}()
	}
	ball.Fixture = newFixture
	return nil
}

// rollbackBody 回滚创建到一半的刚体
func (f *Factory) rollbackBody(body *box2d.B2Body) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Factory] Rollback failed: %v", r)
		}
	}()
	if body != nil {
		f.world.B2().DestroyBody(body)
	}
}
