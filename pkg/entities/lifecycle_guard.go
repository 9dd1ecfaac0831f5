package entities

import (
	"log"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
)

// Guard 生命周期守卫
//
// 核心不变量：任何球都不会被销毁两次，仿真步进也不会引用已销毁
// 的刚体。所有销毁路径（合成、特殊球消耗、落地、防御性清扫）都
// 汇聚到 SafeDestroy。
type Guard struct {
	world    *physics.World
	scene    render.Scene
	registry *Registry
}

// NewGuard 创建生命周期守卫
func NewGuard(world *physics.World, scene render.Scene, registry *Registry) *Guard {
	return &Guard{
		world:    world,
		scene:    scene,
		registry: registry,
	}
}

// IsBallAlive 判断球是否仍可安全参与仿真
func (g *Guard) IsBallAlive(ball *Ball) bool {
	if ball.Destroyed() {
		return false
	}
	return physics.IsAlive(ball.Body)
}

// SafeDestroy 幂等地销毁一个球
//
// 先从注册表摘除（并发扫描无法再次进入），再依次销毁视觉句柄、
// 清零用户数据、停止并禁用刚体、销毁碰撞形状、移出世界。
// 每一步独立保护，单步失败不中断其余步骤。
func (g *Guard) SafeDestroy(ball *Ball) {
	if ball == nil || ball.destroyed {
		return
	}
	ball.destroyed = true
	ball.ClearMark()
	g.registry.Remove(ball)

	// 视觉句柄（含附属效果）
	g.step("destroy visual", ball, func() {
		if ball.Visual != nil {
			g.scene.DestroyVisual(ball.Visual)
			ball.Visual = nil
		}
	})

	body := ball.Body
	if body == nil {
		return
	}

	g.step("zero user data", ball, func() {
		body.SetUserData(nil)
	})
	g.step("stop motion", ball, func() {
		body.SetLinearVelocity(box2d.MakeB2Vec2(0, 0))
		body.SetAngularVelocity(0)
	})
	g.step("deactivate body", ball, func() {
		body.SetActive(false)
	})
	g.step("destroy fixtures", ball, func() {
		for fixture := body.GetFixtureList(); fixture != nil; {
			next := fixture.GetNext()
			body.DestroyFixture(fixture)
			fixture = next
		}
	})
	g.step("remove body", ball, func() {
		g.world.B2().DestroyBody(body)
	})

	ball.Body = nil
	ball.Fixture = nil
}

// step 执行单个销毁步骤，捕获异常并记录
func (g *Guard) step(name string, ball *Ball, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Guard] Destroy step %q failed for ball %d: %v (continuing)", name, ball.ID, r)
		}
	}()
	fn()
}

// Sweep 防御性清扫
//
// 移除视觉句柄或刚体引用已经丢失、却从未走过销毁流程的球
// （某条代码路径中途失败的残留）。周期性地由引擎调用。
func (g *Guard) Sweep() int {
	removed := 0
	for _, ball := range g.registry.Snapshot() {
		if ball.Destroyed() {
			continue
		}
		if ball.Visual == nil || !ball.Visual.Valid() || !physics.IsAlive(ball.Body) {
			log.Printf("[Guard] Sweep: ball %d (level %d) has dangling handles, destroying", ball.ID, ball.Level)
			g.SafeDestroy(ball)
			removed++
		}
	}
	return removed
}
