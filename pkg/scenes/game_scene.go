// Package scenes 把物理世界、实体工厂和各系统装配成可驱动的游戏场景
package scenes

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/game"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
	"github.com/gonewx/mergeball/pkg/systems"
)

// GameScene 合成球玩法场景
//
// 单线程协作模型：一次 Update 依次执行 排队请求 → 碰撞清理 →
// 物理步进 → 事件解释 → 合成解算 → 防御性清扫 → 视觉同步。
// 外部的投掷/能力/视口事件先排队，tick 开始时统一应用，核心内部
// 没有任何并行修改。
type GameScene struct {
	world    *physics.World
	registry *entities.Registry
	guard    *entities.Guard
	factory  *entities.Factory

	throwSystem   *systems.ThrowSystem
	mergeSystem   *systems.MergeSystem
	abilitySystem *systems.AbilitySystem
	resizeSystem  *systems.ResizeSystem

	scene   render.Scene
	state   *game.GameState
	economy game.Economy
	balance *config.BalanceConfig

	// requests tick 外到达的离散请求（投掷、能力激活）
	requests []func()
}

// NewGameScene 装配一个新的玩法场景
//
// rng 为 nil 时使用时间种子。世界创建失败是唯一的致命错误。
func NewGameScene(balance *config.BalanceConfig, layout *config.LayoutConfig,
	renderScene render.Scene, economy game.Economy, rng *rand.Rand,
	width, height float64) (*GameScene, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	world, err := physics.NewWorld(layout, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create physics world: %w", err)
	}

	state := game.NewGameState()
	registry := entities.NewRegistry()
	guard := entities.NewGuard(world, renderScene, registry)
	factory := entities.NewFactory(world, renderScene, registry, balance, rng, state.Now)

	throwSystem := systems.NewThrowSystem(world, renderScene, factory, registry, state, balance, rng)
	mergeSystem := systems.NewMergeSystem(world, factory, registry, guard, state, balance, economy)
	abilitySystem := systems.NewAbilitySystem(world, registry, guard, state, balance, economy, throwSystem)
	resizeSystem := systems.NewResizeSystem(world, renderScene, factory, registry, throwSystem)

	return &GameScene{
		world:         world,
		registry:      registry,
		guard:         guard,
		factory:       factory,
		throwSystem:   throwSystem,
		mergeSystem:   mergeSystem,
		abilitySystem: abilitySystem,
		resizeSystem:  resizeSystem,
		scene:         renderScene,
		state:         state,
		economy:       economy,
		balance:       balance,
	}, nil
}

// Update 推进一个 tick
func (g *GameScene) Update(dt float64) {
	// 排队的视口变化最先应用（后到者胜）
	g.resizeSystem.Apply()

	requests := g.requests
	g.requests = nil
	for _, fn := range requests {
		fn()
	}

	// PointerX 为零值表示指针从未上报过，发射器保持原位
	if g.state.PointerX > 0 {
		g.throwSystem.TrackPointer(g.state.PointerX)
	}

	// 暂停：在物理步进前短路
	if g.state.Paused {
		return
	}

	g.state.Advance(dt)

	// 固定顺序：sanitize 先于 step，step 先于合成解算
	g.world.SanitizeContacts()
	if err := g.world.Step(); err != nil {
		log.Printf("[GameScene] %v", err)
		g.world.RecoverStep()
	}

	events := g.world.Contacts().Drain()
	g.mergeSystem.HandleContacts(events)
	g.abilitySystem.HandleContacts(events)

	g.mergeSystem.Update()

	if g.balance.SweepInterval > 0 && g.state.Tick%g.balance.SweepInterval == 0 {
		g.guard.Sweep()
	}

	g.throwSystem.EnsurePending()
	g.syncVisuals()
}

// syncVisuals 把刚体位置同步到视觉句柄
func (g *GameScene) syncVisuals() {
	for _, ball := range g.registry.Snapshot() {
		if ball.Destroyed() || !physics.IsAlive(ball.Body) {
			continue
		}
		pos := ball.Body.GetPosition()
		g.scene.SetPosition(ball.Visual, g.world.ToPixels(pos.X), g.world.ToPixels(pos.Y))
	}
}

// SetPointer 更新指针水平位置（发射器跟随）
func (g *GameScene) SetPointer(x float64) {
	g.state.PointerX = x
}

// QueueThrow 排队一次投掷意图
func (g *GameScene) QueueThrow() {
	g.requests = append(g.requests, func() {
		if _, err := g.throwSystem.Throw(); err != nil {
			if errors.Is(err, systems.ErrOnCooldown) || errors.Is(err, systems.ErrTooManyBalls) ||
				errors.Is(err, systems.ErrSimulationPaused) {
				// 正常拒绝，不是故障
				return
			}
			log.Printf("[GameScene] Throw failed: %v", err)
		}
	})
}

// QueueAbility 排队一次能力激活
func (g *GameScene) QueueAbility(special entities.SpecialType) {
	g.requests = append(g.requests, func() {
		if err := g.abilitySystem.Activate(special); err != nil {
			log.Printf("[GameScene] Ability %s rejected: %v", special, err)
		}
	})
}

// QueueResize 排队一次视口变化
func (g *GameScene) QueueResize(width, height float64) {
	g.resizeSystem.Request(width, height)
}

// Pause 暂停仿真
func (g *GameScene) Pause() {
	g.state.Paused = true
}

// Resume 恢复仿真
func (g *GameScene) Resume() {
	g.state.Paused = false
}

// State 返回游戏状态
func (g *GameScene) State() *game.GameState {
	return g.state
}

// Economy 返回经济协作者
func (g *GameScene) Economy() game.Economy {
	return g.economy
}

// Registry 返回存活球注册表
func (g *GameScene) Registry() *entities.Registry {
	return g.registry
}

// World 返回物理世界
func (g *GameScene) World() *physics.World {
	return g.world
}

// Ability 返回特殊球系统（充能等外部操作用）
func (g *GameScene) Ability() *systems.AbilitySystem {
	return g.abilitySystem
}

// Throw 返回投掷系统
func (g *GameScene) Throw() *systems.ThrowSystem {
	return g.throwSystem
}

// Balance 返回平衡配置
func (g *GameScene) Balance() *config.BalanceConfig {
	return g.balance
}
