package systems

import (
	"log"
	"math/rand"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/game"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
	"github.com/gonewx/mergeball/pkg/scale"
)

// ThrowSystem 投掷控制
//
// 负责投掷节流、发射初速度、把 PendingBall 提升为场上的 Ball，
// 并按等级概率表生成下一个待投掷球。内部异常一律自愈：无论发生
// 什么，调用返回后总存在一个有效的待投掷球。
type ThrowSystem struct {
	world    *physics.World
	scene    render.Scene
	factory  *entities.Factory
	registry *entities.Registry
	state    *game.GameState
	balance  *config.BalanceConfig
	rng      *rand.Rand

	pending           *entities.PendingBall
	lastThrowAt       float64
	consecutiveThrows int
}

// NewThrowSystem 创建投掷系统并准备第一个待投掷球
func NewThrowSystem(world *physics.World, scene render.Scene, factory *entities.Factory,
	registry *entities.Registry, state *game.GameState, balance *config.BalanceConfig,
	rng *rand.Rand) *ThrowSystem {
	s := &ThrowSystem{
		world:       world,
		scene:       scene,
		factory:     factory,
		registry:    registry,
		state:       state,
		balance:     balance,
		rng:         rng,
		lastThrowAt: -1e9,
	}
	s.EnsurePending()
	return s
}

// Pending 返回当前待投掷球
func (s *ThrowSystem) Pending() *entities.PendingBall {
	return s.pending
}

// EnsurePending 自愈：保证存在一个有效的待投掷球
//
// 缺失或失效时在发射器位置补一个等级1的回退球。
func (s *ThrowSystem) EnsurePending() {
	if s.pending.Valid() {
		return
	}
	if s.pending != nil {
		s.pending.Destroy()
		s.pending = nil
	}
	if err := s.spawnPending(1, entities.SpecialNone); err != nil {
		log.Printf("[ThrowSystem] Fallback pending ball failed: %v", err)
	}
}

// spawnPending 在发射器位置创建指定的待投掷球
func (s *ThrowSystem) spawnPending(level int, special entities.SpecialType) error {
	lx, ly := s.world.LauncherPosition()
	x := lx
	if s.pending != nil {
		// 保持玩家当前的水平瞄准位置
		x = s.pending.X
	}
	if s.state.PointerX > 0 {
		x = s.clampToField(s.state.PointerX, level)
	}
	width, _ := s.world.Size()

	pending, err := entities.NewPendingBall(s.scene, level, special, x, ly, width)
	if err != nil {
		return err
	}
	s.pending = pending
	return nil
}

// ReplacePending 用指定的特殊球替换当前待投掷球（能力激活时调用）
func (s *ThrowSystem) ReplacePending(level int, special entities.SpecialType) error {
	old := s.pending
	s.pending = nil
	if err := s.spawnPending(level, special); err != nil {
		// 替换失败：保留旧球，保证始终有待投掷球
		s.pending = old
		s.EnsurePending()
		return err
	}
	if old != nil {
		old.Destroy()
	}
	return nil
}

// TrackPointer 让待投掷球水平跟随指针
func (s *ThrowSystem) TrackPointer(x float64) {
	if !s.pending.Valid() {
		return
	}
	s.pending.MoveTo(s.clampToField(x, s.pending.Level))
}

// clampToField 将水平位置限制在两墙之间（留出球半径）
func (s *ThrowSystem) clampToField(x float64, level int) float64 {
	width, _ := s.world.Size()
	r := scale.VisualRadius(level, width)
	if x < r {
		return r
	}
	if x > width-r {
		return width - r
	}
	return x
}

// Throw 执行一次投掷
//
// 前置条件按序检查：未暂停、待投掷球有效（自愈）、冷却已过、
// 球数未达上限。不满足时返回拒绝原因且不产生副作用。
// 内部异常被捕获记录，调用返回后仍保证有有效的待投掷球。
func (s *ThrowSystem) Throw() (ball *entities.Ball, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ThrowSystem] Throw panicked: %v (self-repairing)", r)
			ball, err = nil, nil
		}
		s.EnsurePending()
	}()

	if s.state.Paused {
		return nil, ErrSimulationPaused
	}

	s.EnsurePending()
	if !s.pending.Valid() {
		// 自愈也失败了（场景拒绝创建视觉对象），本次投掷静默放弃
		log.Printf("[ThrowSystem] No valid pending ball, throw skipped")
		return nil, nil
	}

	now := s.state.Now()

	// 长时间没有投掷就不算"连续"
	if now-s.lastThrowAt > s.balance.ThrowCooldown*2 {
		s.consecutiveThrows = 0
	}

	if now-s.lastThrowAt < s.cooldown() {
		return nil, ErrOnCooldown
	}

	if s.registry.Count() >= s.balance.MaxBalls {
		return nil, ErrTooManyBalls
	}

	pending := s.pending
	ball, spawnErr := s.factory.Spawn(pending.Level, pending.Special, pending.X, pending.Y)
	if spawnErr != nil {
		// 可恢复：用等级1回退重试一次
		log.Printf("[ThrowSystem] Spawn failed: %v (retrying with level 1)", spawnErr)
		ball, spawnErr = s.factory.Spawn(1, entities.SpecialNone, pending.X, pending.Y)
		if spawnErr != nil {
			log.Printf("[ThrowSystem] Fallback spawn failed: %v", spawnErr)
			return nil, nil
		}
	}

	// 发射初速度：固定竖直分量 + 小幅水平抖动
	vx := (s.rng.Float64()*2 - 1) * s.balance.LaunchJitterX
	ball.Body.SetLinearVelocity(box2d.MakeB2Vec2(vx, s.balance.LaunchSpeedY))

	pending.Destroy()
	s.pending = nil

	s.lastThrowAt = now
	s.consecutiveThrows++
	if s.consecutiveThrows >= s.balance.ConsecutiveThrowLimit {
		// 反连点：强制追加一个冷却周期
		s.lastThrowAt = now + s.balance.ThrowCooldown
		s.consecutiveThrows = 0
		log.Printf("[ThrowSystem] Consecutive throw limit hit, extra cooldown applied")
	}

	// 生成下一个待投掷球
	if err := s.spawnPending(s.nextLevel(), entities.SpecialNone); err != nil {
		log.Printf("[ThrowSystem] Next pending ball failed: %v", err)
	}

	return ball, nil
}

// cooldown 返回当前应用的冷却时长
func (s *ThrowSystem) cooldown() float64 {
	return s.balance.ThrowCooldown
}

// nextLevel 按累计概率表抽取新球等级
func (s *ThrowSystem) nextLevel() int {
	roll := s.rng.Float64()
	for i, threshold := range s.balance.LevelThresholds {
		if roll < threshold {
			return i + 1
		}
	}
	return len(s.balance.LevelThresholds)
}
