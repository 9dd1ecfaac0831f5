package systems

import (
	"fmt"
	"log"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/game"
	"github.com/gonewx/mergeball/pkg/physics"
)

// pairKey 一对球的有序标识，用于碰撞去重
type pairKey struct {
	a, b uint64
}

// makePairKey 规范化球对（小 ID 在前）
func makePairKey(idA, idB uint64) pairKey {
	if idA > idB {
		idA, idB = idB, idA
	}
	return pairKey{a: idA, b: idB}
}

// AbilitySystem 特殊球（公牛/炸弹）控制
//
// 激活前检查资源消耗，激活后把当前待投掷球替换为等级1的特殊球。
// 碰撞语义：公牛是传感器，穿过普通球并将其撞毁得分，只在落地时
// 消耗；炸弹是实体，与普通球接触时同归于尽。同一对球在短窗口内
// 的重复碰撞事件会被去重，避免重复得分/重复销毁。
type AbilitySystem struct {
	world    *physics.World
	registry *entities.Registry
	guard    *entities.Guard
	state    *game.GameState
	balance  *config.BalanceConfig
	economy  game.Economy
	throw    *ThrowSystem

	// bullUsed 公牛球单次使用，消耗后需外部 RechargeBull
	bullUsed bool

	// lastHit 球对最近一次命中时刻，用于去重窗口
	lastHit map[pairKey]float64
}

// NewAbilitySystem 创建特殊球系统
func NewAbilitySystem(world *physics.World, registry *entities.Registry,
	guard *entities.Guard, state *game.GameState, balance *config.BalanceConfig,
	economy game.Economy, throw *ThrowSystem) *AbilitySystem {
	return &AbilitySystem{
		world:    world,
		registry: registry,
		guard:    guard,
		state:    state,
		balance:  balance,
		economy:  economy,
		throw:    throw,
		lastHit:  make(map[pairKey]float64),
	}
}

// cost 返回指定能力的资源消耗
func (a *AbilitySystem) cost(special entities.SpecialType) float64 {
	switch special {
	case entities.SpecialBull:
		return a.balance.BullCost * a.economy.Capacity()
	case entities.SpecialBomb:
		return a.balance.BombCost * a.economy.Capacity()
	default:
		return 0
	}
}

// Activate 激活一个特殊球
//
// 成功时当前待投掷球被替换为等级1的特殊球（视觉尺寸按等级1计，
// 与类型无关）。资源不足或公牛未充能时返回拒绝原因。
func (a *AbilitySystem) Activate(special entities.SpecialType) error {
	switch special {
	case entities.SpecialBull, entities.SpecialBomb:
	default:
		return fmt.Errorf("not an ability type: %s", special)
	}

	if special == entities.SpecialBull && a.bullUsed {
		a.economy.Notify("Bull not recharged yet", game.NotifyRejected)
		return ErrOnCooldown
	}

	cost := a.cost(special)
	if !a.economy.CanAfford(cost) {
		a.economy.Notify(fmt.Sprintf("Not enough resource for %s (need %.0f)", special, cost),
			game.NotifyRejected)
		return ErrInsufficientResource
	}

	if err := a.throw.ReplacePending(1, special); err != nil {
		return fmt.Errorf("failed to arm %s: %w", special, err)
	}

	a.economy.Debit(cost)
	if special == entities.SpecialBull {
		a.bullUsed = true
	}
	log.Printf("[AbilitySystem] %s armed, cost %.1f", special, cost)
	return nil
}

// RechargeBull 外部充能，允许再次激活公牛球
func (a *AbilitySystem) RechargeBull() {
	a.bullUsed = false
}

// HandleContacts 处理本 tick 碰撞事件中的特殊球语义
func (a *AbilitySystem) HandleContacts(events []physics.ContactEvent) {
	for _, event := range events {
		a.handleContact(event.BodyA, event.BodyB)
		a.handleContact(event.BodyB, event.BodyA)
	}
	a.pruneHitCache()
}

// handleContact 单向处理：subject 是特殊球时解释这次接触
func (a *AbilitySystem) handleContact(subjectBody, otherBody *box2d.B2Body) {
	subject, ok := a.registry.ByBody(subjectBody)
	if !ok || subject.Destroyed() || subject.Special == entities.SpecialNone {
		return
	}

	// 落地：未消耗的特殊球无条件销毁
	if kind, isBoundary := a.world.IsBoundary(otherBody); isBoundary {
		if kind == physics.BoundaryFloor {
			log.Printf("[AbilitySystem] %s ball %d hit the floor, destroyed", subject.Special, subject.ID)
			a.guard.SafeDestroy(subject)
		}
		// 撞墙忽略
		return
	}

	victim, ok := a.registry.ByBody(otherBody)
	if !ok || victim.Destroyed() || victim.Special != entities.SpecialNone {
		// 特殊球之间的接触不处理
		return
	}

	if !a.dedupe(subject.ID, victim.ID) {
		return
	}

	switch subject.Special {
	case entities.SpecialBull:
		// 公牛穿过普通球：按对方等级得分并销毁对方，公牛存活
		a.state.AddScore(victim.Level)
		log.Printf("[AbilitySystem] Bull ball %d smashed ball %d (level %d), +%d points",
			subject.ID, victim.ID, victim.Level, victim.Level)
		a.guard.SafeDestroy(victim)
	case entities.SpecialBomb:
		// 炸弹与普通球同归于尽
		log.Printf("[AbilitySystem] Bomb ball %d detonated on ball %d (level %d)",
			subject.ID, victim.ID, victim.Level)
		a.guard.SafeDestroy(victim)
		a.guard.SafeDestroy(subject)
	case entities.SpecialNone:
		// 上面已过滤
	}
}

// dedupe 同一对球在去重窗口内只处理一次，返回是否应当处理
func (a *AbilitySystem) dedupe(idA, idB uint64) bool {
	key := makePairKey(idA, idB)
	now := a.state.Now()
	if last, seen := a.lastHit[key]; seen && now-last < a.balance.ContactDedupeWindow {
		return false
	}
	a.lastHit[key] = now
	return true
}

// pruneHitCache 清理过期的去重记录
func (a *AbilitySystem) pruneHitCache() {
	now := a.state.Now()
	for key, at := range a.lastHit {
		if now-at >= a.balance.ContactDedupeWindow {
			delete(a.lastHit, key)
		}
	}
}
