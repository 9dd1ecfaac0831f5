package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/game"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/scale"
)

// MergeSystem 合成解算
//
// 每对标记按状态机流转：Unmarked → Marked(mergeWith, markedAt) →
// Resolved | Expired。标记由碰撞事件驱动；事件可能漏报（传感器与
// 碰撞过滤的怪癖），因此每隔 ForceCheckInterval 个 tick 做一次全量
// O(n²) 复查，作为正确性兜底。
type MergeSystem struct {
	world    *physics.World
	factory  *entities.Factory
	registry *entities.Registry
	guard    *entities.Guard
	state    *game.GameState
	balance  *config.BalanceConfig
	economy  game.Economy

	// rewarded 每档奖励只发一次
	rewarded map[int]bool
}

// NewMergeSystem 创建合成系统
func NewMergeSystem(world *physics.World, factory *entities.Factory,
	registry *entities.Registry, guard *entities.Guard, state *game.GameState,
	balance *config.BalanceConfig, economy game.Economy) *MergeSystem {
	return &MergeSystem{
		world:    world,
		factory:  factory,
		registry: registry,
		guard:    guard,
		state:    state,
		balance:  balance,
		economy:  economy,
		rewarded: make(map[int]bool),
	}
}

// HandleContacts 处理本 tick 的碰撞事件：标记可合成的同级球对
//
// 只做标记不做销毁（mark first, resolve in a second pass），
// 并施加一个小的相互吸引冲量，防止两球弹开导致标记失配。
func (m *MergeSystem) HandleContacts(events []physics.ContactEvent) {
	now := m.state.Now()
	for _, event := range events {
		a, okA := m.registry.ByBody(event.BodyA)
		b, okB := m.registry.ByBody(event.BodyB)
		if !okA || !okB {
			continue
		}
		m.tryMark(a, b, now)
	}
}

// tryMark 标记一对可合成的球
func (m *MergeSystem) tryMark(a, b *entities.Ball, now float64) {
	if a.Destroyed() || b.Destroyed() || a == b {
		return
	}
	// 只有普通球参与合成
	if a.Special != entities.SpecialNone || b.Special != entities.SpecialNone {
		return
	}
	// 顶级球是终态，永不合成
	if a.Level != b.Level || a.Level >= scale.MaxLevel {
		return
	}
	if !m.guard.IsBallAlive(a) || !m.guard.IsBallAlive(b) {
		return
	}

	// 已有其他标记的球不抢占，等它过期或解算
	if pa, _ := a.MergeMark(); pa != nil && pa != b {
		return
	}
	if pb, _ := b.MergeMark(); pb != nil && pb != a {
		return
	}

	a.MarkMerge(b, now)
	b.MarkMerge(a, now)
	m.attract(a, b)
}

// attract 对标记对施加相互吸引冲量，促使视觉上贴合
func (m *MergeSystem) attract(a, b *entities.Ball) {
	defer func() { recover() }()
	pa := a.Body.GetPosition()
	pb := b.Body.GetPosition()
	dx, dy := pb.X-pa.X, pb.Y-pa.Y
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		return
	}
	imp := m.balance.MergeImpulse
	a.Body.ApplyLinearImpulse(box2d.MakeB2Vec2(dx/dist*imp, dy/dist*imp), a.Body.GetWorldCenter(), true)
	b.Body.ApplyLinearImpulse(box2d.MakeB2Vec2(-dx/dist*imp, -dy/dist*imp), b.Body.GetWorldCenter(), true)
}

// Update 每 tick 的解算扫描
//
// 对互相引用且等级一致的标记对执行合成；失配标记清除，过期标记
// 强制作废。单个 tick 的解算数量有上限，剩余的下个 tick 继续。
func (m *MergeSystem) Update() {
	if m.state.Tick%m.balance.ForceCheckInterval == 0 {
		m.ForceCheck()
	}

	now := m.state.Now()
	resolved := 0

	for _, ball := range m.registry.Snapshot() {
		if resolved >= m.balance.MergesPerTick {
			break
		}
		if ball.Destroyed() {
			continue
		}
		partner, markedAt := ball.MergeMark()
		if partner == nil {
			continue
		}

		// Expired: 超时未解算，强制清除防止"卡死的合成"
		if now-markedAt > m.balance.MarkTimeout {
			ball.ClearMark()
			continue
		}

		// 对端失效或等级不再匹配的陈旧标记直接清除
		if partner.Destroyed() || partner.Level != ball.Level || !m.guard.IsBallAlive(partner) {
			ball.ClearMark()
			continue
		}

		// 必须互相引用
		if reciprocal, _ := partner.MergeMark(); reciprocal != ball {
			ball.ClearMark()
			continue
		}

		m.resolve(ball, partner)
		resolved++
	}
}

// resolve 执行一次合成：销毁两球，在中点生成 level+1 的新球
func (m *MergeSystem) resolve(a, b *entities.Ball) {
	level := a.Level
	pa := a.PositionUnits()
	pb := b.PositionUnits()
	midX := m.world.ToPixels((pa.X + pb.X) / 2)
	midY := m.world.ToPixels((pa.Y + pb.Y) / 2)

	m.guard.SafeDestroy(a)
	m.guard.SafeDestroy(b)

	merged, err := m.factory.Spawn(level+1, entities.SpecialNone, midX, midY)
	if err != nil {
		log.Printf("[MergeSystem] Failed to spawn merged ball (level %d): %v", level+1, err)
		return
	}

	// 合成产物轻微上弹
	func() {
		defer func() { recover() }()
		merged.Body.ApplyLinearImpulse(
			box2d.MakeB2Vec2(0, -m.balance.MergePopImpulse*merged.Body.GetMass()),
			merged.Body.GetWorldCenter(), true)
	}()

	m.state.RecordLevel(merged.Level)
	m.grantReward(merged.Level)
}

// grantReward 首次通过合成达到奖励档位时发放奖励
//
// 奖励按容器容量的比例结算，系统自身不持有货币状态。
func (m *MergeSystem) grantReward(level int) {
	fraction, ok := m.balance.Rewards[level]
	if !ok || m.rewarded[level] {
		return
	}
	m.rewarded[level] = true
	amount := fraction * m.economy.Capacity()
	m.economy.Credit(amount)
	m.economy.Notify(fmt.Sprintf("Level %d reached! Reward +%.0f", level, amount), game.NotifyReward)
	log.Printf("[MergeSystem] Reward granted for level %d: %.1f (%.0f%% of capacity)",
		level, amount, fraction*100)
}

// ForceCheck 全量 O(n²) 复查
//
// 事件驱动标记的兜底：扫描所有仍在接触距离内的同级球对并补标记。
func (m *MergeSystem) ForceCheck() {
	now := m.state.Now()
	snapshot := m.registry.Snapshot()
	for i := 0; i < len(snapshot); i++ {
		a := snapshot[i]
		if a.Destroyed() || a.Special != entities.SpecialNone || a.Level >= scale.MaxLevel {
			continue
		}
		for j := i + 1; j < len(snapshot); j++ {
			b := snapshot[j]
			if b.Destroyed() || b.Special != entities.SpecialNone || b.Level != a.Level {
				continue
			}
			if m.inContactRange(a, b) {
				m.tryMark(a, b, now)
			}
		}
	}
}

// inContactRange 判断两球是否在接触距离内（带少量余量）
func (m *MergeSystem) inContactRange(a, b *entities.Ball) (touching bool) {
	defer func() {
		if recover() != nil {
			touching = false
		}
	}()
	pa := a.Body.GetPosition()
	pb := b.Body.GetPosition()
	ra := a.Fixture.GetShape().GetRadius()
	rb := b.Fixture.GetShape().GetRadius()
	const slack = 0.05
	return math.Hypot(pb.X-pa.X, pb.Y-pa.Y) <= ra+rb+slack
}
