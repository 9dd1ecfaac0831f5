package systems

import (
	"testing"

	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/scale"
)

// TestMergeSameLevelPair 同级球对碰撞后合成为恰好一个高一级的球
func TestMergeSameLevelPair(t *testing.T) {
	rig := newTestRig(t)
	a := rig.mustSpawn(t, 3, entities.SpecialNone, 200, 400)
	b := rig.mustSpawn(t, 3, entities.SpecialNone, 240, 400)

	rig.merge.HandleContacts([]physics.ContactEvent{contact(a, b)})
	rig.merge.Update()

	if got := rig.countByLevel(3); got != 0 {
		t.Errorf("expected no level-3 balls left, got %d", got)
	}
	if got := rig.countByLevel(4); got != 1 {
		t.Errorf("expected exactly one level-4 ball, got %d", got)
	}
	if !a.Destroyed() || !b.Destroyed() {
		t.Errorf("both source balls must be destroyed")
	}
	// 等级 4 不在奖励表内
	if rig.economy.Balance() != 400 {
		t.Errorf("no reward expected for level 4, balance changed to %.1f", rig.economy.Balance())
	}
	if rig.state.BestLevel != 4 {
		t.Errorf("best level should be 4, got %d", rig.state.BestLevel)
	}
}

// TestMergeRewardOncePerLevel 首次达到奖励档位发放一次，重复不再发
func TestMergeRewardOncePerLevel(t *testing.T) {
	rig := newTestRig(t)

	mergePair := func(level int, x float64) {
		a := rig.mustSpawn(t, level, entities.SpecialNone, x, 400)
		b := rig.mustSpawn(t, level, entities.SpecialNone, x+40, 400)
		rig.merge.HandleContacts([]physics.ContactEvent{contact(a, b)})
		rig.state.Tick = 1 // 避开全量复查的 tick
		rig.merge.Update()
	}

	mergePair(9, 100)
	want := 400 + rig.balance.Rewards[10]*rig.economy.Capacity()
	if got := rig.economy.Balance(); got != want {
		t.Fatalf("level-10 reward: balance = %.1f, want %.1f", got, want)
	}
	if len(rig.economy.Notifications) != 1 {
		t.Errorf("expected 1 reward notification, got %d", len(rig.economy.Notifications))
	}

	// 再合成一个等级10，不再发奖
	mergePair(9, 300)
	if got := rig.economy.Balance(); got != want {
		t.Errorf("second level-10 merge must not reward again, balance = %.1f", got)
	}
}

// TestNoMergeAtMaxLevel 顶级球是终态，接触不触发合成
func TestNoMergeAtMaxLevel(t *testing.T) {
	rig := newTestRig(t)
	a := rig.mustSpawn(t, scale.MaxLevel, entities.SpecialNone, 150, 400)
	b := rig.mustSpawn(t, scale.MaxLevel, entities.SpecialNone, 300, 400)

	rig.merge.HandleContacts([]physics.ContactEvent{contact(a, b)})
	rig.state.Tick = 1
	rig.merge.Update()

	if got := rig.countByLevel(scale.MaxLevel); got != 2 {
		t.Errorf("max-level balls must not merge, got %d left", got)
	}
	if partner, _ := a.MergeMark(); partner != nil {
		t.Errorf("max-level ball must not be marked")
	}
}

// TestNoMergeForSpecialBalls 特殊球不参与合成
func TestNoMergeForSpecialBalls(t *testing.T) {
	rig := newTestRig(t)
	bull := rig.mustSpawn(t, 1, entities.SpecialBull, 150, 400)
	bomb := rig.mustSpawn(t, 1, entities.SpecialBomb, 200, 400)
	normal := rig.mustSpawn(t, 1, entities.SpecialNone, 250, 400)

	rig.merge.HandleContacts([]physics.ContactEvent{
		contact(bull, bomb),
		contact(bull, normal),
		contact(bomb, normal),
	})
	rig.state.Tick = 1
	rig.merge.Update()

	if rig.registry.Count() != 3 {
		t.Errorf("special-ball contacts must not merge, got %d balls", rig.registry.Count())
	}
}

// TestMarkExpiry 超时未解算的标记被强制清除，不发生合成
func TestMarkExpiry(t *testing.T) {
	rig := newTestRig(t)
	a := rig.mustSpawn(t, 3, entities.SpecialNone, 100, 400)
	b := rig.mustSpawn(t, 3, entities.SpecialNone, 350, 400)

	rig.at(1.0)
	// 标记两球但随后不让解算扫描及时运行
	rig.merge.HandleContacts([]physics.ContactEvent{contact(a, b)})
	if partner, _ := a.MergeMark(); partner != b {
		t.Fatalf("contact should have marked the pair")
	}

	rig.at(1.0 + rig.balance.MarkTimeout + 0.5)
	rig.state.Tick = 1 // 两球相距太远，也要避开全量复查
	rig.merge.Update()

	if partner, _ := a.MergeMark(); partner != nil {
		t.Errorf("expired mark on a should be cleared")
	}
	if partner, _ := b.MergeMark(); partner != nil {
		t.Errorf("expired mark on b should be cleared")
	}
	if rig.registry.Count() != 2 {
		t.Errorf("expired pair must not merge, got %d balls", rig.registry.Count())
	}
}

// TestStaleMarkCleared 对端已销毁的陈旧标记被清除
func TestStaleMarkCleared(t *testing.T) {
	rig := newTestRig(t)
	a := rig.mustSpawn(t, 3, entities.SpecialNone, 100, 400)
	b := rig.mustSpawn(t, 3, entities.SpecialNone, 350, 400)

	rig.merge.HandleContacts([]physics.ContactEvent{contact(a, b)})
	rig.guard.SafeDestroy(b)

	rig.state.Tick = 1
	rig.merge.Update()

	if partner, _ := a.MergeMark(); partner != nil {
		t.Errorf("mark pointing at a destroyed ball should be cleared")
	}
	if a.Destroyed() {
		t.Errorf("surviving ball must not be destroyed by a stale mark")
	}
}

// TestMergesPerTickCap 单 tick 解算数量受上限约束，剩余对子续到下个 tick
func TestMergesPerTickCap(t *testing.T) {
	rig := newTestRig(t)
	cap := rig.balance.MergesPerTick
	pairs := cap + 2

	var events []physics.ContactEvent
	for i := 0; i < pairs; i++ {
		x := 60 + float64(i)*55
		a := rig.mustSpawn(t, 2, entities.SpecialNone, x, 300)
		b := rig.mustSpawn(t, 2, entities.SpecialNone, x, 500)
		events = append(events, contact(a, b))
	}

	rig.merge.HandleContacts(events)
	rig.state.Tick = 1
	rig.merge.Update()

	if got := rig.countByLevel(3); got != cap {
		t.Fatalf("first tick should resolve exactly %d merges, got %d", cap, got)
	}

	rig.state.Tick = 2
	rig.merge.Update()

	if got := rig.countByLevel(3); got != pairs {
		t.Errorf("remaining pairs should resolve next tick, got %d of %d", got, pairs)
	}
	if got := rig.countByLevel(2); got != 0 {
		t.Errorf("all level-2 balls should be consumed, got %d", got)
	}
}

// TestForceCheckMarksAdjacentPair 没有碰撞事件时全量复查补标记并合成
func TestForceCheckMarksAdjacentPair(t *testing.T) {
	rig := newTestRig(t)
	// 两球静置在接触距离内，但不喂任何碰撞事件
	rig.mustSpawn(t, 2, entities.SpecialNone, 220, 400)
	rig.mustSpawn(t, 2, entities.SpecialNone, 240, 400)

	// Tick 0 是全量复查的 tick
	rig.merge.Update()

	if got := rig.countByLevel(3); got != 1 {
		t.Errorf("force check should have merged the adjacent pair, got %d level-3 balls", got)
	}
	if got := rig.countByLevel(2); got != 0 {
		t.Errorf("expected no level-2 balls left, got %d", got)
	}
}
