package systems

import (
	"math/rand"
	"testing"

	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/entities"
	"github.com/gonewx/mergeball/pkg/game"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
)

// testRig 系统测试的完整最小环境：真实物理世界 + 无头场景 + 全部系统
type testRig struct {
	world    *physics.World
	scene    *render.NullScene
	registry *entities.Registry
	factory  *entities.Factory
	guard    *entities.Guard
	state    *game.GameState
	balance  *config.BalanceConfig
	economy  *game.ContainerEconomy

	throw   *ThrowSystem
	merge   *MergeSystem
	ability *AbilitySystem
	resize  *ResizeSystem
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	world, err := physics.NewWorld(config.DefaultLayoutConfig(), 450, 800)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}

	rig := &testRig{
		world:    world,
		scene:    render.NewNullScene(),
		registry: entities.NewRegistry(),
		state:    game.NewGameState(),
		balance:  config.DefaultBalanceConfig(),
		economy:  game.NewContainerEconomy(1000, 400),
	}
	rng := rand.New(rand.NewSource(42))
	rig.factory = entities.NewFactory(world, rig.scene, rig.registry, rig.balance,
		rng, rig.state.Now)
	rig.guard = entities.NewGuard(world, rig.scene, rig.registry)
	rig.throw = NewThrowSystem(world, rig.scene, rig.factory, rig.registry,
		rig.state, rig.balance, rng)
	rig.merge = NewMergeSystem(world, rig.factory, rig.registry, rig.guard,
		rig.state, rig.balance, rig.economy)
	rig.ability = NewAbilitySystem(world, rig.registry, rig.guard, rig.state,
		rig.balance, rig.economy, rig.throw)
	rig.resize = NewResizeSystem(world, rig.scene, rig.factory, rig.registry, rig.throw)
	return rig
}

// at 把仿真时钟设到指定秒数
func (r *testRig) at(simTime float64) {
	r.state.SimTime = simTime
}

func (r *testRig) mustSpawn(t *testing.T, level int, special entities.SpecialType,
	x, y float64) *entities.Ball {
	t.Helper()
	ball, err := r.factory.Spawn(level, special, x, y)
	if err != nil {
		t.Fatalf("Spawn(level=%d, special=%s) failed: %v", level, special, err)
	}
	return ball
}

// contact 构造一对球之间的碰撞事件
func contact(a, b *entities.Ball) physics.ContactEvent {
	return physics.ContactEvent{BodyA: a.Body, BodyB: b.Body}
}

// countByLevel 统计指定等级的存活球数
func (r *testRig) countByLevel(level int) int {
	return r.registry.CountByLevel(level)
}
