package entities

import (
	"math/rand"
	"testing"

	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
)

// testEnv 工厂/守卫测试的最小环境：真实物理世界 + 无头场景
type testEnv struct {
	world    *physics.World
	scene    *render.NullScene
	registry *Registry
	factory  *Factory
	guard    *Guard
	balance  *config.BalanceConfig

	// now 可手动推进的仿真时钟
	now float64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	world, err := physics.NewWorld(config.DefaultLayoutConfig(), 450, 800)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}

	env := &testEnv{
		world:    world,
		scene:    render.NewNullScene(),
		registry: NewRegistry(),
		balance:  config.DefaultBalanceConfig(),
	}
	env.factory = NewFactory(world, env.scene, env.registry, env.balance,
		rand.New(rand.NewSource(42)), func() float64 { return env.now })
	env.guard = NewGuard(world, env.scene, env.registry)
	return env
}

func (env *testEnv) mustSpawn(t *testing.T, level int, special SpecialType, x, y float64) *Ball {
	t.Helper()
	ball, err := env.factory.Spawn(level, special, x, y)
	if err != nil {
		t.Fatalf("Spawn(level=%d, special=%s) failed: %v", level, special, err)
	}
	return ball
}
