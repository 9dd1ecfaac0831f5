package entities

import (
	"errors"
	"testing"

	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/scale"
)

// TestSpawnPairsHandles 创建成功时物理刚体与视觉句柄成对存在
func TestSpawnPairsHandles(t *testing.T) {
	env := newTestEnv(t)

	ball := env.mustSpawn(t, 3, SpecialNone, 225, 100)

	if ball.Body == nil {
		t.Fatalf("spawned ball has no body")
	}
	if ball.Visual == nil || !ball.Visual.Valid() {
		t.Fatalf("spawned ball has no valid visual")
	}
	if ball.ID == 0 {
		t.Errorf("ball should have a non-zero ID")
	}
	if env.registry.Count() != 1 {
		t.Errorf("expected 1 ball in registry, got %d", env.registry.Count())
	}

	// 刚体用户数据回指球本身
	if got, ok := ball.Body.GetUserData().(*Ball); !ok || got != ball {
		t.Errorf("body user data should point back to the ball")
	}

	// 注册表可按刚体反查
	if got, ok := env.registry.ByBody(ball.Body); !ok || got != ball {
		t.Errorf("registry should find ball by body")
	}
}

// TestSpawnInvalidLevel 等级越界返回 SpawnError 且不留残骸
func TestSpawnInvalidLevel(t *testing.T) {
	env := newTestEnv(t)

	for _, level := range []int{0, -1, 13, 99} {
		ball, err := env.factory.Spawn(level, SpecialNone, 225, 100)
		if ball != nil {
			t.Errorf("level %d: expected nil ball", level)
		}
		var spawnErr *SpawnError
		if !errors.As(err, &spawnErr) {
			t.Errorf("level %d: expected *SpawnError, got %v", level, err)
		}
	}

	if env.registry.Count() != 0 {
		t.Errorf("failed spawns must not register balls, got %d", env.registry.Count())
	}
	if env.scene.LiveCount() != 0 {
		t.Errorf("failed spawns must not leak visuals, got %d", env.scene.LiveCount())
	}
}

// TestSpawnRadiusByType 特殊球的物理半径带类型倍率
func TestSpawnRadiusByType(t *testing.T) {
	env := newTestEnv(t)
	ppu := env.world.Layout().PixelsPerUnit
	base := scale.PhysicalRadius(1, 450, ppu)

	tests := []struct {
		special SpecialType
		want    float64
	}{
		{SpecialNone, base},
		{SpecialBull, base * env.balance.BullRadiusScale},
		{SpecialBomb, base * env.balance.BombRadiusScale},
	}

	for _, tt := range tests {
		ball := env.mustSpawn(t, 1, tt.special, 225, 100)
		got := ball.Fixture.GetShape().GetRadius()
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: radius %.4f, want %.4f", tt.special, got, tt.want)
		}
	}
}

// TestBullIsSensor 公牛球的碰撞形状是传感器，其他类型是实体
func TestBullIsSensor(t *testing.T) {
	env := newTestEnv(t)

	bull := env.mustSpawn(t, 1, SpecialBull, 100, 100)
	if !bull.Fixture.IsSensor() {
		t.Errorf("bull fixture should be a sensor")
	}

	normal := env.mustSpawn(t, 1, SpecialNone, 200, 100)
	if normal.Fixture.IsSensor() {
		t.Errorf("normal fixture should not be a sensor")
	}

	bomb := env.mustSpawn(t, 1, SpecialBomb, 300, 100)
	if bomb.Fixture.IsSensor() {
		t.Errorf("bomb fixture should be solid")
	}
}

// TestRebuildFixture 换半径重建碰撞形状，刚体身份保留
func TestRebuildFixture(t *testing.T) {
	env := newTestEnv(t)
	ball := env.mustSpawn(t, 2, SpecialNone, 225, 100)
	body := ball.Body
	oldFixture := ball.Fixture

	if err := env.factory.RebuildFixture(ball, 1.5); err != nil {
		t.Fatalf("RebuildFixture failed: %v", err)
	}

	if ball.Body != body {
		t.Errorf("body identity must be preserved")
	}
	if ball.Fixture == oldFixture {
		t.Errorf("fixture should be replaced")
	}
	if got := ball.Fixture.GetShape().GetRadius(); got != 1.5 {
		t.Errorf("expected new radius 1.5, got %.4f", got)
	}
	if !physics.IsAlive(ball.Body) {
		t.Errorf("ball body should stay alive through fixture rebuild")
	}
}
