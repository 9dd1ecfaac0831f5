package systems

import (
	"math"
	"testing"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/entities"
)

// TestResizeScalesHorizontally 视口翻倍：水平位置/速度/半径翻倍，竖直不变
func TestResizeScalesHorizontally(t *testing.T) {
	rig := newTestRig(t)
	ball := rig.mustSpawn(t, 5, entities.SpecialNone, 100, 400)
	ball.Body.SetLinearVelocity(box2d.MakeB2Vec2(3, 5))

	oldPos := ball.Body.GetPosition()
	oldRadius := ball.Fixture.GetShape().GetRadius()

	rig.resize.Request(900, 1600)
	rig.resize.Apply()

	pos := ball.Body.GetPosition()
	if math.Abs(pos.X-oldPos.X*2) > 1e-9 {
		t.Errorf("horizontal position %.4f, want %.4f", pos.X, oldPos.X*2)
	}
	if math.Abs(pos.Y-oldPos.Y) > 1e-9 {
		t.Errorf("vertical position must not change, got %.4f want %.4f", pos.Y, oldPos.Y)
	}

	vel := ball.Body.GetLinearVelocity()
	if math.Abs(vel.X-6) > 1e-9 || math.Abs(vel.Y-5) > 1e-9 {
		t.Errorf("velocity = (%.4f, %.4f), want (6, 5)", vel.X, vel.Y)
	}

	if got := ball.Fixture.GetShape().GetRadius(); math.Abs(got-oldRadius*2) > 1e-9 {
		t.Errorf("radius %.4f, want %.4f", got, oldRadius*2)
	}
	if ball.OriginalViewportWidth != 900 {
		t.Errorf("baseline viewport should be updated to 900, got %.0f", ball.OriginalViewportWidth)
	}

	width, height := rig.world.Size()
	if width != 900 || height != 1600 {
		t.Errorf("world size = %.0fx%.0f, want 900x1600", width, height)
	}
}

// TestResizeRoundTrip 缩放回原视口后位置与半径复原
func TestResizeRoundTrip(t *testing.T) {
	rig := newTestRig(t)
	ball := rig.mustSpawn(t, 6, entities.SpecialNone, 300, 350)
	oldPos := ball.Body.GetPosition()
	oldRadius := ball.Fixture.GetShape().GetRadius()

	rig.resize.Request(900, 1600)
	rig.resize.Apply()
	rig.resize.Request(450, 800)
	rig.resize.Apply()

	pos := ball.Body.GetPosition()
	if math.Abs(pos.X-oldPos.X) > 1e-6 || math.Abs(pos.Y-oldPos.Y) > 1e-6 {
		t.Errorf("position (%.4f, %.4f) should round-trip to (%.4f, %.4f)",
			pos.X, pos.Y, oldPos.X, oldPos.Y)
	}
	if got := ball.Fixture.GetShape().GetRadius(); math.Abs(got-oldRadius) > 1e-6 {
		t.Errorf("radius %.4f should round-trip to %.4f", got, oldRadius)
	}
}

// TestResizeLastRequestWins tick 间到达的多个请求只应用最后一个
func TestResizeLastRequestWins(t *testing.T) {
	rig := newTestRig(t)
	ball := rig.mustSpawn(t, 5, entities.SpecialNone, 225, 400)

	rig.resize.Request(900, 1600)
	rig.resize.Request(600, 1000)
	rig.resize.Apply()

	width, height := rig.world.Size()
	if width != 600 || height != 1000 {
		t.Errorf("world size = %.0fx%.0f, want 600x1000", width, height)
	}
	if ball.OriginalViewportWidth != 600 {
		t.Errorf("ball migrated against %.0f, want 600", ball.OriginalViewportWidth)
	}

	// 已消费的请求不会重复应用
	rig.resize.Apply()
	if ball.OriginalViewportWidth != 600 {
		t.Errorf("second Apply must be a no-op")
	}
}

// TestResizeMovesPendingToLauncher 待投掷球跟随新的发射器位置
func TestResizeMovesPendingToLauncher(t *testing.T) {
	rig := newTestRig(t)

	rig.resize.Request(900, 1600)
	rig.resize.Apply()

	pending := rig.throw.Pending()
	if !pending.Valid() {
		t.Fatalf("pending ball should survive a resize")
	}
	lx, ly := rig.world.LauncherPosition()
	if pending.X != lx || pending.Y != ly {
		t.Errorf("pending at (%.1f, %.1f), want launcher (%.1f, %.1f)",
			pending.X, pending.Y, lx, ly)
	}
	if pending.ViewportWidth != 900 {
		t.Errorf("pending viewport baseline should be 900, got %.0f", pending.ViewportWidth)
	}
}

// TestResizeIgnoresInvalidRequest 非法尺寸的请求被丢弃
func TestResizeIgnoresInvalidRequest(t *testing.T) {
	rig := newTestRig(t)

	rig.resize.Request(0, 800)
	rig.resize.Request(450, -1)
	rig.resize.Apply()

	width, height := rig.world.Size()
	if width != 450 || height != 800 {
		t.Errorf("invalid requests must not change the world, got %.0fx%.0f", width, height)
	}
}
