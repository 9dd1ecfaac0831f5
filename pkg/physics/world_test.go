package physics

import (
	"testing"

	"github.com/gonewx/mergeball/pkg/config"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(config.DefaultLayoutConfig(), 450, 800)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	return w
}

func TestNewWorldInvalidInput(t *testing.T) {
	layout := config.DefaultLayoutConfig()

	if _, err := NewWorld(nil, 450, 800); err == nil {
		t.Errorf("expected error for nil layout")
	}
	if _, err := NewWorld(layout, 0, 800); err == nil {
		t.Errorf("expected error for zero width")
	}
	if _, err := NewWorld(layout, 450, -10); err == nil {
		t.Errorf("expected error for negative height")
	}
}

// TestWorldBoundaries 世界创建后应存在全部五个边界刚体
func TestWorldBoundaries(t *testing.T) {
	w := newTestWorld(t)

	kinds := []BoundaryKind{BoundaryLeft, BoundaryRight, BoundaryTop, BoundaryFloor, BoundaryLauncher}
	for _, kind := range kinds {
		body := w.Boundary(kind)
		if body == nil {
			t.Errorf("boundary %s missing", kind)
			continue
		}
		gotKind, ok := w.IsBoundary(body)
		if !ok || gotKind != kind {
			t.Errorf("IsBoundary(%s) = (%v, %v)", kind, gotKind, ok)
		}
	}
}

// TestRebuildBoundaries 重建后旧边界被替换，发射器位置随新视口移动
func TestRebuildBoundaries(t *testing.T) {
	w := newTestWorld(t)
	oldFloor := w.Boundary(BoundaryFloor)

	w.RebuildBoundaries(900, 1600)

	newFloor := w.Boundary(BoundaryFloor)
	if newFloor == nil {
		t.Fatalf("floor missing after rebuild")
	}
	if newFloor == oldFloor {
		t.Errorf("floor body should be recreated on rebuild")
	}

	width, height := w.Size()
	if width != 900 || height != 1600 {
		t.Errorf("expected size 900x1600, got %.0fx%.0f", width, height)
	}

	lx, _ := w.LauncherPosition()
	if lx != 450 {
		t.Errorf("expected launcher x 450 after rebuild, got %.0f", lx)
	}
}

// TestUnitConversionRoundTrip 像素与物理单位换算互逆
func TestUnitConversionRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	px := 123.5
	if got := w.ToPixels(w.ToUnits(px)); got != px {
		t.Errorf("round trip changed value: %.4f -> %.4f", px, got)
	}
}

// TestIsAliveTotal IsAlive 对 nil 与边界刚体都不抛出
func TestIsAliveTotal(t *testing.T) {
	if IsAlive(nil) {
		t.Errorf("nil body should not be alive")
	}

	w := newTestWorld(t)
	floor := w.Boundary(BoundaryFloor)
	if !IsAlive(floor) {
		t.Errorf("live floor body should be alive")
	}

	// 禁用后不再存活
	floor.SetActive(false)
	if IsAlive(floor) {
		t.Errorf("inactive body should not be alive")
	}
}

// TestStepRuns 正常步进不报错
func TestStepRuns(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 10; i++ {
		if err := w.Step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
}

// TestReset 重置后只剩边界刚体
func TestReset(t *testing.T) {
	w := newTestWorld(t)
	w.Reset()

	count := 0
	for body := w.B2().GetBodyList(); body != nil; body = body.GetNext() {
		count++
	}
	if count != 5 {
		t.Errorf("expected 5 boundary bodies after reset, got %d", count)
	}
}
