// Package physics 封装 Box2D 仿真世界的生命周期
//
// 坐标约定：物理世界使用屏幕坐标系（原点左上，Y 向下，重力为正），
// 像素与物理单位通过 LayoutConfig.PixelsPerUnit 换算。
// 同一时刻只存在一个 Box2D 世界，Reset 会销毁其中的全部刚体。
package physics

import (
	"errors"
	"fmt"
	"log"

	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/config"
)

// ErrStepFailure 物理步进抛出异常（可恢复，触发唤醒清扫）
var ErrStepFailure = errors.New("physics step failure")

// BoundaryKind 边界刚体类型
type BoundaryKind int

const (
	// BoundaryLeft 左墙
	BoundaryLeft BoundaryKind = iota
	// BoundaryRight 右墙
	BoundaryRight
	// BoundaryTop 顶墙
	BoundaryTop
	// BoundaryFloor 地板
	BoundaryFloor
	// BoundaryLauncher 发射器锚点
	BoundaryLauncher
)

// String 返回边界类型的可读名称
func (k BoundaryKind) String() string {
	switch k {
	case BoundaryLeft:
		return "left"
	case BoundaryRight:
		return "right"
	case BoundaryTop:
		return "top"
	case BoundaryFloor:
		return "floor"
	case BoundaryLauncher:
		return "launcher"
	default:
		return "unknown"
	}
}

// 碰撞分类位掩码
const (
	// CategoryBoundary 边界刚体
	CategoryBoundary uint16 = 0x0001
	// CategoryBall 普通球
	CategoryBall uint16 = 0x0002
	// CategorySpecial 特殊球（公牛/炸弹）
	CategorySpecial uint16 = 0x0004
	// MaskAll 与所有分类碰撞
	MaskAll uint16 = 0xFFFF
)

// World 物理世界
//
// 持有 Box2D 世界实例和五个边界刚体。边界在视口变化时整体重建，
// 场上的球由 ResizeSystem 在同一帧内迁移，World 本身不负责迁移。
type World struct {
	layout     *config.LayoutConfig
	b2world    *box2d.B2World
	boundaries map[BoundaryKind]*box2d.B2Body
	contacts   *ContactQueue

	// 当前视口尺寸（像素）
	width  float64
	height float64
}

// NewWorld 创建物理世界并建立边界
//
// 这是整个引擎中唯一的致命失败点：无法分配仿真世界或参数非法时返回错误。
func NewWorld(layout *config.LayoutConfig, widthPx, heightPx float64) (*World, error) {
	if layout == nil {
		return nil, fmt.Errorf("layout config is nil")
	}
	if widthPx <= 0 || heightPx <= 0 {
		return nil, fmt.Errorf("invalid viewport size %.1fx%.1f", widthPx, heightPx)
	}

	b2w := box2d.MakeB2World(box2d.MakeB2Vec2(0, layout.GravityY))
	w := &World{
		layout:     layout,
		b2world:    &b2w,
		boundaries: make(map[BoundaryKind]*box2d.B2Body),
		contacts:   NewContactQueue(),
	}
	w.b2world.SetContactListener(w.contacts)
	w.RebuildBoundaries(widthPx, heightPx)

	log.Printf("[World] Created %.0fx%.0f px, gravity=%.1f, ppu=%.0f",
		widthPx, heightPx, layout.GravityY, layout.PixelsPerUnit)
	return w, nil
}

// B2 返回底层 Box2D 世界（工厂和系统创建/销毁刚体时使用）
func (w *World) B2() *box2d.B2World {
	return w.b2world
}

// Contacts 返回碰撞事件队列
func (w *World) Contacts() *ContactQueue {
	return w.contacts
}

// Layout 返回布局配置
func (w *World) Layout() *config.LayoutConfig {
	return w.layout
}

// Size 返回当前视口尺寸（像素）
func (w *World) Size() (width, height float64) {
	return w.width, w.height
}

// ToUnits 像素转物理单位
func (w *World) ToUnits(px float64) float64 {
	return px / w.layout.PixelsPerUnit
}

// ToPixels 物理单位转像素
func (w *World) ToPixels(units float64) float64 {
	return units * w.layout.PixelsPerUnit
}

// LauncherPosition 返回发射器锚点位置（像素坐标）
func (w *World) LauncherPosition() (x, y float64) {
	return w.width * w.layout.LauncherRelX, w.height * w.layout.LauncherRelY
}

// Boundary 返回指定类型的边界刚体，未建立时返回 nil
func (w *World) Boundary(kind BoundaryKind) *box2d.B2Body {
	return w.boundaries[kind]
}

// IsBoundary 判断刚体是否为边界，并返回边界类型
func (w *World) IsBoundary(body *box2d.B2Body) (BoundaryKind, bool) {
	if body == nil {
		return 0, false
	}
	kind, ok := body.GetUserData().(BoundaryKind)
	return kind, ok
}

// RebuildBoundaries 销毁并重建全部边界刚体
//
// 尽力而为：单个边界销毁失败只记录日志，其余边界继续重建。
func (w *World) RebuildBoundaries(widthPx, heightPx float64) {
	for kind, body := range w.boundaries {
		if err := w.destroyBodyGuarded(body); err != nil {
			log.Printf("[World] Failed to destroy %s boundary: %v (continuing)", kind, err)
		}
		delete(w.boundaries, kind)
	}

	w.width = widthPx
	w.height = heightPx

	wu := w.ToUnits(widthPx)
	hu := w.ToUnits(heightPx)
	t := w.layout.WallThickness
	ht := t / 2

	w.createBoundary(BoundaryLeft, -ht, hu/2, ht, hu/2+t, false)
	w.createBoundary(BoundaryRight, wu+ht, hu/2, ht, hu/2+t, false)
	w.createBoundary(BoundaryTop, wu/2, -ht, wu/2+t, ht, false)
	w.createBoundary(BoundaryFloor, wu/2, hu+ht, wu/2+t, ht, false)

	lx, ly := w.LauncherPosition()
	w.createBoundary(BoundaryLauncher, w.ToUnits(lx), w.ToUnits(ly), 0.1, 0.1, true)
}

// createBoundary 创建单个静态边界刚体，失败只记录日志
func (w *World) createBoundary(kind BoundaryKind, cx, cy, hx, hy float64, sensor bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[World] Failed to create %s boundary: %v (continuing)", kind, r)
		}
	}()

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_staticBody
	bd.Position.Set(cx, cy)
	bd.UserData = kind
	body := w.b2world.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(hx, hy)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Friction = 0.4
	fd.IsSensor = sensor
	fd.Filter = box2d.MakeB2Filter()
	fd.Filter.CategoryBits = CategoryBoundary
	fd.Filter.MaskBits = MaskAll
	body.CreateFixtureFromDef(&fd)

	w.boundaries[kind] = body
}

// destroyBodyGuarded 销毁刚体，捕获并返回底层异常
func (w *World) destroyBodyGuarded(body *box2d.B2Body) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("destroy body panicked: %v", r)
		}
	}()
	if body == nil {
		return nil
	}
	w.b2world.DestroyBody(body)
	return nil
}

// Reset 销毁世界中的全部刚体并重建边界
func (w *World) Reset() {
	var bodies []*box2d.B2Body
	for body := w.b2world.GetBodyList(); body != nil; body = body.GetNext() {
		bodies = append(bodies, body)
	}
	for _, body := range bodies {
		if err := w.destroyBodyGuarded(body); err != nil {
			log.Printf("[World] Reset: failed to destroy body: %v (continuing)", err)
		}
	}
	w.boundaries = make(map[BoundaryKind]*box2d.B2Body)
	w.contacts.Clear()
	w.RebuildBoundaries(w.width, w.height)
	log.Printf("[World] Reset complete")
}

// Step 推进一个物理步长
//
// 底层异常被捕获并包装为 ErrStepFailure，调用方应执行 RecoverStep。
func (w *World) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStepFailure, r)
		}
	}()
	w.b2world.Step(w.layout.TimeStep, w.layout.VelocityIterations, w.layout.PositionIterations)
	return nil
}

// RecoverStep 步进异常后的恢复：唤醒并激活所有剩余刚体
func (w *World) RecoverStep() {
	for body := w.b2world.GetBodyList(); body != nil; body = body.GetNext() {
		func() {
			defer func() { recover() }()
			body.SetActive(true)
			body.SetAwake(true)
		}()
	}
	log.Printf("[World] Step recovery: all remaining bodies re-enabled")
}

// SanitizeContacts 步进前禁用引用已失效刚体的碰撞
//
// 防止仿真步进评估过期几何体。每个碰撞独立保护，单个失败不影响其余。
func (w *World) SanitizeContacts() {
	for contact := w.b2world.GetContactList(); contact != nil; contact = contact.GetNext() {
		func() {
			defer func() { recover() }()
			fa := contact.GetFixtureA()
			fb := contact.GetFixtureB()
			if fa == nil || fb == nil || !IsAlive(fa.GetBody()) || !IsAlive(fb.GetBody()) {
				contact.SetEnabled(false)
			}
		}()
	}
}

// IsAlive 判断刚体是否可以安全参与仿真
//
// 全函数：任何探测异常都视为"不存活"，永不抛出。
func IsAlive(body *box2d.B2Body) (alive bool) {
	defer func() {
		if recover() != nil {
			alive = false
		}
	}()
	if body == nil {
		return false
	}
	if body.GetFixtureList() == nil {
		return false
	}
	if !body.IsActive() {
		return false
	}
	return true
}
