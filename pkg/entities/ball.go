package entities

import (
	"github.com/ByteArena/box2d"
	"github.com/gonewx/mergeball/pkg/render"
)

// Ball 场上的一个球实体
//
// 物理刚体和视觉句柄由 Ball 独占持有，二者总是一起创建、一起销毁：
// 创建只能经过 Factory.Spawn，销毁只能经过 Guard.SafeDestroy。
type Ball struct {
	// ID 注册表分配的唯一标识
	ID uint64

	// Level 球的等级 (1-12)
	Level int

	// Special 特殊球类型
	Special SpecialType

	// Body 物理刚体句柄，销毁后置 nil
	Body *box2d.B2Body

	// Fixture 当前碰撞形状，视口缩放时会被重建
	Fixture *box2d.B2Fixture

	// Visual 视觉句柄
	Visual render.VisualHandle

	// OriginalViewportWidth 创建（或上次缩放）时的视口宽度（像素）
	// ResizeSystem 用它计算该球的缩放系数
	OriginalViewportWidth float64

	// CreatedAt 创建时刻（仿真时间，秒）
	CreatedAt float64

	// 合成标记：Unmarked → Marked(mergeWith, markedAt) → Resolved | Expired
	mergeWith *Ball
	markedAt  float64

	destroyed bool
}

// MarkMerge 标记与 partner 的合成意向
func (b *Ball) MarkMerge(partner *Ball, now float64) {
	b.mergeWith = partner
	b.markedAt = now
}

// MergeMark 返回当前合成标记，未标记时 partner 为 nil
func (b *Ball) MergeMark() (partner *Ball, markedAt float64) {
	return b.mergeWith, b.markedAt
}

// ClearMark 清除合成标记
func (b *Ball) ClearMark() {
	b.mergeWith = nil
	b.markedAt = 0
}

// Destroyed 返回球是否已被销毁
func (b *Ball) Destroyed() bool {
	return b == nil || b.destroyed
}

// PositionUnits 返回刚体位置（物理单位），刚体失效时返回零值
func (b *Ball) PositionUnits() box2d.B2Vec2 {
	if b == nil || b.Body == nil {
		return box2d.MakeB2Vec2(0, 0)
	}
	return b.Body.GetPosition()
}
