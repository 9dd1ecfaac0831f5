package entities

import (
	"fmt"

	"github.com/gonewx/mergeball/pkg/render"
	"github.com/gonewx/mergeball/pkg/scale"
)

// PendingBall 发射器上待投掷的球
//
// 只有视觉表现，没有物理刚体。投掷时被提升为真正的 Ball 并丢弃。
// 特殊球的待投掷视觉统一使用等级1的尺寸。
type PendingBall struct {
	// Level 投掷后球的等级
	Level int

	// Special 投掷后球的特殊类型
	Special SpecialType

	// Visual 视觉句柄
	Visual render.VisualHandle

	// X, Y 当前位置（像素），跟随发射器
	X, Y float64

	// ViewportWidth 创建（或上次缩放）时的视口宽度
	ViewportWidth float64

	scene render.Scene
}

// NewPendingBall 在发射器位置创建待投掷球
func NewPendingBall(scene render.Scene, level int, special SpecialType,
	x, y, viewportWidth float64) (*PendingBall, error) {
	variant := special.Variant()
	if special == SpecialNone {
		variant = render.VariantPending
	}

	visual, err := scene.CreateVisual(
		render.VisualKind{Level: level, Variant: variant},
		x, y, scale.VisualRadius(level, viewportWidth))
	if err != nil {
		return nil, fmt.Errorf("pending ball visual failed: %w", err)
	}

	return &PendingBall{
		Level:         level,
		Special:       special,
		Visual:        visual,
		X:             x,
		Y:             y,
		ViewportWidth: viewportWidth,
		scene:         scene,
	}, nil
}

// Valid 返回待投掷球是否可用
func (p *PendingBall) Valid() bool {
	return p != nil && p.Visual != nil && p.Visual.Valid()
}

// MoveTo 水平跟随发射器（只更新 X，Y 固定在发射器高度）
func (p *PendingBall) MoveTo(x float64) {
	if !p.Valid() {
		return
	}
	p.X = x
	p.scene.SetPosition(p.Visual, p.X, p.Y)
}

// Rescale 按新视口重新定位并缩放视觉尺寸
func (p *PendingBall) Rescale(x, y, newViewportWidth float64) {
	if !p.Valid() {
		return
	}
	p.X = x
	p.Y = y
	p.ViewportWidth = newViewportWidth
	p.scene.SetPosition(p.Visual, x, y)
	p.scene.SetRadius(p.Visual, scale.VisualRadius(p.Level, newViewportWidth))
}

// Destroy 销毁视觉句柄，幂等
func (p *PendingBall) Destroy() {
	if p == nil || p.Visual == nil {
		return
	}
	p.scene.DestroyVisual(p.Visual)
	p.Visual = nil
}
