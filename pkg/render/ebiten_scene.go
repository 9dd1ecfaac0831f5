package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// levelPalette 各等级球的填充色（索引0对应等级1）
var levelPalette = [12]color.RGBA{
	{R: 0xE5, G: 0x73, B: 0x73, A: 0xFF},
	{R: 0xF0, G: 0x62, B: 0x92, A: 0xFF},
	{R: 0xBA, G: 0x68, B: 0xC8, A: 0xFF},
	{R: 0x90, G: 0x75, B: 0xCD, A: 0xFF},
	{R: 0x79, G: 0x86, B: 0xCB, A: 0xFF},
	{R: 0x64, G: 0xB5, B: 0xF6, A: 0xFF},
	{R: 0x4D, G: 0xD0, B: 0xE1, A: 0xFF},
	{R: 0x4D, G: 0xB6, B: 0xAC, A: 0xFF},
	{R: 0x81, G: 0xC7, B: 0x84, A: 0xFF},
	{R: 0xDC, G: 0xE7, B: 0x75, A: 0xFF},
	{R: 0xFF, G: 0xD5, B: 0x4F, A: 0xFF},
	{R: 0xFF, G: 0x8A, B: 0x65, A: 0xFF},
}

// EbitenScene 基于 Ebitengine 的场景实现
//
// 每个视觉对象绘制为一个带等级颜色的实心圆。
// 非线程安全：创建/销毁/绘制都必须在游戏主循环中进行。
type EbitenScene struct {
	handles []*ebitenHandle
}

// ebitenHandle EbitenScene 的句柄实现
type ebitenHandle struct {
	alive  bool
	kind   VisualKind
	x, y   float64
	radius float64
}

// Valid 返回句柄是否仍然存活
func (h *ebitenHandle) Valid() bool {
	return h != nil && h.alive
}

// NewEbitenScene 创建 Ebitengine 场景
func NewEbitenScene() *EbitenScene {
	return &EbitenScene{}
}

// CreateVisual 创建一个圆形视觉对象
func (s *EbitenScene) CreateVisual(kind VisualKind, x, y, radius float64) (VisualHandle, error) {
	h := &ebitenHandle{alive: true, kind: kind, x: x, y: y, radius: radius}
	s.handles = append(s.handles, h)
	return h, nil
}

// DestroyVisual 销毁视觉对象，幂等
func (s *EbitenScene) DestroyVisual(handle VisualHandle) {
	if h, ok := handle.(*ebitenHandle); ok && h != nil {
		h.alive = false
	}
}

// SetPosition 更新视觉对象位置
func (s *EbitenScene) SetPosition(handle VisualHandle, x, y float64) {
	if h, ok := handle.(*ebitenHandle); ok && h != nil && h.alive {
		h.x = x
		h.y = y
	}
}

// SetRadius 更新视觉对象半径
func (s *EbitenScene) SetRadius(handle VisualHandle, radius float64) {
	if h, ok := handle.(*ebitenHandle); ok && h != nil && h.alive {
		h.radius = radius
	}
}

// fillColor 返回视觉对象的填充色
func (h *ebitenHandle) fillColor() color.RGBA {
	switch h.kind.Variant {
	case VariantBull:
		return color.RGBA{R: 0x8D, G: 0x6E, B: 0x63, A: 0xFF}
	case VariantBomb:
		return color.RGBA{R: 0x37, G: 0x47, B: 0x4F, A: 0xFF}
	default:
		level := h.kind.Level
		if level < 1 {
			level = 1
		}
		if level > len(levelPalette) {
			level = len(levelPalette)
		}
		c := levelPalette[level-1]
		if h.kind.Variant == VariantPending {
			// 待投掷球画成半透明
			c.A = 0xB0
		}
		return c
	}
}

// Draw 绘制所有存活的视觉对象，并顺带压缩销毁残留
func (s *EbitenScene) Draw(screen *ebiten.Image) {
	live := s.handles[:0]
	for _, h := range s.handles {
		if !h.alive {
			continue
		}
		live = append(live, h)
		vector.DrawFilledCircle(screen, float32(h.x), float32(h.y), float32(h.radius), h.fillColor(), true)
		if h.kind.Variant == VariantNormal || h.kind.Variant == VariantPending {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", h.kind.Level), int(h.x)-3, int(h.y)-8)
		}
	}
	s.handles = live
}
