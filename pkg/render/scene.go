// Package render 定义视觉层协作者接口
//
// 仿真核心只依赖本包的 Scene 接口，不关心具体渲染技术。
// EbitenScene 是桌面端实现，NullScene 用于无头测试。
package render

// Variant 视觉变体
type Variant int

const (
	// VariantNormal 普通球
	VariantNormal Variant = iota
	// VariantBull 公牛球
	VariantBull
	// VariantBomb 炸弹球
	VariantBomb
	// VariantPending 发射器上待投掷的球（无物理实体）
	VariantPending
)

// String 返回变体的可读名称
func (v Variant) String() string {
	switch v {
	case VariantNormal:
		return "normal"
	case VariantBull:
		return "bull"
	case VariantBomb:
		return "bomb"
	case VariantPending:
		return "pending"
	default:
		return "unknown"
	}
}

// VisualKind 描述一个视觉对象的外观
type VisualKind struct {
	// Level 球的等级，决定颜色
	Level int
	// Variant 视觉变体
	Variant Variant
}

// VisualHandle 视觉对象句柄
//
// 由 Scene 创建并独占持有，销毁后 Valid 返回 false。
type VisualHandle interface {
	Valid() bool
}

// Scene 视觉层协作者
//
// 所有方法对 nil 或已销毁的句柄必须安全（忽略而非崩溃）。
type Scene interface {
	// CreateVisual 创建一个视觉对象
	CreateVisual(kind VisualKind, x, y, radius float64) (VisualHandle, error)
	// DestroyVisual 销毁视觉对象及其附属效果，幂等
	DestroyVisual(handle VisualHandle)
	// SetPosition 更新视觉对象位置（像素坐标）
	SetPosition(handle VisualHandle, x, y float64)
	// SetRadius 更新视觉对象半径（像素）
	SetRadius(handle VisualHandle, radius float64)
}
