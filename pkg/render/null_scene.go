package render

// NullScene 无头场景实现
//
// 不做任何绘制，只维护句柄的存活状态。用于测试和服务器端仿真。
type NullScene struct {
	created   int
	destroyed int
}

// nullHandle NullScene 的句柄实现
type nullHandle struct {
	alive  bool
	kind   VisualKind
	x, y   float64
	radius float64
}

// Valid 返回句柄是否仍然存活
func (h *nullHandle) Valid() bool {
	return h != nil && h.alive
}

// NewNullScene 创建无头场景
func NewNullScene() *NullScene {
	return &NullScene{}
}

// CreateVisual 创建一个只记账的视觉句柄
func (s *NullScene) CreateVisual(kind VisualKind, x, y, radius float64) (VisualHandle, error) {
	s.created++
	return &nullHandle{alive: true, kind: kind, x: x, y: y, radius: radius}, nil
}

// DestroyVisual 标记句柄销毁，幂等
func (s *NullScene) DestroyVisual(handle VisualHandle) {
	h, ok := handle.(*nullHandle)
	if !ok || h == nil || !h.alive {
		return
	}
	h.alive = false
	s.destroyed++
}

// SetPosition 更新句柄位置
func (s *NullScene) SetPosition(handle VisualHandle, x, y float64) {
	if h, ok := handle.(*nullHandle); ok && h != nil && h.alive {
		h.x = x
		h.y = y
	}
}

// SetRadius 更新句柄半径
func (s *NullScene) SetRadius(handle VisualHandle, radius float64) {
	if h, ok := handle.(*nullHandle); ok && h != nil && h.alive {
		h.radius = radius
	}
}

// CreatedCount 返回累计创建的句柄数（测试用）
func (s *NullScene) CreatedCount() int {
	return s.created
}

// DestroyedCount 返回累计销毁的句柄数（测试用）
func (s *NullScene) DestroyedCount() int {
	return s.destroyed
}

// LiveCount 返回当前存活句柄数（测试用）
func (s *NullScene) LiveCount() int {
	return s.created - s.destroyed
}
