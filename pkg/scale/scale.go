// Package scale 提供球体尺寸的纯函数计算
//
// 将逻辑等级和当前视口宽度映射为视觉半径（像素）和物理半径（物理单位）。
// 本包不持有任何状态，所有函数都是纯函数。
package scale

// MinLevel 球的最低等级
const MinLevel = 1

// MaxLevel 球的最高等级，达到该等级后不再合成
const MaxLevel = 12

// ReferenceViewportWidth 基准视口宽度（像素）
// 半径表中的数值以该宽度为基准，实际半径按当前视口宽度等比缩放
const ReferenceViewportWidth = 450.0

// MinPhysicalRadius 物理半径下限（物理单位）
// 避免视口过窄时产生退化的碰撞形状
const MinPhysicalRadius = 0.45

// baseVisualRadius 各等级在基准视口宽度下的视觉半径（像素）
// 索引 0 对应等级 1
var baseVisualRadius = [MaxLevel]float64{
	16, 20, 25, 31, 38, 46, 55, 65, 76, 88, 101, 115,
}

// ClampLevel 将等级限制在 [MinLevel, MaxLevel] 范围内
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// VisualRadius 计算指定等级在当前视口宽度下的视觉半径（像素）
//
// 参数:
//   - level: 球的等级 (1-12)，越界值会被钳制
//   - viewportWidth: 当前视口宽度（像素）
func VisualRadius(level int, viewportWidth float64) float64 {
	level = ClampLevel(level)
	return baseVisualRadius[level-1] * viewportWidth / ReferenceViewportWidth
}

// PhysicalRadius 计算指定等级在当前视口宽度下的物理半径（物理单位）
//
// 视觉半径除以像素-单位换算比得到物理半径，并以 MinPhysicalRadius 为下限。
//
// 参数:
//   - level: 球的等级 (1-12)
//   - viewportWidth: 当前视口宽度（像素）
//   - pixelsPerUnit: 像素与物理单位的换算比
func PhysicalRadius(level int, viewportWidth, pixelsPerUnit float64) float64 {
	r := VisualRadius(level, viewportWidth) / pixelsPerUnit
	if r < MinPhysicalRadius {
		return MinPhysicalRadius
	}
	return r
}
