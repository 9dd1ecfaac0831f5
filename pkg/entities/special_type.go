package entities

import (
	"github.com/gonewx/mergeball/pkg/config"
	"github.com/gonewx/mergeball/pkg/physics"
	"github.com/gonewx/mergeball/pkg/render"
)

// SpecialType 特殊球类型（封闭枚举）
//
// 所有物理参数与碰撞处理点都对该枚举做穷尽匹配，不使用字符串标签。
type SpecialType int

const (
	// SpecialNone 普通球
	SpecialNone SpecialType = iota
	// SpecialBull 公牛球：传感器碰撞形状，穿过普通球并将其撞毁得分
	SpecialBull
	// SpecialBomb 炸弹球：实体碰撞，与普通球接触时同归于尽
	SpecialBomb
)

// String 返回类型的可读名称
func (t SpecialType) String() string {
	switch t {
	case SpecialNone:
		return "none"
	case SpecialBull:
		return "bull"
	case SpecialBomb:
		return "bomb"
	default:
		return "unknown"
	}
}

// RadiusScale 返回该类型的半径倍率
func (t SpecialType) RadiusScale(cfg *config.BalanceConfig) float64 {
	switch t {
	case SpecialBull:
		return cfg.BullRadiusScale
	case SpecialBomb:
		return cfg.BombRadiusScale
	default:
		return 1.0
	}
}

// fixtureParams 返回该类型的密度/摩擦/弹性
//
// 公牛球密度高、摩擦低、弹性高，配合传感器形状实现"撞穿"效果。
func (t SpecialType) fixtureParams() (density, friction, restitution float64) {
	switch t {
	case SpecialBull:
		return 2.5, 0.05, 0.6
	case SpecialBomb:
		return 1.2, 0.3, 0.3
	default:
		return 1.0, 0.3, 0.25
	}
}

// sensor 返回该类型的碰撞形状是否为传感器
func (t SpecialType) sensor() bool {
	return t == SpecialBull
}

// category 返回该类型的碰撞分类位
func (t SpecialType) category() uint16 {
	switch t {
	case SpecialBull, SpecialBomb:
		return physics.CategorySpecial
	default:
		return physics.CategoryBall
	}
}

// Variant 返回该类型对应的视觉变体
func (t SpecialType) Variant() render.Variant {
	switch t {
	case SpecialBull:
		return render.VariantBull
	case SpecialBomb:
		return render.VariantBomb
	default:
		return render.VariantNormal
	}
}
