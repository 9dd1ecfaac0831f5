package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BalanceConfig 游戏平衡配置
//
// 包含投掷节流、合成解算、奖励与特殊球消耗等数值。
// 这些是可调的平衡参数而非硬性不变量，支持从 YAML 文件重载。
//
// 配置文件位置: data/balance.yaml（缺省时使用 DefaultBalanceConfig）
type BalanceConfig struct {
	// LevelThresholds 新球等级的累计概率阈值
	// 第 i 项表示生成等级 i+1 的累计概率上界，最后一项必须为 1.0
	LevelThresholds []float64 `yaml:"levelThresholds"`

	// ThrowCooldown 两次投掷之间的最小间隔（秒）
	ThrowCooldown float64 `yaml:"throwCooldown"`

	// ConsecutiveThrowLimit 连续投掷次数上限
	// 达到上限后强制追加一个冷却周期（反连点）
	ConsecutiveThrowLimit int `yaml:"consecutiveThrowLimit"`

	// MaxBalls 场上存活球数上限
	MaxBalls int `yaml:"maxBalls"`

	// MergesPerTick 单个 tick 内最多解算的合成对数
	MergesPerTick int `yaml:"mergesPerTick"`

	// ForceCheckInterval 全量合成检查的 tick 间隔
	// 事件驱动的标记可能漏报，周期性全量扫描是正确性兜底
	ForceCheckInterval int `yaml:"forceCheckInterval"`

	// MarkTimeout 合成标记的过期时间（秒）
	MarkTimeout float64 `yaml:"markTimeout"`

	// ContactDedupeWindow 特殊球同对碰撞去重窗口（秒）
	ContactDedupeWindow float64 `yaml:"contactDedupeWindow"`

	// SweepInterval 防御性清扫的 tick 间隔
	SweepInterval int `yaml:"sweepInterval"`

	// Rewards 首次通过合成达到指定等级时的奖励（容器容量的比例）
	// key: 等级, value: 比例 (0,1]
	Rewards map[int]float64 `yaml:"rewards"`

	// BullCost 公牛球激活消耗（当前容器容量的比例）
	BullCost float64 `yaml:"bullCost"`

	// BombCost 炸弹球激活消耗（当前容器容量的比例）
	BombCost float64 `yaml:"bombCost"`

	// LaunchSpeedY 投掷初速度的垂直分量（物理单位/秒，向下为正）
	LaunchSpeedY float64 `yaml:"launchSpeedY"`

	// LaunchJitterX 投掷初速度水平抖动幅度 ε，实际取 [-ε, ε]
	LaunchJitterX float64 `yaml:"launchJitterX"`

	// MergeImpulse 合成标记时施加的相互吸引冲量大小
	MergeImpulse float64 `yaml:"mergeImpulse"`

	// MergePopImpulse 合成产物向上弹出的冲量大小
	MergePopImpulse float64 `yaml:"mergePopImpulse"`

	// BullRadiusScale 公牛球半径倍率
	BullRadiusScale float64 `yaml:"bullRadiusScale"`

	// BombRadiusScale 炸弹球半径倍率
	BombRadiusScale float64 `yaml:"bombRadiusScale"`
}

// DefaultBalanceConfig 返回默认平衡配置
func DefaultBalanceConfig() *BalanceConfig {
	return &BalanceConfig{
		LevelThresholds:       []float64{0.50, 0.75, 0.88, 0.95, 1.00},
		ThrowCooldown:         0.4,
		ConsecutiveThrowLimit: 10,
		MaxBalls:              40,
		MergesPerTick:         5,
		ForceCheckInterval:    30,
		MarkTimeout:           3.0,
		ContactDedupeWindow:   0.3,
		SweepInterval:         120,
		Rewards: map[int]float64{
			10: 0.15,
			11: 0.35,
			12: 0.50,
		},
		BullCost:        0.20,
		BombCost:        0.10,
		LaunchSpeedY:    12.0,
		LaunchJitterX:   0.6,
		MergeImpulse:    0.8,
		MergePopImpulse: 2.0,
		BullRadiusScale: 1.2,
		BombRadiusScale: 1.1,
	}
}

// LoadBalanceConfig 从 YAML 文件加载平衡配置
//
// 文件不存在时返回默认配置（不视为错误），解析或校验失败时返回错误。
func LoadBalanceConfig(path string) (*BalanceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBalanceConfig(), nil
		}
		return nil, fmt.Errorf("failed to read balance config: %w", err)
	}

	config := DefaultBalanceConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse balance config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid balance config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
func (c *BalanceConfig) Validate() error {
	if len(c.LevelThresholds) == 0 {
		return fmt.Errorf("levelThresholds must not be empty")
	}
	prev := 0.0
	for i, th := range c.LevelThresholds {
		if th <= prev {
			return fmt.Errorf("levelThresholds must be strictly increasing: index %d got %.3f after %.3f", i, th, prev)
		}
		prev = th
	}
	last := c.LevelThresholds[len(c.LevelThresholds)-1]
	if last != 1.0 {
		return fmt.Errorf("last level threshold must be 1.0, got %.3f", last)
	}

	if c.ThrowCooldown <= 0 {
		return fmt.Errorf("throwCooldown must be positive, got %.3f", c.ThrowCooldown)
	}
	if c.MaxBalls <= 0 {
		return fmt.Errorf("maxBalls must be positive, got %d", c.MaxBalls)
	}
	if c.MergesPerTick <= 0 {
		return fmt.Errorf("mergesPerTick must be positive, got %d", c.MergesPerTick)
	}
	if c.ForceCheckInterval <= 0 {
		return fmt.Errorf("forceCheckInterval must be positive, got %d", c.ForceCheckInterval)
	}
	if c.MarkTimeout <= 0 {
		return fmt.Errorf("markTimeout must be positive, got %.3f", c.MarkTimeout)
	}

	for level, fraction := range c.Rewards {
		if fraction <= 0 || fraction > 1 {
			return fmt.Errorf("reward fraction for level %d out of (0,1]: %.3f", level, fraction)
		}
	}

	if c.BullCost < 0 || c.BullCost > 1 {
		return fmt.Errorf("bullCost out of [0,1]: %.3f", c.BullCost)
	}
	if c.BombCost < 0 || c.BombCost > 1 {
		return fmt.Errorf("bombCost out of [0,1]: %.3f", c.BombCost)
	}

	if c.BullRadiusScale < 1.0 || c.BombRadiusScale < 1.0 {
		return fmt.Errorf("special radius scales must be >= 1.0, got bull %.2f bomb %.2f",
			c.BullRadiusScale, c.BombRadiusScale)
	}

	return nil
}
