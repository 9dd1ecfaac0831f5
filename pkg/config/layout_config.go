package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 默认窗口尺寸（像素）
const (
	GameWindowWidth  = 450
	GameWindowHeight = 800
)

// LayoutConfig 场地布局与物理环境配置
//
// 定义像素-物理单位换算比、重力、边界厚度和发射器位置。
// 坐标系与屏幕一致：原点在左上角，Y 轴向下，因此重力为正值。
type LayoutConfig struct {
	// PixelsPerUnit 像素与物理单位的换算比
	PixelsPerUnit float64 `yaml:"pixelsPerUnit"`

	// GravityY 重力加速度（物理单位/秒²，向下为正）
	GravityY float64 `yaml:"gravityY"`

	// WallThickness 边界墙厚度（物理单位）
	WallThickness float64 `yaml:"wallThickness"`

	// LauncherRelX 发射器锚点的相对水平位置 (0-1，相对视口宽度)
	LauncherRelX float64 `yaml:"launcherRelX"`

	// LauncherRelY 发射器锚点的相对垂直位置 (0-1，相对视口高度)
	LauncherRelY float64 `yaml:"launcherRelY"`

	// TimeStep 物理步长（秒），通常为 1/60
	TimeStep float64 `yaml:"timeStep"`

	// VelocityIterations 速度求解迭代次数
	VelocityIterations int `yaml:"velocityIterations"`

	// PositionIterations 位置求解迭代次数
	PositionIterations int `yaml:"positionIterations"`
}

// DefaultLayoutConfig 返回默认布局配置
func DefaultLayoutConfig() *LayoutConfig {
	return &LayoutConfig{
		PixelsPerUnit:      50.0,
		GravityY:           18.0,
		WallThickness:      1.0,
		LauncherRelX:       0.5,
		LauncherRelY:       0.08,
		TimeStep:           1.0 / 60.0,
		VelocityIterations: 8,
		PositionIterations: 3,
	}
}

// LoadLayoutConfig 从 YAML 文件加载布局配置
//
// 文件不存在时返回默认配置，解析或校验失败时返回错误。
func LoadLayoutConfig(path string) (*LayoutConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLayoutConfig(), nil
		}
		return nil, fmt.Errorf("failed to read layout config: %w", err)
	}

	config := DefaultLayoutConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse layout config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
func (c *LayoutConfig) Validate() error {
	if c.PixelsPerUnit <= 0 {
		return fmt.Errorf("pixelsPerUnit must be positive, got %.3f", c.PixelsPerUnit)
	}
	if c.GravityY <= 0 {
		return fmt.Errorf("gravityY must be positive (screen coordinates, Y down), got %.3f", c.GravityY)
	}
	if c.WallThickness <= 0 {
		return fmt.Errorf("wallThickness must be positive, got %.3f", c.WallThickness)
	}
	if c.LauncherRelX < 0 || c.LauncherRelX > 1 {
		return fmt.Errorf("launcherRelX out of [0,1]: %.3f", c.LauncherRelX)
	}
	if c.LauncherRelY < 0 || c.LauncherRelY > 1 {
		return fmt.Errorf("launcherRelY out of [0,1]: %.3f", c.LauncherRelY)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("timeStep must be positive, got %.5f", c.TimeStep)
	}
	if c.VelocityIterations <= 0 || c.PositionIterations <= 0 {
		return fmt.Errorf("solver iterations must be positive, got %d/%d",
			c.VelocityIterations, c.PositionIterations)
	}
	return nil
}
