package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ProgressData 本地进度数据
//
// 仿真核心自身不做持久化，本类型属于外部协作者一侧：
// 引擎只在最高等级刷新时调用 RecordBestLevel。
type ProgressData struct {
	// BestLevel 历史最高等级
	BestLevel int `yaml:"bestLevel"`

	// BestScore 历史最高得分
	BestScore int `yaml:"bestScore"`

	// Muted 声音开关
	Muted bool `yaml:"muted"`
}

// DefaultProgress 返回初始进度
func DefaultProgress() *ProgressData {
	return &ProgressData{BestLevel: 1}
}

// ProgressManager 进度管理器
//
// 使用 gdata 做跨平台本地存储，YAML 序列化。
// gdataManager 为 nil 时进入降级模式：仅内存，不持久化，不报错。
type ProgressManager struct {
	gdataManager *gdata.Manager
	data         *ProgressData
}

// 存储路径常量
const (
	progressObject   = "progress"
	progressProperty = "global"
)

// NewProgressManager 创建进度管理器并尝试加载已保存的进度
func NewProgressManager(gdataManager *gdata.Manager) *ProgressManager {
	pm := &ProgressManager{
		gdataManager: gdataManager,
		data:         DefaultProgress(),
	}
	if err := pm.Load(); err != nil {
		// 加载失败不是致命错误，使用初始进度
		log.Printf("[ProgressManager] Warning: failed to load progress: %v (using defaults)", err)
	}
	return pm
}

// Load 从 gdata 加载进度
func (pm *ProgressManager) Load() error {
	if pm.gdataManager == nil {
		pm.data = DefaultProgress()
		return nil
	}
	if !pm.gdataManager.ObjectPropExists(progressObject, progressProperty) {
		pm.data = DefaultProgress()
		return nil
	}

	data, err := pm.gdataManager.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		pm.data = DefaultProgress()
		return fmt.Errorf("failed to load progress: %w", err)
	}

	var loaded ProgressData
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		pm.data = DefaultProgress()
		return fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	if loaded.BestLevel < 1 {
		loaded.BestLevel = 1
	}

	pm.data = &loaded
	return nil
}

// Save 保存进度到 gdata，降级模式下为空操作
func (pm *ProgressManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(pm.data)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := pm.gdataManager.SaveObjectProp(progressObject, progressProperty, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// BestLevel 返回历史最高等级
func (pm *ProgressManager) BestLevel() int {
	return pm.data.BestLevel
}

// BestScore 返回历史最高得分
func (pm *ProgressManager) BestScore() int {
	return pm.data.BestScore
}

// Muted 返回声音开关
func (pm *ProgressManager) Muted() bool {
	return pm.data.Muted
}

// SetMuted 设置声音开关并保存
func (pm *ProgressManager) SetMuted(muted bool) {
	pm.data.Muted = muted
	if err := pm.Save(); err != nil {
		log.Printf("[ProgressManager] Failed to save mute setting: %v", err)
	}
}

// RecordBestLevel 记录最高等级，刷新纪录时保存并返回 true
func (pm *ProgressManager) RecordBestLevel(level int) bool {
	if level <= pm.data.BestLevel {
		return false
	}
	pm.data.BestLevel = level
	if err := pm.Save(); err != nil {
		log.Printf("[ProgressManager] Failed to save best level: %v", err)
	}
	return true
}

// RecordBestScore 记录最高得分，刷新纪录时保存并返回 true
func (pm *ProgressManager) RecordBestScore(score int) bool {
	if score <= pm.data.BestScore {
		return false
	}
	pm.data.BestScore = score
	if err := pm.Save(); err != nil {
		log.Printf("[ProgressManager] Failed to save best score: %v", err)
	}
	return true
}
