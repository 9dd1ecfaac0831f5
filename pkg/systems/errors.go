package systems

import "errors"

// 面向调用方的拒绝原因，属于正常的用户可见反馈而非系统故障
var (
	// ErrSimulationPaused 仿真处于暂停状态
	ErrSimulationPaused = errors.New("simulation paused")

	// ErrOnCooldown 投掷/能力尚在冷却中
	ErrOnCooldown = errors.New("on cooldown")

	// ErrTooManyBalls 场上球数已达上限
	ErrTooManyBalls = errors.New("too many live balls")

	// ErrInsufficientResource 资源不足以激活能力
	ErrInsufficientResource = errors.New("insufficient resource")
)
