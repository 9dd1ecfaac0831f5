package game

import "log"

// NotifyKind 通知类别
type NotifyKind int

const (
	// NotifyInfo 普通信息
	NotifyInfo NotifyKind = iota
	// NotifyReward 奖励到账
	NotifyReward
	// NotifyRejected 操作被拒绝（余额不足等）
	NotifyRejected
)

// Economy 资源/经济协作者
//
// 合成奖励和特殊球消耗都通过该接口结算，仿真核心自身不持有
// 任何货币状态。
type Economy interface {
	// Capacity 返回容器容量（奖励和消耗都按容量的比例计）
	Capacity() float64
	// Balance 返回当前余额
	Balance() float64
	// Credit 入账
	Credit(amount float64)
	// Debit 扣款，余额不足时返回 false 且不扣
	Debit(amount float64) bool
	// CanAfford 查询是否足以支付
	CanAfford(amount float64) bool
	// Notify 向外部状态管理层发出一条通知
	Notify(message string, kind NotifyKind)
}

// ContainerEconomy Economy 的参考实现
//
// 一个固定容量的容器，余额在 [0, capacity] 内变化。
type ContainerEconomy struct {
	capacity float64
	balance  float64

	// Notifications 已发出的通知（测试与 HUD 用）
	Notifications []string
}

// NewContainerEconomy 创建指定容量的经济容器
func NewContainerEconomy(capacity, initial float64) *ContainerEconomy {
	if initial > capacity {
		initial = capacity
	}
	if initial < 0 {
		initial = 0
	}
	return &ContainerEconomy{capacity: capacity, balance: initial}
}

// Capacity 返回容器容量
func (e *ContainerEconomy) Capacity() float64 {
	return e.capacity
}

// Balance 返回当前余额
func (e *ContainerEconomy) Balance() float64 {
	return e.balance
}

// Credit 入账，余额封顶在容量
func (e *ContainerEconomy) Credit(amount float64) {
	if amount <= 0 {
		return
	}
	e.balance += amount
	if e.balance > e.capacity {
		e.balance = e.capacity
	}
}

// Debit 扣款，余额不足时返回 false 且不扣
func (e *ContainerEconomy) Debit(amount float64) bool {
	if amount < 0 {
		return false
	}
	if e.balance < amount {
		return false
	}
	e.balance -= amount
	return true
}

// CanAfford 查询是否足以支付
func (e *ContainerEconomy) CanAfford(amount float64) bool {
	return e.balance >= amount
}

// Notify 记录并打印通知
func (e *ContainerEconomy) Notify(message string, kind NotifyKind) {
	e.Notifications = append(e.Notifications, message)
	log.Printf("[Economy] Notify(%d): %s", kind, message)
}
