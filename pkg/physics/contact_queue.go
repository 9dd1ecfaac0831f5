package physics

import (
	"github.com/ByteArena/box2d"
)

// ContactEvent 一次 begin-contact 事件
//
// 只记录刚体指针，语义解释（合成标记、特殊球命中、落地）由各系统
// 在步进结束后完成。Box2D 回调期间世界处于锁定状态，不允许改动刚体。
type ContactEvent struct {
	BodyA *box2d.B2Body
	BodyB *box2d.B2Body
}

// ContactQueue 碰撞事件队列，实现 box2d.B2ContactListenerInterface
//
// 回调只入队不解释，事件在每个 tick 的解算阶段被 Drain 消费。
type ContactQueue struct {
	events []ContactEvent
}

// NewContactQueue 创建碰撞事件队列
func NewContactQueue() *ContactQueue {
	return &ContactQueue{}
}

// BeginContact 记录新的碰撞对
func (q *ContactQueue) BeginContact(contact box2d.B2ContactInterface) {
	defer func() { recover() }()
	fa := contact.GetFixtureA()
	fb := contact.GetFixtureB()
	if fa == nil || fb == nil {
		return
	}
	q.events = append(q.events, ContactEvent{BodyA: fa.GetBody(), BodyB: fb.GetBody()})
}

// EndContact 不关心碰撞结束
func (q *ContactQueue) EndContact(contact box2d.B2ContactInterface) {
}

// PreSolve 求解前的在线清理：任一刚体失效则禁用该碰撞
func (q *ContactQueue) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
	defer func() { recover() }()
	fa := contact.GetFixtureA()
	fb := contact.GetFixtureB()
	if fa == nil || fb == nil || !IsAlive(fa.GetBody()) || !IsAlive(fb.GetBody()) {
		contact.SetEnabled(false)
	}
}

// PostSolve 不关心求解结果
func (q *ContactQueue) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
}

// Drain 取出并清空当前积累的事件
func (q *ContactQueue) Drain() []ContactEvent {
	events := q.events
	q.events = nil
	return events
}

// Clear 丢弃全部积累的事件
func (q *ContactQueue) Clear() {
	q.events = nil
}

// Len 返回当前积累的事件数
func (q *ContactQueue) Len() int {
	return len(q.events)
}
