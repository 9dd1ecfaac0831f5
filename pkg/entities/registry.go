package entities

import (
	"sort"

	"github.com/ByteArena/box2d"
)

// Registry 存活球注册表
//
// 仿真核心唯一的共享可变集合，只在 tick 线程上被 Factory、
// MergeSystem 和 Guard 修改。扫描使用 Snapshot 获得稳定副本，
// 集合的修改只发生在两次扫描迭代之间。
type Registry struct {
	nextID uint64
	balls  map[uint64]*Ball
	byBody map[*box2d.B2Body]*Ball
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		nextID: 1, // ID 从 1 开始，0 保留为无效 ID
		balls:  make(map[uint64]*Ball),
		byBody: make(map[*box2d.B2Body]*Ball),
	}
}

// Add 登记一个新球并分配 ID
func (r *Registry) Add(ball *Ball) {
	ball.ID = r.nextID
	r.nextID++
	r.balls[ball.ID] = ball
	if ball.Body != nil {
		r.byBody[ball.Body] = ball
	}
}

// Remove 注销一个球，返回该球此前是否在册
func (r *Registry) Remove(ball *Ball) bool {
	if ball == nil {
		return false
	}
	_, present := r.balls[ball.ID]
	if !present {
		return false
	}
	delete(r.balls, ball.ID)
	if ball.Body != nil {
		delete(r.byBody, ball.Body)
	}
	return true
}

// Get 按 ID 查找
func (r *Registry) Get(id uint64) (*Ball, bool) {
	ball, ok := r.balls[id]
	return ball, ok
}

// ByBody 按物理刚体查找
func (r *Registry) ByBody(body *box2d.B2Body) (*Ball, bool) {
	if body == nil {
		return nil, false
	}
	ball, ok := r.byBody[body]
	return ball, ok
}

// Count 返回存活球数
func (r *Registry) Count() int {
	return len(r.balls)
}

// Snapshot 返回按 ID 升序的存活球副本
//
// 扫描期间对注册表的增删不影响已取得的副本。
func (r *Registry) Snapshot() []*Ball {
	snapshot := make([]*Ball, 0, len(r.balls))
	for _, ball := range r.balls {
		snapshot = append(snapshot, ball)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	return snapshot
}

// CountByLevel 统计指定等级的存活球数（测试与调试用）
func (r *Registry) CountByLevel(level int) int {
	n := 0
	for _, ball := range r.balls {
		if ball.Level == level {
			n++
		}
	}
	return n
}
