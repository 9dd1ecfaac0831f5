package game

// GameState 全局游戏状态
//
// 由引擎实例持有并按引用传递给各系统，不是进程级单例。
// 所有字段只在 tick 线程上读写。
type GameState struct {
	// Paused 暂停标志，置位时 tick 在物理步进前短路
	Paused bool

	// PointerX 指针当前水平位置（像素），驱动发射器跟随
	PointerX float64

	// Tick 已执行的 tick 计数
	Tick int

	// SimTime 累计仿真时间（秒），所有超时/冷却都以它为基准
	SimTime float64

	// Score 公牛球撞击普通球累计的得分
	Score int

	// BestLevel 本局达到过的最高等级
	BestLevel int
}

// NewGameState 创建初始游戏状态
func NewGameState() *GameState {
	return &GameState{BestLevel: 1}
}

// Advance 推进一个 tick 的时钟
func (s *GameState) Advance(dt float64) {
	s.Tick++
	s.SimTime += dt
}

// Now 返回当前仿真时间（秒）
func (s *GameState) Now() float64 {
	return s.SimTime
}

// AddScore 累计得分
func (s *GameState) AddScore(points int) {
	s.Score += points
}

// RecordLevel 记录达到的等级，若刷新最高等级返回 true
func (s *GameState) RecordLevel(level int) bool {
	if level > s.BestLevel {
		s.BestLevel = level
		return true
	}
	return false
}
