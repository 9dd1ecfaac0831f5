package game

import "testing"

// TestGameStateClock tick 计数与仿真时间一起推进
func TestGameStateClock(t *testing.T) {
	s := NewGameState()
	for i := 0; i < 60; i++ {
		s.Advance(1.0 / 60.0)
	}
	if s.Tick != 60 {
		t.Errorf("tick = %d, want 60", s.Tick)
	}
	if diff := s.Now() - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("sim time = %.6f, want 1.0", s.Now())
	}
}

// TestRecordLevel 只在刷新最高等级时返回 true
func TestRecordLevel(t *testing.T) {
	s := NewGameState()
	if !s.RecordLevel(4) {
		t.Errorf("level 4 should beat the initial best")
	}
	if s.RecordLevel(4) || s.RecordLevel(2) {
		t.Errorf("non-improving levels should not report a record")
	}
	if s.BestLevel != 4 {
		t.Errorf("best level = %d, want 4", s.BestLevel)
	}
}
