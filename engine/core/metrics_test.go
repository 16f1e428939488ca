package core

import (
	"testing"
	"time"
)

func TestMetricsAverageAndFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(10 * time.Millisecond)
	}
	if got := m.FrameTime(); got < 9.999 || got > 10.001 {
		t.Errorf("Expected a 10ms average, got %v", got)
	}
	if m.FPS() != 0 {
		t.Errorf("Expected no fps before a full second, got %v", m.FPS())
	}
	for i := 0; i < 100-int(AVG_COUNT); i++ {
		m.Update(10 * time.Millisecond)
	}
	if m.FPS() != 100 {
		t.Errorf("Expected 100 fps, got %v", m.FPS())
	}
	if m.TotalFrames() != 100 {
		t.Errorf("Expected 100 frames, got %d", m.TotalFrames())
	}
}
