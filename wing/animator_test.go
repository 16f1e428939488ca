package wing

import (
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/scene"
)

func scenarioConfig() Config {
	return Config{
		Up:          scenarioUp(),
		Down:        scenarioDown(),
		NumFeathers: 5,
		PeriodMS:    1000,
	}
}

func TestAnimatorPlacesResolvableFeathers(t *testing.T) {
	cfg := scenarioConfig()
	sc := scene.New()
	state := NewAnimationState(cfg.NumFeathers)
	for f := 0; f < cfg.NumFeathers-1; f++ {
		state.Append(sc.Add(scene.NewNode("feather", nil)))
	}
	// a handle the scene does not know yet
	state.Append(4242)

	clock := core.NewMockTimeProvider(time.Unix(0, 0))
	anim, err := NewAnimator(cfg, state, sc, clock)
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}

	frame, err := anim.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if frame.Phase != 0 {
		t.Errorf("Expected phase 0 at start, got %v", frame.Phase)
	}
	if frame.Placed != 4 || frame.Skipped != 1 {
		t.Errorf("Expected 4 placed and 1 skipped, got %d/%d", frame.Placed, frame.Skipped)
	}

	first, _ := sc.FindByID(state.Instances[0].ID)
	if !nearVec(first.Transform.Position, cfg.Down[0]) {
		t.Errorf("Feather 0 should sit on the root, got %+v", first.Transform.Position)
	}

	// halfway through the period the wing is fully up
	clock.Advance(500 * time.Millisecond)
	frame, err = anim.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if frame.Phase != 1 {
		t.Errorf("Expected phase 1 at half period, got %v", frame.Phase)
	}
	for _, fi := range state.Instances[:4] {
		node, _ := sc.FindByID(fi.ID)
		want := Place(frame.Spline, fi.Index, cfg.NumFeathers)
		if node.Transform.Position != want.Position || node.Transform.Rotation != want.Orientation {
			t.Errorf("Feather %d pose %+v does not match placement %+v", fi.Index, node.Transform, want)
		}
	}
	mid, _ := sc.FindByID(state.Instances[2].ID)
	if mid.Transform.Position.Y <= 0 {
		t.Errorf("Up pose should lift the middle feather, got %+v", mid.Transform.Position)
	}
}

func TestAnimatorDoesNotAccumulateRotation(t *testing.T) {
	cfg := scenarioConfig()
	sc := scene.New()
	state := NewAnimationState(cfg.NumFeathers)
	state.Append(sc.Add(scene.NewNode("feather", nil)))
	state.Append(sc.Add(scene.NewNode("feather", nil)))

	anim, err := NewAnimator(cfg, state, sc, core.NewMockTimeProvider(time.Unix(0, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := anim.UpdateAt(123); err != nil {
		t.Fatal(err)
	}
	node, _ := sc.FindByID(state.Instances[1].ID)
	before := node.Transform.Rotation

	node.Transform.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), 2, true))
	if _, err := anim.UpdateAt(123); err != nil {
		t.Fatal(err)
	}
	if node.Transform.Rotation != before {
		t.Errorf("Same time must give the same pose regardless of prior state: %+v vs %+v", node.Transform.Rotation, before)
	}
}

func TestAnimatorLateInstancesAppearAfterLoad(t *testing.T) {
	cfg := scenarioConfig()
	sc := scene.New()
	state := NewAnimationState(cfg.NumFeathers)
	anim, err := NewAnimator(cfg, state, sc, core.NewMockTimeProvider(time.Unix(0, 0)))
	if err != nil {
		t.Fatal(err)
	}

	frame, err := anim.UpdateAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Placed != 0 || frame.Skipped != 0 {
		t.Errorf("No instances yet, got %+v", frame)
	}

	for f := 0; f < cfg.NumFeathers; f++ {
		state.Append(sc.Add(scene.NewNode("feather", nil)))
	}
	frame, err = anim.UpdateAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Placed != cfg.NumFeathers {
		t.Errorf("Expected all %d feathers placed, got %d", cfg.NumFeathers, frame.Placed)
	}
}

func TestNewAnimatorRejectsBadConfig(t *testing.T) {
	cfg := scenarioConfig()
	cfg.NumFeathers = 1
	_, err := NewAnimator(cfg, NewAnimationState(0), scene.New(), nil)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
