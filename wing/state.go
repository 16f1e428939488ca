package wing

// FeatherInstance ties a scene node id to the feather's fixed index along
// the wing.
type FeatherInstance struct {
	ID    uint32
	Index int
}

// AnimationState is the mutable side of the animation: the feather instances
// created once the feather mesh has loaded. Instances are only ever appended.
type AnimationState struct {
	Instances []FeatherInstance
}

func NewAnimationState(capacity int) *AnimationState {
	return &AnimationState{Instances: make([]FeatherInstance, 0, capacity)}
}

// Append registers the scene node id as the next feather.
func (s *AnimationState) Append(id uint32) FeatherInstance {
	fi := FeatherInstance{ID: id, Index: len(s.Instances)}
	s.Instances = append(s.Instances, fi)
	return fi
}

func (s *AnimationState) Len() int {
	return len(s.Instances)
}
