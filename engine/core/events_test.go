package core

import "testing"

func TestEventFireOrderAndHandled(t *testing.T) {
	es := NewEventSystem()
	var calls []string

	first := "first"
	second := "second"
	es.Register(EVENT_CODE_ASSET_CHANGED, first, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string)+":"+data.Data.C[0])
		return false
	})
	es.Register(EVENT_CODE_ASSET_CHANGED, second, func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string)+":"+data.Data.C[0])
		return true
	})

	ctx := EventContext{}
	ctx.Data.C[0] = "panel.toml"
	if !es.Fire(EVENT_CODE_ASSET_CHANGED, nil, ctx) {
		t.Error("Expected event to be handled")
	}
	if len(calls) != 2 || calls[0] != "first:panel.toml" || calls[1] != "second:panel.toml" {
		t.Errorf("Unexpected call order: %v", calls)
	}

	if es.Fire(EVENT_CODE_MESH_LOADED, nil, EventContext{}) {
		t.Error("Fire without listeners should report unhandled")
	}
}

func TestEventRegisterDuplicateAndUnregister(t *testing.T) {
	es := NewEventSystem()
	listener := &struct{}{}
	cb := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return true }

	if !es.Register(EVENT_CODE_RESIZED, listener, cb) {
		t.Fatal("Expected first registration to succeed")
	}
	if es.Register(EVENT_CODE_RESIZED, listener, cb) {
		t.Error("Duplicate registration should fail")
	}
	if !es.Unregister(EVENT_CODE_RESIZED, listener) {
		t.Error("Expected unregister to find the listener")
	}
	if es.Unregister(EVENT_CODE_RESIZED, listener) {
		t.Error("Second unregister should fail")
	}
	if es.Fire(EVENT_CODE_RESIZED, nil, EventContext{}) {
		t.Error("No listener should remain")
	}
}
