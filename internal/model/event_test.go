package model

import (
	"encoding/json"
	"testing"
)

func TestEventRecordSourceNotSerialized(t *testing.T) {
	rec := EventRecord{EventID: "id1", Time: 1.0, Source: "controller", Type: EventSoftLimitHit, Message: "m"}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["Source"]; ok {
		t.Error("Source must not appear in the JSONL wire shape")
	}
	if _, ok := m["source"]; ok {
		t.Error("Source must not appear in the JSONL wire shape")
	}
}

func TestMLOutcomeDataFieldNames(t *testing.T) {
	data, err := json.Marshal(MLOutcomeData{Container: "web", PreviousDelta: 10, CurrentDelta: 5, Improvement: 5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"previous_delta", "current_delta", "improvement"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected field %q in ml outcome payload", key)
		}
	}
}
