package domain

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestState_JSONRoundTrip(t *testing.T) {
	refreshed := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	idx := 1

	st := State{Rotations: []*Rotation{
		{
			Name:      "Night",
			StartTime: "22:00",
			EndTime:   "06:00",
			Plugins: []*ContentUnit{
				{
					PluginID: "weather",
					Name:     "Front Hall",
					Settings: map[string]any{"units": "metric"},
					Refresh:  RefreshPolicy{IntervalSec: 300},
				},
				{
					PluginID:      "news",
					Name:          "daily",
					Settings:      map[string]any{},
					Refresh:       RefreshPolicy{Scheduled: "08:00"},
					LatestRefresh: &refreshed,
				},
			},
			Cursor: &idx,
		},
	}}

	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored State
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(st, restored) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", restored, st)
	}
}

// Имена полей — контракт хранения, их нельзя менять молча.
func TestState_FieldNames(t *testing.T) {
	idx := 0
	st := State{Rotations: []*Rotation{{
		Name:      "Default",
		StartTime: "00:00",
		EndTime:   "24:00",
		Plugins: []*ContentUnit{{
			PluginID: "clock",
			Name:     "a",
			Settings: map[string]any{},
			Refresh:  RefreshPolicy{IntervalSec: 60, Scheduled: "06:00"},
		}},
		Cursor: &idx,
	}}}

	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rotations, ok := doc["rotations"].([]any)
	if !ok || len(rotations) != 1 {
		t.Fatalf("rotations field missing: %s", raw)
	}
	rot := rotations[0].(map[string]any)
	for _, key := range []string{"name", "start_time", "end_time", "plugins", "current_plugin_index"} {
		if _, ok := rot[key]; !ok {
			t.Errorf("rotation field %q missing: %s", key, raw)
		}
	}

	unit := rot["plugins"].([]any)[0].(map[string]any)
	for _, key := range []string{"plugin_id", "name", "plugin_settings", "refresh"} {
		if _, ok := unit[key]; !ok {
			t.Errorf("unit field %q missing: %s", key, raw)
		}
	}
	refresh := unit["refresh"].(map[string]any)
	for _, key := range []string{"interval", "scheduled"} {
		if _, ok := refresh[key]; !ok {
			t.Errorf("refresh field %q missing: %s", key, raw)
		}
	}

	// Unit без истории обновлений не сериализует latest_refresh_time
	if _, ok := unit["latest_refresh_time"]; ok {
		t.Error("latest_refresh_time must be omitted when absent")
	}
}
