package doorbird_test

import (
	"encoding/json"
	"testing"
	"time"

	"doorbird"
)

func TestScheduleEntry_RoundTrip(t *testing.T) {
	entry := doorbird.NewScheduleEntry("doorbell")
	output := doorbird.NewScheduleEntryOutput("relay")
	output.Schedule.AddRange(time.Unix(1000, 0), time.Unix(2000, 0))
	entry.Output = append(entry.Output, output)

	exported, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var parsed doorbird.ScheduleEntry
	if err := json.Unmarshal(exported, &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if parsed.Input != "doorbell" {
		t.Errorf("input: got %s, want doorbell", parsed.Input)
	}
	if parsed.Param != "" {
		t.Errorf("param: got %q, want empty", parsed.Param)
	}
	if len(parsed.Output) != 1 {
		t.Fatalf("output count: got %d, want 1", len(parsed.Output))
	}

	got := parsed.Output[0]
	if got.Event != "relay" {
		t.Errorf("event: got %s, want relay", got.Event)
	}
	if !got.Enabled {
		t.Error("enabled should survive the round trip as true")
	}
	if len(got.Schedule.FromTo) != 1 {
		t.Fatalf("from-to count: got %d, want 1", len(got.Schedule.FromTo))
	}
	if got.Schedule.FromTo[0].From != 1000 || got.Schedule.FromTo[0].To != 2000 {
		t.Errorf("from-to: got %+v, want {1000 2000}", got.Schedule.FromTo[0])
	}
}

func TestScheduleEntryOutput_EnabledIsStringEncoded(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    string
	}{
		{"enabled", true, `"1"`},
		{"disabled", false, `"0"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := doorbird.NewScheduleEntryOutput("relay")
			output.Enabled = tt.enabled

			data, err := json.Marshal(output)
			if err != nil {
				t.Fatalf("marshal error: %v", err)
			}

			var raw map[string]json.RawMessage
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("unmarshal error: %v", err)
			}
			if string(raw["enabled"]) != tt.want {
				t.Errorf("enabled wire value: got %s, want %s", raw["enabled"], tt.want)
			}
		})
	}
}

func TestScheduleEntrySchedule_OmitsUnsetFields(t *testing.T) {
	var schedule doorbird.ScheduleEntrySchedule

	data, err := json.Marshal(schedule)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("empty schedule: got %s, want {}", data)
	}

	schedule.AddWeekday(9*time.Hour, 17*time.Hour)
	data, err = json.Marshal(schedule)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if _, ok := raw["weekdays"]; !ok {
		t.Error("weekdays key missing after AddWeekday")
	}
	if _, ok := raw["from-to"]; ok {
		t.Error("from-to key must stay absent when unset")
	}
	if _, ok := raw["once"]; ok {
		t.Error("once key must stay absent when unset")
	}
}

func TestScheduleEntrySchedule_TimesAreStringEncoded(t *testing.T) {
	var schedule doorbird.ScheduleEntrySchedule
	schedule.AddRange(time.Unix(1524614400, 0), time.Unix(1527206400, 0))

	data, err := json.Marshal(schedule)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var raw struct {
		FromTo []map[string]json.RawMessage `json:"from-to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(raw.FromTo) != 1 {
		t.Fatalf("from-to count: got %d, want 1", len(raw.FromTo))
	}
	if string(raw.FromTo[0]["from"]) != `"1524614400"` {
		t.Errorf("from wire value: got %s, want \"1524614400\"", raw.FromTo[0]["from"])
	}
	if string(raw.FromTo[0]["to"]) != `"1527206400"` {
		t.Errorf("to wire value: got %s, want \"1527206400\"", raw.FromTo[0]["to"])
	}
}

func TestScheduleEntrySchedule_SetOnce(t *testing.T) {
	var schedule doorbird.ScheduleEntrySchedule
	schedule.SetOnce(true)

	data, err := json.Marshal(schedule)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `{"once":{"valid":1}}` {
		t.Errorf("got %s, want {\"once\":{\"valid\":1}}", data)
	}

	schedule.SetOnce(false)
	data, err = json.Marshal(schedule)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `{"once":{"valid":0}}` {
		t.Errorf("got %s, want {\"once\":{\"valid\":0}}", data)
	}
}

func TestScheduleEntry_ParseStrictOnInput(t *testing.T) {
	var entry doorbird.ScheduleEntry
	err := json.Unmarshal([]byte(`{"param":"","output":[]}`), &entry)
	if err == nil {
		t.Fatal("expected an error for a missing input")
	}
}

func TestScheduleEntryOutput_ParseStrictOnEvent(t *testing.T) {
	var entry doorbird.ScheduleEntry
	err := json.Unmarshal([]byte(`{"input":"doorbell","output":[{"enabled":"1","param":""}]}`), &entry)
	if err == nil {
		t.Fatal("expected an error for an output without an event")
	}
}

func TestScheduleEntry_ParseDefaults(t *testing.T) {
	// Absent enabled reads as disabled; an absent schedule becomes the
	// empty (always-on) schedule.
	var entry doorbird.ScheduleEntry
	err := json.Unmarshal([]byte(`{"input":"rfid","param":"tag1","output":[{"event":"relay","param":"2"}]}`), &entry)
	if err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if entry.Param != "tag1" {
		t.Errorf("param: got %q, want tag1", entry.Param)
	}
	output := entry.Output[0]
	if output.Enabled {
		t.Error("absent enabled must parse as false")
	}
	if output.Schedule.Once != nil || output.Schedule.FromTo != nil || output.Schedule.Weekdays != nil {
		t.Errorf("absent schedule must parse as empty, got %+v", output.Schedule)
	}
}

func TestScheduleEntrySchedule_ParseDeviceShapes(t *testing.T) {
	var entry doorbird.ScheduleEntry
	payload := `{
		"input": "motion",
		"param": "",
		"output": [{
			"enabled": "1",
			"event": "notify",
			"param": "",
			"schedule": {
				"once": {"valid": "1"},
				"from-to": [{"from": "1000.9", "to": "2000"}],
				"weekdays": [{"from": "32400", "to": "61200"}]
			}
		}]
	}`
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	schedule := entry.Output[0].Schedule
	if schedule.Once == nil || !schedule.Once.Valid {
		t.Error("once: expected valid=true")
	}
	if schedule.FromTo[0].From != 1000 {
		t.Errorf("fractional from: got %d, want 1000 (truncated)", schedule.FromTo[0].From)
	}
	if schedule.Weekdays[0].From != 32400 || schedule.Weekdays[0].To != 61200 {
		t.Errorf("weekdays: got %+v", schedule.Weekdays[0])
	}
	if !entry.Output[0].Enabled {
		t.Error("enabled: expected true for wire value \"1\"")
	}
}
