package doorbird

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScheduleEntry is one schedule rule on the device: a trigger input mapped
// to a sequence of timed output actions. Its JSON form matches the device
// wire format exactly, so entries round-trip through schedule.cgi unchanged.
type ScheduleEntry struct {
	// Input is the trigger source (doorbell, motion, rfid, input) and is
	// required.
	Input string
	// Param narrows the trigger, e.g. a relay number or RFID tag id.
	Param  string
	Output []ScheduleEntryOutput
}

// NewScheduleEntry returns an entry for the given trigger input with no
// outputs.
func NewScheduleEntry(input string) *ScheduleEntry {
	return &ScheduleEntry{Input: input}
}

func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	output := e.Output
	if output == nil {
		output = []ScheduleEntryOutput{}
	}
	return json.Marshal(struct {
		Input  string                `json:"input"`
		Param  string                `json:"param"`
		Output []ScheduleEntryOutput `json:"output"`
	}{e.Input, e.Param, output})
}

func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input  *string               `json:"input"`
		Param  *string               `json:"param"`
		Output []ScheduleEntryOutput `json:"output"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Input == nil || *raw.Input == "" {
		return errors.New("schedule entry: missing input")
	}

	e.Input = *raw.Input
	e.Param = ""
	if raw.Param != nil {
		e.Param = *raw.Param
	}
	e.Output = raw.Output
	return nil
}

func (e ScheduleEntry) String() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// ScheduleEntryOutput is one action a schedule entry triggers. On the wire
// the enabled flag is the string "1" or "0", never a native boolean.
type ScheduleEntryOutput struct {
	Enabled bool
	// Event is the action to perform (relay, notify, ...) and is required.
	Event    string
	Param    string
	Schedule ScheduleEntrySchedule
}

// NewScheduleEntryOutput returns an enabled output for the given action with
// an empty (always-on) schedule.
func NewScheduleEntryOutput(event string) ScheduleEntryOutput {
	return ScheduleEntryOutput{Enabled: true, Event: event}
}

func (o ScheduleEntryOutput) MarshalJSON() ([]byte, error) {
	enabled := "0"
	if o.Enabled {
		enabled = "1"
	}
	return json.Marshal(struct {
		Enabled  string                `json:"enabled"`
		Event    string                `json:"event"`
		Param    string                `json:"param"`
		Schedule ScheduleEntrySchedule `json:"schedule"`
	}{enabled, o.Event, o.Param, o.Schedule})
}

func (o *ScheduleEntryOutput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Enabled  json.RawMessage        `json:"enabled"`
		Event    *string                `json:"event"`
		Param    *string                `json:"param"`
		Schedule *ScheduleEntrySchedule `json:"schedule"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Event == nil || *raw.Event == "" {
		return errors.New("schedule output: missing event")
	}

	o.Event = *raw.Event
	o.Param = ""
	if raw.Param != nil {
		o.Param = *raw.Param
	}
	o.Enabled = raw.Enabled != nil && wireBool(raw.Enabled)
	o.Schedule = ScheduleEntrySchedule{}
	if raw.Schedule != nil {
		o.Schedule = *raw.Schedule
	}
	return nil
}

func (o ScheduleEntryOutput) String() string {
	data, _ := json.Marshal(o)
	return string(data)
}

// ScheduleOnce marks a schedule to fire a single time; the device clears the
// valid flag after the run.
type ScheduleOnce struct {
	Valid bool
}

// ScheduleRange is a time range in seconds: absolute unix time for from-to
// ranges, seconds since Sunday midnight for weekday ranges.
type ScheduleRange struct {
	From int64
	To   int64
}

// ScheduleEntrySchedule restricts when an output runs. All three fields are
// independent and optional; an unset field is omitted entirely from the
// exported JSON, and a schedule with nothing set means always.
type ScheduleEntrySchedule struct {
	Once     *ScheduleOnce
	FromTo   []ScheduleRange
	Weekdays []ScheduleRange
}

// SetOnce toggles single-shot mode. With enabled the schedule fires on its
// next run and is then disabled until enabled again.
func (s *ScheduleEntrySchedule) SetOnce(enabled bool) {
	s.Once = &ScheduleOnce{Valid: enabled}
}

// AddRange restricts the schedule to the absolute time window between from
// and to. Sub-second precision is truncated.
func (s *ScheduleEntrySchedule) AddRange(from, to time.Time) {
	s.FromTo = append(s.FromTo, ScheduleRange{From: from.Unix(), To: to.Unix()})
}

// AddWeekday adds a weekly recurring window, with from and to measured from
// Sunday at 00:00. Sub-second precision is truncated.
func (s *ScheduleEntrySchedule) AddWeekday(from, to time.Duration) {
	s.Weekdays = append(s.Weekdays, ScheduleRange{
		From: int64(from.Seconds()),
		To:   int64(to.Seconds()),
	})
}

// wireOnce and wireRange are the device-side shapes. Times travel as base-10
// integer strings, a firmware quirk that must be preserved.
type wireOnce struct {
	Valid apiInt `json:"valid"`
}

type wireRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type wireSchedule struct {
	Once     *wireOnce   `json:"once,omitempty"`
	FromTo   []wireRange `json:"from-to,omitempty"`
	Weekdays []wireRange `json:"weekdays,omitempty"`
}

func (s ScheduleEntrySchedule) MarshalJSON() ([]byte, error) {
	var raw wireSchedule
	if s.Once != nil {
		valid := apiInt(0)
		if s.Once.Valid {
			valid = 1
		}
		raw.Once = &wireOnce{Valid: valid}
	}
	raw.FromTo = toWireRanges(s.FromTo)
	raw.Weekdays = toWireRanges(s.Weekdays)
	return json.Marshal(raw)
}

func (s *ScheduleEntrySchedule) UnmarshalJSON(data []byte) error {
	var raw wireSchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = ScheduleEntrySchedule{}
	if raw.Once != nil {
		s.Once = &ScheduleOnce{Valid: raw.Once.Valid == 1}
	}

	var err error
	if s.FromTo, err = fromWireRanges(raw.FromTo); err != nil {
		return fmt.Errorf("schedule from-to: %w", err)
	}
	if s.Weekdays, err = fromWireRanges(raw.Weekdays); err != nil {
		return fmt.Errorf("schedule weekdays: %w", err)
	}
	return nil
}

func (s ScheduleEntrySchedule) String() string {
	data, _ := json.Marshal(s)
	return string(data)
}

func toWireRanges(ranges []ScheduleRange) []wireRange {
	if ranges == nil {
		return nil
	}
	out := make([]wireRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, wireRange{
			From: strconv.FormatInt(r.From, 10),
			To:   strconv.FormatInt(r.To, 10),
		})
	}
	return out
}

func fromWireRanges(ranges []wireRange) ([]ScheduleRange, error) {
	if ranges == nil {
		return nil, nil
	}
	out := make([]ScheduleRange, 0, len(ranges))
	for _, r := range ranges {
		from, err := parseWireSeconds(r.From)
		if err != nil {
			return nil, err
		}
		to, err := parseWireSeconds(r.To)
		if err != nil {
			return nil, err
		}
		out = append(out, ScheduleRange{From: from, To: to})
	}
	return out, nil
}

// parseWireSeconds reads a second count rendered as a base-10 string,
// truncating any fractional part.
func parseWireSeconds(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time value %q", s)
	}
	return int64(f), nil
}

// wireBool reads the truthiness of a flag the firmware writes as "1"/"0", a
// bare number, or a boolean.
func wireBool(raw json.RawMessage) bool {
	switch strings.Trim(strings.TrimSpace(string(raw)), `"`) {
	case "", "0", "false", "null":
		return false
	}
	return true
}
