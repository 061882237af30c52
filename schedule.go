package doorbird

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Schedule fetches every schedule entry configured on the device.
func (c *Client) Schedule(ctx context.Context) ([]ScheduleEntry, error) {
	_, body, err := c.get(ctx, "schedule.cgi", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	var entries []ScheduleEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing schedule: %w", err)
	}

	return entries, nil
}

// ChangeSchedule creates or updates one schedule entry. The entry's JSON
// export is sent as the request body. It reports whether the device accepted
// the entry along with the HTTP status observed.
func (c *Client) ChangeSchedule(ctx context.Context, entry ScheduleEntry) (bool, int, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return false, 0, fmt.Errorf("encoding schedule entry: %w", err)
	}

	status, _, err := c.doRequest(ctx, http.MethodPost, "schedule.cgi", nil, body)
	if err != nil {
		return false, status, fmt.Errorf("changing schedule: %w", err)
	}
	return status == http.StatusOK, status, nil
}

// DeleteSchedule removes the schedule entry for the given trigger input.
// The param key narrows the match and is sent only when non-empty.
func (c *Client) DeleteSchedule(ctx context.Context, event, param string) (bool, error) {
	query := url.Values{}
	query.Set("action", "remove")
	query.Set("input", event)
	if param != "" {
		query.Set("param", param)
	}

	status, _, err := c.get(ctx, "schedule.cgi", query)
	if err != nil {
		return false, fmt.Errorf("deleting schedule: %w", err)
	}
	return status == http.StatusOK, nil
}
