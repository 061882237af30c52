package doorbird

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DoorbellState reports whether the doorbell is currently pressed.
func (c *Client) DoorbellState(ctx context.Context) (bool, error) {
	return c.monitorState(ctx, "doorbell")
}

// MotionSensorState reports whether the motion sensor currently detects
// motion.
func (c *Client) MotionSensorState(ctx context.Context) (bool, error) {
	return c.monitorState(ctx, "motionsensor")
}

// monitorState polls monitor.cgi for one sensor. The device answers with a
// single "name=value" text line rather than JSON; a response without a
// separator or with a non-numeric value reads as idle, not as an error.
func (c *Client) monitorState(ctx context.Context, check string) (bool, error) {
	query := url.Values{}
	query.Set("check", check)

	_, body, err := c.get(ctx, "monitor.cgi", query)
	if err != nil {
		return false, fmt.Errorf("checking %s state: %w", check, err)
	}

	_, value, found := strings.Cut(string(body), "=")
	if !found {
		return false, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return false, nil
	}
	return n == 1, nil
}
