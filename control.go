package doorbird

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// EnergizeRelay energizes one of the device's output relays (door opener,
// alarm output). Relays are numbered from 1.
func (c *Client) EnergizeRelay(ctx context.Context, relay int) (bool, error) {
	query := url.Values{}
	query.Set("r", strconv.Itoa(relay))

	ok, err := c.requestSuccess(ctx, "open-door.cgi", query)
	if err != nil {
		return false, fmt.Errorf("energizing relay %d: %w", relay, err)
	}
	return ok, nil
}

// TurnLightOn energizes the light relay of the device.
func (c *Client) TurnLightOn(ctx context.Context) (bool, error) {
	ok, err := c.requestSuccess(ctx, "light-on.cgi", nil)
	if err != nil {
		return false, fmt.Errorf("turning light on: %w", err)
	}
	return ok, nil
}
