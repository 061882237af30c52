package doorbird

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Event types the device can notify about.
const (
	EventDoorbell     = "doorbell"
	EventMotionSensor = "motionsensor"
	EventDoorOpen     = "dooropen"
)

// NotificationConfig is one notification rule stored on the device.
type NotificationConfig struct {
	URL        string
	User       string
	Password   string
	Event      string
	Subscribed bool
	// Relaxation is the number of seconds the device waits before firing
	// the same event again.
	Relaxation int
}

func (n *NotificationConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL        string `json:"url"`
		User       string `json:"user"`
		Password   string `json:"password"`
		Event      string `json:"event"`
		Subscribe  apiInt `json:"subscribe"`
		Relaxation apiInt `json:"relaxation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.URL = raw.URL
	n.User = raw.User
	n.Password = raw.Password
	n.Event = raw.Event
	n.Subscribed = raw.Subscribe == 1
	n.Relaxation = int(raw.Relaxation)
	return nil
}

// Notifications fetches the notification settings stored on the device.
func (c *Client) Notifications(ctx context.Context) ([]NotificationConfig, error) {
	_, body, err := c.get(ctx, "notification.cgi", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}

	var result struct {
		BHA struct {
			Notifications []NotificationConfig `json:"NOTIFICATIONS"`
		} `json:"BHA"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing notifications: %w", err)
	}

	return result.BHA.Notifications, nil
}

// ResetNotifications clears all notification settings on the device.
func (c *Client) ResetNotifications(ctx context.Context) (bool, error) {
	query := url.Values{}
	query.Set("reset", "1")

	status, _, err := c.get(ctx, "notification.cgi", query)
	if err != nil {
		return false, fmt.Errorf("resetting notifications: %w", err)
	}
	return status == http.StatusOK, nil
}

// NotificationSubscription describes an event notification to register on
// the device. User, Password and Relaxation are optional and omitted from
// the request when zero-valued.
type NotificationSubscription struct {
	// Event is the event type to subscribe to (doorbell, motionsensor,
	// dooropen).
	Event string
	// URL is called with a GET request when the event occurs.
	URL string
	// User and Password are Basic or Digest credentials for the callback
	// URL.
	User     string
	Password string
	// Relaxation is the hold-off in seconds between repeated events.
	Relaxation int
}

// SubscribeNotification registers an event notification on the device.
func (c *Client) SubscribeNotification(ctx context.Context, sub NotificationSubscription) (bool, error) {
	query := url.Values{}
	query.Set("url", sub.URL)
	query.Set("event", sub.Event)
	query.Set("subscribe", "1")
	if sub.User != "" {
		query.Set("user", sub.User)
	}
	if sub.Password != "" {
		query.Set("password", sub.Password)
	}
	if sub.Relaxation > 0 {
		query.Set("relaxation", strconv.Itoa(sub.Relaxation))
	}

	status, _, err := c.get(ctx, "notification.cgi", query)
	if err != nil {
		return false, fmt.Errorf("subscribing %s notification: %w", sub.Event, err)
	}
	return status == http.StatusOK, nil
}

// DisableNotification disables an existing notification for the given event
// type.
func (c *Client) DisableNotification(ctx context.Context, event string) (bool, error) {
	query := url.Values{}
	query.Set("event", event)
	query.Set("subscribe", "0")

	status, _, err := c.get(ctx, "notification.cgi", query)
	if err != nil {
		return false, fmt.Errorf("disabling %s notification: %w", event, err)
	}
	return status == http.StatusOK, nil
}
