package doorbird

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Favorite types supported by the device.
const (
	FavoriteTypeSIP  = "sip"
	FavoriteTypeHTTP = "http"
)

// Favorite is a saved callback target (SIP peer or HTTP URL) stored on the
// device.
type Favorite struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Favorites fetches all favorites stored on the device, keyed by favorite
// type and then by favorite id.
func (c *Client) Favorites(ctx context.Context) (map[string]map[string]Favorite, error) {
	_, body, err := c.get(ctx, "favorites.cgi", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching favorites: %w", err)
	}

	var favorites map[string]map[string]Favorite
	if err := json.Unmarshal(body, &favorites); err != nil {
		return nil, fmt.Errorf("parsing favorites: %w", err)
	}

	return favorites, nil
}

// ChangeFavorite adds a favorite, or updates an existing one when id is
// non-empty.
func (c *Client) ChangeFavorite(ctx context.Context, favType, title, value, id string) (bool, error) {
	query := url.Values{}
	query.Set("action", "save")
	query.Set("type", favType)
	query.Set("title", title)
	query.Set("value", value)
	if id != "" {
		query.Set("id", id)
	}

	status, _, err := c.get(ctx, "favorites.cgi", query)
	if err != nil {
		return false, fmt.Errorf("saving %s favorite: %w", favType, err)
	}
	return status == http.StatusOK, nil
}

// DeleteFavorite removes the favorite with the given type and id from the
// device.
func (c *Client) DeleteFavorite(ctx context.Context, favType, id string) (bool, error) {
	query := url.Values{}
	query.Set("action", "remove")
	query.Set("type", favType)
	query.Set("id", id)

	status, _, err := c.get(ctx, "favorites.cgi", query)
	if err != nil {
		return false, fmt.Errorf("deleting %s favorite: %w", favType, err)
	}
	return status == http.StatusOK, nil
}
