package doorbird

import (
	"net/url"
	"strconv"
)

// RTSP ports used by the device firmware.
const (
	rtspPort         = 554
	rtspOverHTTPPort = 8557
)

// LiveVideoURL returns the URL of the multipart JPEG live video stream, with
// the resolution and compression configured on the device. No request is
// issued; the returned URL embeds the client credentials.
func (c *Client) LiveVideoURL() string {
	return c.buildURL("http", "video.cgi", nil, 0, true)
}

// LiveImageURL returns the URL of a JPEG still with the resolution and
// compression configured on the device. The URL embeds the client
// credentials.
func (c *Client) LiveImageURL() string {
	return c.buildURL("http", "image.cgi", nil, 0, true)
}

// RTSPLiveVideoURL returns the URL of the MPEG H.264 live stream. With
// overHTTP set the RTSP-over-HTTP port is used instead of the plain RTSP
// port. The URL embeds the client credentials.
func (c *Client) RTSPLiveVideoURL(overHTTP bool) string {
	port := rtspPort
	if overHTTP {
		port = rtspOverHTTPPort
	}
	return c.buildURL("rtsp", "mpeg/media.amp", nil, port, true)
}

// HTML5ViewerURL returns the URL of the device's HTML5 viewer page. The URL
// embeds the client credentials.
func (c *Client) HTML5ViewerURL() string {
	return c.buildURL("http", "view.html", nil, 0, true)
}

// HistoryImageURL returns the URL of a past image stored in the cloud. Index
// 1 is the most recent image for the given event type. The URL embeds the
// client credentials.
func (c *Client) HistoryImageURL(index int, event string) string {
	query := url.Values{}
	query.Set("index", strconv.Itoa(index))
	query.Set("event", event)
	return c.buildURL("http", "history.cgi", query, 0, true)
}
