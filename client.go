// Package doorbird is a client for the DoorBird LAN API, the HTTP/CGI control
// surface exposed by DoorBird video doorbells on the local network.
package doorbird

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// apiPrefix is the fixed path space every endpoint lives under.
const apiPrefix = "/bha-api/"

// Client talks to a single doorbell unit. It holds no state beyond the
// connection parameters; concurrent use is as safe as the underlying
// *http.Client.
type Client struct {
	host       string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient returns a client for the unit at host, which may carry an
// explicit port. The username must have sufficient privileges on the device
// for the operations being called.
func NewClient(host, username, password string) *Client {
	return NewClientWithHTTPClient(host, username, password, &http.Client{Timeout: 15 * time.Second})
}

// NewClientWithHTTPClient is NewClient with a caller-supplied HTTP client.
func NewClientWithHTTPClient(host, username, password string, httpClient *http.Client) *Client {
	return &Client{
		host:       host,
		username:   username,
		password:   password,
		httpClient: httpClient,
	}
}

// Ready tests the connection to the device. It reports whether the device
// answered with a success return code, along with the HTTP status observed
// (0 when the transport produced none). A body that does not decode reads as
// not ready rather than an error.
func (c *Client) Ready(ctx context.Context) (bool, int, error) {
	status, body, err := c.get(ctx, "info.cgi", nil)
	if err != nil {
		return false, status, err
	}

	var result bhaResult
	if err := json.Unmarshal(body, &result); err != nil {
		return false, status, nil
	}

	return result.BHA.ReturnCode == 1, status, nil
}

// DeviceInfo is the version block reported by the device.
type DeviceInfo struct {
	Firmware    string
	BuildNumber string
	// WiFiMACAddr is set only when the device is connected via WiFi.
	WiFiMACAddr string
	// Relays lists the controllable relays on devices that report them.
	Relays     []string
	DeviceType string
}

// Info fetches version information about the device.
func (c *Client) Info(ctx context.Context) (*DeviceInfo, error) {
	_, body, err := c.get(ctx, "info.cgi", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching device info: %w", err)
	}

	var result struct {
		BHA struct {
			Version []struct {
				Firmware    string   `json:"FIRMWARE"`
				BuildNumber string   `json:"BUILD_NUMBER"`
				WiFiMACAddr string   `json:"WIFI_MAC_ADDR"`
				Relays      []string `json:"RELAYS"`
				DeviceType  string   `json:"DEVICE-TYPE"`
			} `json:"VERSION"`
		} `json:"BHA"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing device info: %w", err)
	}

	if len(result.BHA.Version) == 0 {
		return nil, fmt.Errorf("device info response has no VERSION entry")
	}

	v := result.BHA.Version[0]
	return &DeviceInfo{
		Firmware:    v.Firmware,
		BuildNumber: v.BuildNumber,
		WiFiMACAddr: v.WiFiMACAddr,
		Relays:      v.Relays,
		DeviceType:  v.DeviceType,
	}, nil
}

// bhaResult is the device's envelope for endpoints that answer with a bare
// return code.
type bhaResult struct {
	BHA struct {
		ReturnCode apiInt `json:"RETURNCODE"`
	} `json:"BHA"`
}

// apiInt decodes integer fields the firmware sends either quoted or bare.
type apiInt int

func (a *apiInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value %s: %w", string(data), err)
	}
	*a = apiInt(n)
	return nil
}

// requestSuccess issues a GET and reports whether the device answered with
// return code 1.
func (c *Client) requestSuccess(ctx context.Context, path string, query url.Values) (bool, error) {
	_, body, err := c.get(ctx, path, query)
	if err != nil {
		return false, err
	}

	var result bhaResult
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("parsing response: %w", err)
	}

	return result.BHA.ReturnCode == 1, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	return c.doRequest(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL("http", path, query, 0, false), bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// buildURL assembles a device URL. Credentials are embedded in the authority
// only when embedAuth is set; such URLs carry secrets and must be handled
// accordingly by the caller. Port 0 means the scheme default, and a port
// already present in the configured host always wins.
func (c *Client) buildURL(scheme, path string, query url.Values, port int, embedAuth bool) string {
	u := url.URL{
		Scheme: scheme,
		Host:   c.hostPort(port),
		Path:   apiPrefix + path,
	}
	if embedAuth {
		u.User = url.UserPassword(c.username, c.password)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) hostPort(port int) string {
	if port == 0 {
		return c.host
	}
	if _, _, err := net.SplitHostPort(c.host); err == nil {
		return c.host
	}
	return net.JoinHostPort(c.host, strconv.Itoa(port))
}
