// Package installations lists the account's alarm installations and caches
// their per-installation service details, including the capability token
// required for panel operations.
package installations

import (
	"context"
	"errors"
	"fmt"

	"github.com/vigilo-home/vigilo/common/logging"
	"github.com/vigilo-home/vigilo/poller"
	"github.com/vigilo-home/vigilo/session"
	"github.com/vigilo-home/vigilo/transport"
)

// Client fetches installation data from the backend, filling the cache on
// the way.
type Client struct {
	api      *transport.Client
	sessions *session.Store
	cache    Cache
	log      *logging.Logger
}

// NewClient creates an installations client. cache may not be nil; use a
// MemoryCache when nothing shared is wanted.
func NewClient(api *transport.Client, sessions *session.Store, cache Cache, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{api: api, sessions: sessions, cache: cache, log: log}
}

// List returns all installations visible to the logged-in account.
func (c *Client) List(ctx context.Context) ([]Installation, error) {
	token, data, err := c.sessions.Current()
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Execute(ctx, installationsQuery, nil, transport.SessionHeaders(token, data))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to list installations: %w", err)
	}

	var out struct {
		Installations []Installation `json:"installations"`
	}
	if err := resp.Decode("xSInstallations", &out); err != nil {
		return nil, err
	}

	c.log.Debug("listed installations", "count", len(out.Installations))
	return out.Installations, nil
}

// Services returns the service detail for an installation, preferring the
// cache. forceRefresh skips the cache read but still updates it.
func (c *Client) Services(ctx context.Context, installationID string, forceRefresh bool) (*Services, error) {
	if installationID == "" {
		return nil, errors.New("installation id is required")
	}

	if !forceRefresh {
		svc, err := c.cache.Get(ctx, installationID)
		if err == nil {
			c.log.Debug("services cache hit", "installation", installationID)
			return svc, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("cache read failed, fetching", "installation", installationID, "error", err)
		}
	}

	svc, err := c.fetchServices(ctx, installationID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, installationID, svc); err != nil {
		c.log.Warn("cache write failed", "installation", installationID, "error", err)
	}
	return svc, nil
}

func (c *Client) fetchServices(ctx context.Context, installationID string) (*Services, error) {
	token, data, err := c.sessions.Current()
	if err != nil {
		return nil, err
	}

	variables := map[string]any{"numinst": installationID}
	resp, err := c.api.Execute(ctx, servicesQuery, variables, transport.SessionHeaders(token, data))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to get installation services: %w", err)
	}

	var out struct {
		Res          string   `json:"res"`
		Msg          string   `json:"msg"`
		Language     string   `json:"language"`
		Installation Services `json:"installation"`
	}
	if err := resp.Decode("xSSrv", &out); err != nil {
		return nil, err
	}
	if out.Res != poller.ResOK {
		return nil, fmt.Errorf("failed to get installation services: %s", out.Msg)
	}

	svc := out.Installation
	svc.Language = out.Language
	return &svc, nil
}

// Devices returns the device list of an installation. The panel id comes
// from the (possibly cached) service detail.
func (c *Client) Devices(ctx context.Context, installationID string) ([]Device, error) {
	svc, err := c.Services(ctx, installationID, false)
	if err != nil {
		return nil, err
	}

	token, data, err := c.sessions.Current()
	if err != nil {
		return nil, err
	}

	variables := map[string]any{"numinst": installationID, "panel": svc.Panel}
	resp, err := c.api.Execute(ctx, devicesQuery, variables, transport.SessionHeaders(token, data))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	var out struct {
		Res     string   `json:"res"`
		Devices []Device `json:"devices"`
	}
	if err := resp.Decode("xSDeviceList", &out); err != nil {
		return nil, err
	}
	if out.Res != poller.ResOK {
		return nil, errors.New("failed to get devices")
	}
	return out.Devices, nil
}

// PanelInfo resolves the panel id and capability token needed for alarm and
// camera operations against an installation.
func (c *Client) PanelInfo(ctx context.Context, installationID string) (panel, capabilities string, err error) {
	svc, err := c.Services(ctx, installationID, false)
	if err != nil {
		return "", "", err
	}
	return svc.Panel, svc.Capabilities, nil
}

// Invalidate drops any cached detail for an installation. An empty id drops
// every cached entry.
func (c *Client) Invalidate(ctx context.Context, installationID string) error {
	if installationID == "" {
		return c.cache.InvalidateAll(ctx)
	}
	return c.cache.Invalidate(ctx, installationID)
}
