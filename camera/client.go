// Package camera requests fresh images from an installation's camera
// devices. Image capture runs asynchronously on the panel; the request is
// polled like any other panel command but with a faster cadence.
package camera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vigilo-home/vigilo/common/logging"
	"github.com/vigilo-home/vigilo/installations"
	"github.com/vigilo-home/vigilo/poller"
	"github.com/vigilo-home/vigilo/session"
	"github.com/vigilo-home/vigilo/transport"
)

const requestImagesMutation = `mutation RequestImages($numinst: String!, $panel: String!, $devices: [Int]!, $mediaType: Int, $resolution: Int, $deviceType: Int) {
  xSRequestImages(numinst: $numinst, panel: $panel, devices: $devices, mediaType: $mediaType, resolution: $resolution, deviceType: $deviceType) {
    res
    msg
    referenceId
  }
}`

const requestImagesStatusQuery = `query RequestImagesStatus($numinst: String!, $panel: String!, $devices: [Int!]!, $referenceId: String!, $counter: Int) {
  xSRequestImagesStatus(numinst: $numinst, panel: $panel, devices: $devices, referenceId: $referenceId, counter: $counter) {
    res
    msg
    numinst
    status
  }
}`

// duplicateRequestMarker is the backend's complaint when an image request
// for the same devices is already in flight. The pending request drains on
// its own, so resubmitting after a pause usually goes through.
const duplicateRequestMarker = "request_already_exists"

// Options tunes the polling behavior of image requests.
type Options struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultOptions returns the camera polling bounds. Image capture settles
// faster than panel commands, hence the shorter interval.
func DefaultOptions() Options {
	return Options{MaxAttempts: 30, Interval: 4 * time.Second}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = def.MaxAttempts
	}
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	return o
}

// Client drives camera image requests.
type Client struct {
	api      *transport.Client
	sessions *session.Store
	installs *installations.Client
	opts     Options
	log      *logging.Logger
}

// NewClient creates a camera client.
func NewClient(api *transport.Client, sessions *session.Store, installs *installations.Client, opts Options, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{api: api, sessions: sessions, installs: installs, opts: opts.withDefaults(), log: log}
}

// RequestImages asks the given camera devices for a fresh capture and waits
// until the panel reports the images are available.
func (c *Client) RequestImages(ctx context.Context, installationID string, devices []int) (poller.Result, error) {
	if len(devices) == 0 {
		return poller.Result{}, errors.New("at least one device is required")
	}

	token, data, err := c.sessions.Current()
	if err != nil {
		return poller.Result{}, err
	}

	panel, capabilities, err := c.installs.PanelInfo(ctx, installationID)
	if err != nil {
		return poller.Result{}, err
	}

	headers := transport.SessionHeaders(token, data)
	for k, v := range transport.InstallationHeaders(installationID, panel, capabilities) {
		headers[k] = v
	}

	c.log.Info("requesting camera images", "installation", installationID, "devices", devices)

	submit := func(ctx context.Context) (poller.SubmitResult, error) {
		variables := map[string]any{
			"numinst": installationID,
			"panel":   panel,
			"devices": devices,
		}

		resp, err := c.api.Execute(ctx, requestImagesMutation, variables, headers)
		if err != nil {
			return poller.SubmitResult{}, err
		}
		if err := resp.Err(); err != nil {
			return poller.SubmitResult{}, fmt.Errorf("%w: %s", poller.ErrOperationFailed, err.Error())
		}

		var out struct {
			Res         string `json:"res"`
			Msg         string `json:"msg"`
			ReferenceID string `json:"referenceId"`
		}
		if err := resp.Decode("xSRequestImages", &out); err != nil {
			return poller.SubmitResult{}, err
		}
		return poller.SubmitResult{Res: out.Res, Msg: out.Msg, ReferenceID: out.ReferenceID}, nil
	}

	poll := func(ctx context.Context, referenceID string, counter int) (poller.PollResult, error) {
		variables := map[string]any{
			"numinst":     installationID,
			"panel":       panel,
			"devices":     devices,
			"referenceId": referenceID,
			"counter":     counter,
		}

		resp, err := c.api.Execute(ctx, requestImagesStatusQuery, variables, headers)
		if err != nil {
			return poller.PollResult{}, err
		}
		if err := resp.Err(); err != nil {
			return poller.PollResult{}, fmt.Errorf("%w: %s", poller.ErrOperationFailed, err.Error())
		}

		var out struct {
			Res    string `json:"res"`
			Msg    string `json:"msg"`
			Status string `json:"status"`
		}
		if err := resp.Decode("xSRequestImagesStatus", &out); err != nil {
			return poller.PollResult{}, err
		}
		return poller.PollResult{Res: out.Res, Msg: out.Msg, Status: out.Status}, nil
	}

	p := poller.New("request_images", c.opts.MaxAttempts, c.opts.Interval)
	p.RetrySubmit = func(err error) bool {
		return err != nil && strings.Contains(err.Error(), duplicateRequestMarker)
	}
	return p.Run(ctx, submit, poll)
}
