// Package alarm arms, disarms and reads the state of an installation's
// panel. Panel commands are asynchronous on the backend: a mutation starts
// the command and a status query is polled until the panel confirms.
package alarm

import (
	"context"
	"fmt"
	"time"

	"github.com/vigilo-home/vigilo/common/logging"
	"github.com/vigilo-home/vigilo/installations"
	"github.com/vigilo-home/vigilo/poller"
	"github.com/vigilo-home/vigilo/session"
	"github.com/vigilo-home/vigilo/transport"
)

// Mode selects what to arm. The values are the panel request codes.
type Mode string

const (
	// ModeAway arms the full interior alarm.
	ModeAway Mode = "ARM1"
	// ModeHome arms the perimeter only.
	ModeHome Mode = "PERI1"
	// ModeNight arms the interior night zone.
	ModeNight Mode = "ARMNIGHT1"

	disarmRequest = "DARM1"

	// statusService is the idService the backend expects on status reads.
	statusService = "EST"
)

// Options tunes the polling behavior of panel commands.
type Options struct {
	// MaxAttempts bounds status polls for arm and disarm commands.
	MaxAttempts int
	// Interval is the pause between polls.
	Interval time.Duration
	// StatusMaxAttempts bounds polls for alarm status reads, which settle
	// faster than panel commands.
	StatusMaxAttempts int
}

// DefaultOptions returns the polling bounds the backend is known to honor.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:       30,
		Interval:          5 * time.Second,
		StatusMaxAttempts: 10,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = def.MaxAttempts
	}
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	if o.StatusMaxAttempts <= 0 {
		o.StatusMaxAttempts = def.StatusMaxAttempts
	}
	return o
}

// Status is the outcome of an alarm status read.
type Status struct {
	Flags   Flags  `json:"flags"`
	Message string `json:"message"`
}

// Client drives panel operations for installations.
type Client struct {
	api      *transport.Client
	sessions *session.Store
	installs *installations.Client
	opts     Options
	table    statusTable
	log      *logging.Logger
}

// NewClient creates an alarm client.
func NewClient(api *transport.Client, sessions *session.Store, installs *installations.Client, opts Options, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{
		api:      api,
		sessions: sessions,
		installs: installs,
		opts:     opts.withDefaults(),
		table:    defaultTable,
		log:      log,
	}
}

// panelContext resolves everything a panel-scoped call needs: the panel id
// and the full header set including the capability token.
func (c *Client) panelContext(ctx context.Context, installationID string) (panel string, headers map[string]string, err error) {
	token, data, err := c.sessions.Current()
	if err != nil {
		return "", nil, err
	}

	panel, capabilities, err := c.installs.PanelInfo(ctx, installationID)
	if err != nil {
		return "", nil, err
	}

	headers = transport.SessionHeaders(token, data)
	for k, v := range transport.InstallationHeaders(installationID, panel, capabilities) {
		headers[k] = v
	}
	return panel, headers, nil
}

type commandResponse struct {
	Res         string `json:"res"`
	Msg         string `json:"msg"`
	ReferenceID string `json:"referenceId"`
}

type statusResponse struct {
	Res            string `json:"res"`
	Msg            string `json:"msg"`
	Status         string `json:"status"`
	ProtomResponse string `json:"protomResponse"`
}

// Arm arms the panel in the given mode, blocking until the panel confirms,
// the attempts run out, or ctx ends.
func (c *Client) Arm(ctx context.Context, installationID string, mode Mode) (poller.Result, error) {
	panel, headers, err := c.panelContext(ctx, installationID)
	if err != nil {
		return poller.Result{}, err
	}

	c.log.Info("arming panel", "installation", installationID, "mode", string(mode))

	submit := func(ctx context.Context) (poller.SubmitResult, error) {
		variables := map[string]any{
			"numinst":             installationID,
			"request":             string(mode),
			"panel":               panel,
			"currentStatus":       "E",
			"forceArmingRemoteId": nil,
			"armAndLock":          false,
		}
		return c.submitCommand(ctx, armPanelMutation, "xSArmPanel", variables, headers)
	}

	poll := func(ctx context.Context, referenceID string, counter int) (poller.PollResult, error) {
		variables := map[string]any{
			"numinst":             installationID,
			"panel":               panel,
			"referenceId":         referenceID,
			"counter":             counter,
			"request":             string(mode),
			"forceArmingRemoteId": nil,
			"armAndLock":          false,
		}
		return c.pollCommand(ctx, armStatusQuery, "xSArmStatus", variables, headers)
	}

	p := poller.New("arm", c.opts.MaxAttempts, c.opts.Interval)
	return p.Run(ctx, submit, poll)
}

// Disarm disarms all zones of the panel.
func (c *Client) Disarm(ctx context.Context, installationID string) (poller.Result, error) {
	panel, headers, err := c.panelContext(ctx, installationID)
	if err != nil {
		return poller.Result{}, err
	}

	c.log.Info("disarming panel", "installation", installationID)

	submit := func(ctx context.Context) (poller.SubmitResult, error) {
		variables := map[string]any{
			"numinst": installationID,
			"request": disarmRequest,
			"panel":   panel,
		}
		return c.submitCommand(ctx, disarmPanelMutation, "xSDisarmPanel", variables, headers)
	}

	poll := func(ctx context.Context, referenceID string, counter int) (poller.PollResult, error) {
		variables := map[string]any{
			"numinst":     installationID,
			"panel":       panel,
			"referenceId": referenceID,
			"counter":     counter,
			"request":     disarmRequest,
		}
		return c.pollCommand(ctx, disarmStatusQuery, "xSDisarmStatus", variables, headers)
	}

	p := poller.New("disarm", c.opts.MaxAttempts, c.opts.Interval)
	return p.Run(ctx, submit, poll)
}

// Status reads the current armed state of the panel. The backend answers
// with a free-text message that is mapped onto zone flags; an unrecognized
// message reads as all-disarmed.
func (c *Client) Status(ctx context.Context, installationID string) (Status, error) {
	panel, headers, err := c.panelContext(ctx, installationID)
	if err != nil {
		return Status{}, err
	}

	submit := func(ctx context.Context) (poller.SubmitResult, error) {
		variables := map[string]any{
			"numinst": installationID,
			"panel":   panel,
		}
		return c.submitCommand(ctx, checkAlarmQuery, "xSCheckAlarm", variables, headers)
	}

	// The status check takes no counter; the reference id alone identifies
	// the pending read.
	poll := func(ctx context.Context, referenceID string, _ int) (poller.PollResult, error) {
		variables := map[string]any{
			"numinst":     installationID,
			"idService":   statusService,
			"panel":       panel,
			"referenceId": referenceID,
		}
		return c.pollCommand(ctx, checkAlarmStatusQuery, "xSCheckAlarmStatus", variables, headers)
	}

	p := poller.New("status", c.opts.StatusMaxAttempts, c.opts.Interval)
	result, err := p.Run(ctx, submit, poll)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Flags:   c.table.mapMessage(result.Message),
		Message: result.Message,
	}, nil
}

func (c *Client) submitCommand(ctx context.Context, query, field string, variables map[string]any, headers map[string]string) (poller.SubmitResult, error) {
	resp, err := c.api.Execute(ctx, query, variables, headers)
	if err != nil {
		return poller.SubmitResult{}, err
	}
	if err := resp.Err(); err != nil {
		return poller.SubmitResult{}, fmt.Errorf("%w: %s", poller.ErrOperationFailed, err.Error())
	}

	var out commandResponse
	if err := resp.Decode(field, &out); err != nil {
		return poller.SubmitResult{}, err
	}
	return poller.SubmitResult{Res: out.Res, Msg: out.Msg, ReferenceID: out.ReferenceID}, nil
}

func (c *Client) pollCommand(ctx context.Context, query, field string, variables map[string]any, headers map[string]string) (poller.PollResult, error) {
	resp, err := c.api.Execute(ctx, query, variables, headers)
	if err != nil {
		return poller.PollResult{}, err
	}
	if err := resp.Err(); err != nil {
		return poller.PollResult{}, fmt.Errorf("%w: %s", poller.ErrOperationFailed, err.Error())
	}

	var out statusResponse
	if err := resp.Decode(field, &out); err != nil {
		return poller.PollResult{}, err
	}
	return poller.PollResult{Res: out.Res, Msg: out.Msg, Status: out.Status}, nil
}
