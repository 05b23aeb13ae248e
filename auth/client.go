// Package auth logs the user into the alarm backend and feeds the resulting
// session tokens into the session store.
package auth

import (
	"context"
	"fmt"

	"github.com/vigilo-home/vigilo/common/logging"
	"github.com/vigilo-home/vigilo/poller"
	"github.com/vigilo-home/vigilo/session"
	"github.com/vigilo-home/vigilo/transport"
)

const loginMutation = `mutation mkLoginToken($user: String!, $password: String!, $id: String!, $country: String!, $idDevice: String, $idDeviceIndigitall: String, $deviceType: String, $deviceVersion: String, $deviceResolution: String, $lang: String!, $callby: String!, $uuid: String, $deviceName: String, $deviceBrand: String, $deviceOsVersion: String) {
  xSLoginToken(user: $user, password: $password, id: $id, country: $country, idDevice: $idDevice, idDeviceIndigitall: $idDeviceIndigitall, deviceType: $deviceType, deviceVersion: $deviceVersion, deviceResolution: $deviceResolution, lang: $lang, callby: $callby, uuid: $uuid, deviceName: $deviceName, deviceBrand: $deviceBrand, deviceOsVersion: $deviceOsVersion) {
    res
    msg
    hash
    lang
    legals
    changePassword
    needDeviceAuthorization
    refreshToken
  }
}`

// LoginResult reports backend flags the caller may want to surface to the
// user after a successful login.
type LoginResult struct {
	Lang                    string
	ChangePassword          bool
	NeedDeviceAuthorization bool
}

// Client performs login against the backend.
type Client struct {
	api      *transport.Client
	sessions *session.Store
	devices  *session.FileStore
	log      *logging.Logger
}

// NewClient creates an auth client. devices may be nil when identifiers
// should not be persisted; a throwaway identity is used instead.
func NewClient(api *transport.Client, sessions *session.Store, devices *session.FileStore, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{api: api, sessions: sessions, devices: devices, log: log}
}

// Login authenticates user/password and installs the returned tokens in the
// session store. A backend rejection maps to ErrAuthenticationRejected.
func (c *Client) Login(ctx context.Context, user, password string) (*LoginResult, error) {
	dev, err := c.deviceIdentity(user)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare device identity: %w", err)
	}

	lang, country := c.sessions.Locale()

	variables := map[string]any{
		"user":               user,
		"password":           password,
		"id":                 transport.AppID,
		"country":            country,
		"idDevice":           dev.IDDevice,
		"idDeviceIndigitall": dev.IDDeviceIndigitall,
		"deviceType":         dev.DeviceType,
		"deviceVersion":      dev.DeviceVersion,
		"deviceResolution":   "",
		"lang":               lang,
		"callby":             transport.CallBy,
		"uuid":               dev.UUID,
		"deviceName":         dev.DeviceName,
		"deviceBrand":        dev.DeviceBrand,
		"deviceOsVersion":    "",
	}

	resp, err := c.api.Execute(ctx, loginMutation, variables, nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", session.ErrAuthenticationRejected, err.Error())
	}

	var out struct {
		Res                     string `json:"res"`
		Msg                     string `json:"msg"`
		Hash                    string `json:"hash"`
		Lang                    string `json:"lang"`
		ChangePassword          bool   `json:"changePassword"`
		NeedDeviceAuthorization bool   `json:"needDeviceAuthorization"`
		RefreshToken            string `json:"refreshToken"`
	}
	if err := resp.Decode("xSLoginToken", &out); err != nil {
		return nil, err
	}

	if out.Res != poller.ResOK || out.Hash == "" {
		c.log.Warn("login rejected", "user", user, "msg", out.Msg)
		return nil, fmt.Errorf("%w: %s", session.ErrAuthenticationRejected, out.Msg)
	}

	c.sessions.UpdateCredentials(user, password, out.Hash, out.RefreshToken)
	c.log.Info("login succeeded", "user", user, "need_device_authorization", out.NeedDeviceAuthorization)

	return &LoginResult{
		Lang:                    out.Lang,
		ChangePassword:          out.ChangePassword,
		NeedDeviceAuthorization: out.NeedDeviceAuthorization,
	}, nil
}

// Relogin repeats the last login with the stored credentials, refreshing an
// expired session token.
func (c *Client) Relogin(ctx context.Context) error {
	user, password := c.sessions.Credentials()
	if user == "" || password == "" {
		return session.ErrNotAuthenticated
	}
	_, err := c.Login(ctx, user, password)
	return err
}

// Logout clears the session locally. The backend session simply ages out.
func (c *Client) Logout() {
	c.sessions.Clear()
	c.log.Info("session cleared")
}

func (c *Client) deviceIdentity(user string) (*session.DeviceIdentifiers, error) {
	if c.devices != nil {
		return c.devices.LoadOrCreateDevice(user)
	}
	return session.NewDeviceIdentifiers(), nil
}
