package idola

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

const (
	report_session_start     = "session.start"
	report_session_init      = "session.init"
	report_session_pre_login = "session.pre-login"
	report_session_login     = "session.login"
)

// State is the position of a Session in the login handshake.
type State int

const (
	StateUninitialized State = iota
	StateAppVersionResolved
	StateInitialized
	StatePreLoggedIn
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAppVersionResolved:
		return "app_version_resolved"
	case StateInitialized:
		return "initialized"
	case StatePreLoggedIn:
		return "pre_logged_in"
	case StateLoggedIn:
		return "logged_in"
	}
	return "unknown"
}

// Session is the mutable credential set. RetransKey is single use: each
// request carries the latest value and each response hands out the next one.
type Session struct {
	AppVersion      string
	ResourceVersion string
	AuthKey         string
	RetransKey      string
	SessionKey      string
	State           State
}

func (s Session) auth() authFields {
	return authFields{
		AppVer:     s.AppVersion,
		ResVer:     s.ResourceVersion,
		AuthKey:    s.AuthKey,
		RetransKey: s.RetransKey,
	}
}

// AuthKey is hex(SHA1(tokenKey + ":" + sessionKey)).
func AuthKey(tokenKey, sessionKey string) string {
	sum := sha1.Sum([]byte(tokenKey + ":" + sessionKey))
	return hex.EncodeToString(sum[:])
}

// Start runs the whole handshake from scratch, holding the request gate so
// nothing else consumes a retrans key while it runs. A failed Start leaves
// the session uninitialized.
func (c *Client) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Start")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.session = Session{}

	err := c.start(ctx)
	if err != nil {
		c.session.State = StateUninitialized
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake failed")
		c.tel.ReportBroken(report_session_start, err)
		return err
	}

	c.tel.ReportDebug("logged in", c.session.ResourceVersion)
	return nil
}

func (c *Client) start(ctx context.Context) error {
	appVersion, err := c.versions.ResolveAppVersion(ctx)
	if err != nil {
		return fmt.Errorf("resolve app version: %w", err)
	}
	c.session.AppVersion = appVersion
	c.session.State = StateAppVersionResolved

	err = c.init(ctx)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	err = c.preLogin(ctx)
	if err != nil {
		return fmt.Errorf("pre-login: %w", err)
	}
	err = c.login(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (c *Client) init(ctx context.Context) error {
	res, err := exchange[struct{}](
		ctx, c, report_session_init, c.initUrl,
		map[string]string{"X-Unity-Version": unityVersion},
		appInitRequest{
			AppVer:     c.session.AppVersion,
			RetransKey: nil,
			UUID:       "",
		},
	)
	if err != nil {
		return err
	}
	if res.RetransKey == "" || res.ResVersion == "" {
		return fmt.Errorf("init response is missing retrans_key or res_version")
	}

	c.session.RetransKey = res.RetransKey
	c.session.ResourceVersion = res.ResVersion
	c.session.State = StateInitialized
	return nil
}

func (c *Client) preLogin(ctx context.Context) error {
	res, err := exchange[preLoginReplace](
		ctx, c, report_session_pre_login, pathPreLogin, nil,
		preLoginRequest{
			AppVer:     c.session.AppVersion,
			ResVer:     c.session.ResourceVersion,
			RetransKey: c.session.RetransKey,
			UUID:       c.creds.UUID,
		},
	)
	if err != nil {
		return err
	}
	if res.Replace.SessionKey == "" {
		return fmt.Errorf("pre-login response is missing session_key")
	}

	c.session.SessionKey = res.Replace.SessionKey
	c.session.AuthKey = AuthKey(c.creds.TokenKey, c.session.SessionKey)
	c.session.State = StatePreLoggedIn
	return nil
}

func (c *Client) login(ctx context.Context) error {
	req := &loginRequest{
		DeviceID:        c.creds.DeviceID,
		DeviceToken:     c.creds.DeviceToken,
		LanguageCode:    "Japanese",
		BattleType:      0,
		BattleID:        0,
		IsTutorial:      true,
		Region:          "JP",
		LocalTime:       8,
		DeviceName:      c.creds.deviceName(),
		OperatingSystem: c.creds.operatingSystem(),
		IInfo:           0,
	}
	req.setAuth(c.session.auth())

	res, err := exchange[struct{}](ctx, c, report_session_login, pathLogin, nil, req)
	if err != nil {
		return err
	}
	if res.RetransKey == "" {
		return fmt.Errorf("%w: login response is missing retrans_key", ErrSessionInvalid)
	}
	c.session.State = StateLoggedIn
	return nil
}
