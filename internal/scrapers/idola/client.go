package idola

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"idola-backend/internal/components/assert"
	"idola-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/idola")

const (
	DefaultApiUrl  = "https://game.idola.jp/api"
	DefaultInitUrl = "https://service.idola.jp/api/app/init"

	unityVersion = "2017.4.26f1"

	pathPreLogin          = "/user/prelogin"
	pathLogin             = "/user/login"
	pathHomeNotice        = "/home/notice"
	pathArenaPartyDetails = "/ant/partydetails"
	pathArenaRanking      = "/ant/offsetranking"
	pathRaidRanking       = "/raid/offsetranking"
	pathGuildInfo         = "/guild/info"
	pathGuildMemberList   = "/guild/memberlist"
	pathGuildSearch       = "/guild/search"
	pathGuildRanking      = "/rod/ranking"
)

// Credentials are the device identity the client logs in as.
type Credentials struct {
	UserAgent       string
	DeviceID        string
	DeviceToken     string
	TokenKey        string
	UUID            string
	DeviceName      string
	OperatingSystem string
}

func (c Credentials) deviceName() string {
	if c.DeviceName == "" {
		return "Google Pixel XL"
	}
	return c.DeviceName
}

func (c Credentials) operatingSystem() string {
	if c.OperatingSystem == "" {
		return "Android OS 5.1.1 / API-22 (NOF26V/500191128)"
	}
	return c.OperatingSystem
}

// ProfileSink receives every (display name, profile id) pair observed in a response.
type ProfileSink interface {
	Put(name string, profileId int64)
}

type Options struct {
	ApiUrl            string
	InitUrl           string
	Credentials       Credentials
	Versions          AppVersionResolver
	Profiles          ProfileSink
	RequestsPerSecond float64
	Timeout           time.Duration
	// optional, receives every raw exchange
	Dump telemetry.DumpOutput
}

// Client talks to the game API. Every request that consumes the retrans key
// goes through mutex, so calls sharing a Client are strictly serialized.
type Client struct {
	http     *resty.Client
	tel      telemetry.API
	creds    Credentials
	versions AppVersionResolver
	profiles ProfileSink
	initUrl  string

	mutex   sync.Mutex
	session Session
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotNil(opts.Versions)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("idola_client", tel)

	if opts.ApiUrl == "" {
		opts.ApiUrl = DefaultApiUrl
	}
	if opts.InitUrl == "" {
		opts.InitUrl = DefaultInitUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetBaseURL(opts.ApiUrl)
	httpClient.SetHeader("content-type", "application/json")
	if opts.Credentials.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.Credentials.UserAgent)
	}

	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	telemetry.InstrumentResty(httpClient, tel, opts.Dump)

	return &Client{
		http:     httpClient,
		tel:      tel,
		creds:    opts.Credentials,
		versions: opts.Versions,
		profiles: opts.Profiles,
		initUrl:  opts.InitUrl,
	}
}

// Session returns a copy of the current credential set.
func (c *Client) Session() Session {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session
}

func (c *Client) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session.State
}

func (c *Client) observeProfile(name string, profileId int64) {
	if c.profiles == nil || name == "" || profileId == 0 {
		return
	}
	c.profiles.Put(name, profileId)
}

// exchange performs one POST and stores the next retrans key. The caller
// must hold c.mutex.
func exchange[T any](
	ctx context.Context,
	c *Client,
	report, endpoint string,
	headers map[string]string,
	body any,
) (envelope[T], error) {
	ctx, span := tracer.Start(ctx, "client:"+report)
	defer span.End()
	span.SetAttributes(attribute.String("idola.endpoint", endpoint))

	var out envelope[T]

	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		c.tel.ReportBroken(report, fmt.Errorf("fetch: %w", err))
		return out, err
	}

	if res.IsError() {
		statusErr := StatusError{Endpoint: endpoint, Code: res.StatusCode()}
		span.SetStatus(codes.Error, statusErr.Error())
		c.tel.ReportBroken(report, statusErr)
		if res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusForbidden {
			c.session.State = StateUninitialized
			return out, fmt.Errorf("%w: %w", ErrSessionInvalid, statusErr)
		}
		return out, statusErr
	}

	// the upstream has consumed the old key by now, keep the new one even
	// when the payload turns out to be malformed
	var keys envelopeKeys
	err = json.Unmarshal(res.Body(), &keys)
	if err == nil && keys.RetransKey != "" {
		c.session.RetransKey = keys.RetransKey
	}
	if err == nil {
		err = json.Unmarshal(res.Body(), &out)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal json")
		c.tel.ReportBroken(report, fmt.Errorf("unmarshal json: %w", err))
		return out, err
	}
	return out, nil
}

// call is exchange for authenticated endpoints: it takes the gate, stamps
// the current credentials onto body and requires a replacement key back.
func call[T any](ctx context.Context, c *Client, report, endpoint string, body authBody) (T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero T
	if c.session.State != StateLoggedIn {
		return zero, ErrNotLoggedIn
	}

	body.setAuth(c.session.auth())
	res, err := exchange[T](ctx, c, report, endpoint, nil, body)
	if err != nil {
		return zero, err
	}
	if res.RetransKey == "" {
		c.session.State = StateUninitialized
		c.tel.ReportWarning(report, "response without retrans_key")
		return zero, fmt.Errorf("%w: %s returned no retrans_key", ErrSessionInvalid, endpoint)
	}
	return res.Replace, nil
}
