package app

import (
	"fmt"

	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/identity"
	"idola-backend/internal/profiles"
	"idola-backend/internal/scrapers/idola"
	"idola-backend/lib/configutil"
	configlibsql "idola-backend/lib/configutil/libsql"

	"github.com/google/uuid"
)

const report_config_uuid = "config.uuid"

type IdolaConfig struct {
	UserAgent       string `json:"user_agent"`
	DeviceID        string `json:"device_id"`
	DeviceToken     string `json:"device_token"`
	TokenKey        string `json:"token_key"`
	UUID            string `json:"uuid"`
	DeviceName      string `json:"device_name"`
	OperatingSystem string `json:"operating_system"`

	// AppVersion skips the store lookup when set.
	AppVersion       string `json:"app_version"`
	AppVersionSecret string `json:"app_version_secret"`
	StoreUrl         string `json:"store_url"`
	PackageID        string `json:"package_id"`

	ApiUrl            string  `json:"api_url"`
	InitUrl           string  `json:"init_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

func (c IdolaConfig) credentials() idola.Credentials {
	return idola.Credentials{
		UserAgent:       c.UserAgent,
		DeviceID:        c.DeviceID,
		DeviceToken:     c.DeviceToken,
		TokenKey:        c.TokenKey,
		UUID:            c.UUID,
		DeviceName:      c.DeviceName,
		OperatingSystem: c.OperatingSystem,
	}
}

func (c IdolaConfig) versions() idola.AppVersionResolver {
	if c.AppVersion != "" {
		return idola.StaticVersion{Version: c.AppVersion, Secret: c.AppVersionSecret}
	}
	return idola.NewPlayStoreVersion(c.StoreUrl, c.PackageID, c.AppVersionSecret)
}

type IdentityConfig struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
	Watch bool     `json:"watch"`
}

type ScheduleConfig struct {
	Relog        string `json:"relog"`
	BorderStatus string `json:"border_status"`
	Save         string `json:"save"`
	BorderKind   string `json:"border_kind"`
	BorderTier   int    `json:"border_tier"`
}

type DiscordConfig struct {
	Token string `json:"token"`
}

type Config struct {
	Idola         IdolaConfig         `json:"idola"`
	Database      configlibsql.Struct `json:"database"`
	Identity      IdentityConfig      `json:"identity"`
	CacheCapacity int                 `json:"cache_capacity"`
	Schedule      ScheduleConfig      `json:"schedule"`
	Discord       DiscordConfig       `json:"discord"`
	Telemetry     telemetry.Config    `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Database:      configlibsql.Struct{File: "state/idola.db"},
		Identity:      IdentityConfig{Dir: "data", Files: identity.DefaultFiles},
		CacheCapacity: profiles.DefaultCapacity,
		Schedule: ScheduleConfig{
			Relog:        "@every 4h",
			BorderStatus: "@every 1m",
			Save:         "@every 10m",
			BorderKind:   idola.KindRaidSuppression.String(),
			BorderTier:   100,
		},
	}
}

// BorderKind parses Schedule.BorderKind.
func (c Config) BorderKind() (idola.Kind, error) {
	kind, ok := idola.ParseKind(c.Schedule.BorderKind)
	if !ok {
		return 0, fmt.Errorf("unknown border kind %q", c.Schedule.BorderKind)
	}
	return kind, nil
}

func (c Config) validate() error {
	if c.Idola.DeviceID == "" || c.Idola.DeviceToken == "" || c.Idola.TokenKey == "" {
		return fmt.Errorf("idola.device_id, idola.device_token and idola.token_key are required")
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache_capacity must be positive")
	}
	if c.Schedule.BorderTier <= 0 {
		return fmt.Errorf("schedule.border_tier must be positive")
	}
	_, err := c.BorderKind()
	return err
}

// LoadConfig reads name (and its .local override) over DefaultConfig. A
// missing device uuid is generated for this run.
func LoadConfig(name string, tel telemetry.API) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(name, DefaultConfig())
	if err != nil {
		return cfg, err
	}
	if cfg.Idola.UUID == "" {
		cfg.Idola.UUID = uuid.NewString()
		tel.ReportWarning(report_config_uuid, "idola.uuid is not set, generated one for this run", cfg.Idola.UUID)
	}
	return cfg, cfg.validate()
}
