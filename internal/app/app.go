package app

import (
	"context"
	"database/sql"

	"idola-backend/internal/components/chrono"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/identity"
	"idola-backend/internal/party"
	"idola-backend/internal/profiles"
	profilesdb "idola-backend/internal/profiles/db"
	"idola-backend/internal/scrapers/idola"
	"idola-backend/internal/service"
)

const report_app_identity_watch = "app.identity-watch"

// App is every long lived component wired together from a Config.
type App struct {
	Config   Config
	DB       *sql.DB
	Identity *identity.Resolver
	Cache    *profiles.Cache
	Registry *profiles.Registry
	Client   *idola.Client
	Service  service.Service
	Clock    chrono.StandardImpl
}

type OpenOptions struct {
	// Dump is passed on to the upstream client.
	Dump telemetry.DumpOutput
	// WithoutDatabase skips persistence, used by one shot cli commands.
	WithoutDatabase bool
}

// Open builds the App and restores persisted state, it does not log in.
func Open(ctx context.Context, cfg Config, tel telemetry.API, opts OpenOptions) (App, error) {
	out := App{Config: cfg}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return out, err
	}
	out.Clock = clock

	out.Identity, err = identity.OpenResolver(cfg.Identity.Dir, cfg.Identity.Files, tel)
	if err != nil {
		return out, err
	}

	out.Cache, err = profiles.NewCache(cfg.CacheCapacity, tel)
	if err != nil {
		return out, err
	}
	out.Registry = profiles.NewRegistry(tel)

	if !opts.WithoutDatabase {
		out.DB, err = cfg.Database.OpenDB(profilesdb.Schema)
		if err != nil {
			return out, err
		}
	}

	out.Client = idola.NewClient(idola.Options{
		ApiUrl:            cfg.Idola.ApiUrl,
		InitUrl:           cfg.Idola.InitUrl,
		Credentials:       cfg.Idola.credentials(),
		Versions:          cfg.Idola.versions(),
		Profiles:          out.Cache,
		RequestsPerSecond: cfg.Idola.RequestsPerSecond,
		Dump:              opts.Dump,
	}, tel)

	out.Service = service.NewService(service.Options{
		Game:      out.Client,
		Cache:     out.Cache,
		Registry:  out.Registry,
		Formatter: party.NewFormatter(out.Identity, tel),
		DB:        out.DB,
		Clock:     clock,
	}, tel)

	if out.DB != nil {
		err = out.Service.Load(ctx)
		if err != nil {
			out.Close()
			return out, err
		}
	}

	if cfg.Identity.Watch {
		err = out.Identity.Watch(ctx)
		if err != nil {
			tel.ReportWarning(report_app_identity_watch, err)
		}
	}

	return out, nil
}

func (a App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
