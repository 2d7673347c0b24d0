package main

import (
	"context"
	"flag"
	"time"

	"idola-backend/internal/app"
	"idola-backend/internal/components/chrono"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/presence"
	"idola-backend/lib/serviceutil"
)

func main() {
	configPath := flag.String("config", "config.json5", "Path to the configuration file.")
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	jsonLogs := flag.Bool("log-json", false, "Log one json object per line.")
	dumpDir := flag.String("dump-http", "", "Write every upstream exchange into this directory.")
	flag.Parse()

	telemetry.InitSlog(telemetry.LogOptions{Verbose: *verbose, JSON: *jsonLogs})
	tel := telemetry.SlogAPI{}

	ctx := serviceutil.SignalContext()

	cfg, err := app.LoadConfig(*configPath, tel)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	otel, err := telemetry.Setup(ctx, "idolad", cfg.Telemetry)
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer otel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx, tel)

	var opts app.OpenOptions
	if *dumpDir != "" {
		dump, err := telemetry.NewFilesystemOutput(*dumpDir)
		if err != nil {
			serviceutil.Fatal("create dump directory", err)
		}
		opts.Dump = dump
	}

	a, err := app.Open(ctx, cfg, tel, opts)
	if err != nil {
		serviceutil.Fatal("open app", err)
	}
	defer a.Close()

	var publisher presence.Publisher = presence.NewLogPublisher(tel)
	if cfg.Discord.Token != "" {
		publisher, err = presence.OpenDiscord(cfg.Discord.Token, tel)
		if err != nil {
			serviceutil.Fatal("open discord", err)
		}
	}
	defer publisher.Close()
	publisher.Publish(ctx, "Ready!")

	err = a.Client.Start(ctx)
	if err != nil {
		// the relog job retries on its next tick
		tel.ReportBroken(report_job_relog, err)
	}

	kind, err := cfg.BorderKind()
	if err != nil {
		serviceutil.Fatal("read border kind", err)
	}
	j := jobs{
		service:  a.Service,
		presence: publisher,
		kind:     kind,
		tier:     cfg.Schedule.BorderTier,
		tel:      telemetry.NewScopedAPI("idolad", tel),
	}

	cron := chrono.NewStandardCron(tel, a.Clock.Location())
	err = j.register(cron, cfg.Schedule)
	if err != nil {
		serviceutil.Fatal("register jobs", err)
	}

	<-ctx.Done()
	cron.Stop()
	serviceutil.Bounded(time.Second*15, j.save)
}
