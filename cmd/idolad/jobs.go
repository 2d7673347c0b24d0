package main

import (
	"context"
	"errors"

	"idola-backend/internal/app"
	"idola-backend/internal/components/chrono"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/presence"
	"idola-backend/internal/scrapers/idola"
	"idola-backend/internal/service"
)

const (
	report_job_relog  = "job.relog"
	report_job_save   = "job.save"
	report_job_status = "job.border-status"
)

// jobService is the part of service.Service the periodic jobs drive.
type jobService interface {
	Relogin(ctx context.Context) error
	BorderStatus(ctx context.Context, kind idola.Kind, tier int) string
	Save(ctx context.Context) error
}

type jobs struct {
	service  jobService
	presence presence.Publisher
	kind     idola.Kind
	tier     int
	tel      telemetry.API
}

func (j jobs) relog(ctx context.Context) {
	j.tel.ReportDebug("relogging started")
	err := j.service.Relogin(ctx)
	if err != nil {
		j.tel.ReportBroken(report_job_relog, err)
	}
}

func (j jobs) borderStatus(ctx context.Context) {
	status := j.service.BorderStatus(ctx, j.kind, j.tier)
	err := j.presence.Publish(ctx, status)
	if err != nil {
		j.tel.ReportWarning(report_job_status, err)
	}
}

func (j jobs) save(ctx context.Context) {
	err := j.service.Save(ctx)
	if errors.Is(err, service.ErrNoDatabase) {
		return
	}
	if err != nil {
		j.tel.ReportBroken(report_job_save, err)
	}
}

// register schedules every job, a failed run just waits for its next tick.
func (j jobs) register(cron chrono.CronAPI, schedule app.ScheduleConfig) error {
	entries := []struct {
		name string
		spec string
		run  chrono.Job
	}{
		{name: "relog", spec: schedule.Relog, run: j.relog},
		{name: "border_status", spec: schedule.BorderStatus, run: j.borderStatus},
		{name: "save", spec: schedule.Save, run: j.save},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		err := cron.Schedule(e.name, e.spec, e.run)
		if err != nil {
			return err
		}
	}
	return nil
}
