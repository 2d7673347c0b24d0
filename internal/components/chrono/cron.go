package chrono

import (
	"context"
	"fmt"
	"time"

	"idola-backend/internal/components/telemetry"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("idola.chrono")

// Job is a unit of periodic work, ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// CronAPI schedules named jobs on cron specs, "@every 1m" style specs are
// accepted too.
//
// note: fault injection point
type CronAPI interface {
	Schedule(name, spec string, job Job) error
}

// StandardCron runs jobs with robfig/cron in a fixed location. A job still
// running when its next tick arrives skips that tick.
type StandardCron struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewStandardCron(tel telemetry.API, location *time.Location) StandardCron {
	logger := cronLogger{tel: telemetry.NewScopedAPI("cron", tel)}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithLocation(location),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	c.Start()

	ctx, cancel := context.WithCancel(context.Background())
	return StandardCron{cron: c, ctx: ctx, cancel: cancel}
}

func (s StandardCron) Schedule(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, span := tracer.Start(s.ctx, "job "+name)
		defer span.End()
		span.SetAttributes(attribute.String("spec", spec))
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// Stop cancels the context of running jobs and waits for them to return.
func (s StandardCron) Stop() {
	done := s.cron.Stop()
	s.cancel()
	<-done.Done()
}

// cronLogger adapts telemetry.API to cron.Logger.
type cronLogger struct {
	tel telemetry.API
}

// pairs turns cron's alternating key/value list into "key=value" params.
func pairs(keysAndValues []any) []any {
	out := make([]any, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, fmt.Sprintf("%v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	return out
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{fmt.Errorf("%s: %w", msg, err)}, pairs(keysAndValues)...)
	l.tel.ReportBroken("job", params...)
}
