package profiles

import (
	"context"
	"database/sql"
	"sync"

	"idola-backend/internal/components/assert"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/profiles/db"

	"go.opentelemetry.io/otel/codes"
)

const (
	report_registry_persist = "registry.persist"
	report_registry_load    = "registry.load"
)

// Registry links an external user id (a chat account) to a game profile.
type Registry struct {
	mutex   sync.Mutex
	entries map[string]int64
	tel     telemetry.API
}

func NewRegistry(tel telemetry.API) *Registry {
	assert.NotNil(tel)
	return &Registry{
		entries: map[string]int64{},
		tel:     telemetry.NewScopedAPI("profiles", tel),
	}
}

func (r *Registry) Register(externalId string, profileId int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries[externalId] = profileId
}

func (r *Registry) Lookup(externalId string) (int64, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	profileId, ok := r.entries[externalId]
	return profileId, ok
}

func (r *Registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.entries)
}

func (r *Registry) snapshot() map[string]int64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make(map[string]int64, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Persist upserts every registration.
func (r *Registry) Persist(ctx context.Context, database *sql.DB) error {
	ctx, span := tracer.Start(ctx, "registry:persist")
	defer span.End()

	entries := r.snapshot()
	err := db.InTx(ctx, database, func(qry *db.Queries) error {
		for externalId, profileId := range entries {
			err := qry.PutExternalProfile(ctx, db.PutExternalProfileParams{
				ExternalID: externalId,
				ProfileID:  profileId,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.tel.ReportBroken(report_registry_persist, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *Registry) Load(ctx context.Context, database *sql.DB) error {
	ctx, span := tracer.Start(ctx, "registry:load")
	defer span.End()

	rows, err := db.New(database).GetExternalProfiles(ctx)
	if err != nil {
		r.tel.ReportBroken(report_registry_load, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, row := range rows {
		r.entries[row.ExternalID] = row.ProfileID
	}
	return nil
}
