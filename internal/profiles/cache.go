package profiles

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"idola-backend/internal/components/assert"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/profiles/db"

	"github.com/antzucaro/matchr"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("idola.profiles")

const DefaultCapacity = 10000

const (
	report_cache_persist = "cache.persist"
	report_cache_load    = "cache.load"
)

// Cache remembers the profile id of every display name seen upstream, up to a
// fixed capacity. The least recently used name is evicted first.
type Cache struct {
	entries  *lru.Cache[string, int64]
	capacity int
	tel      telemetry.API
}

func NewCache(capacity int, tel telemetry.API) (*Cache, error) {
	assert.Positive(capacity)
	assert.NotNil(tel)

	entries, err := lru.New[string, int64](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{
		entries:  entries,
		capacity: capacity,
		tel:      telemetry.NewScopedAPI("profiles", tel),
	}, nil
}

// Put inserts or refreshes name as the most recently used entry.
func (c *Cache) Put(name string, profileId int64) {
	if name == "" {
		return
	}
	c.entries.Add(name, profileId)
}

// Get is an exact match, a hit refreshes the entry.
func (c *Cache) Get(name string) (int64, bool) {
	return c.entries.Get(name)
}

// Keys lists names from least to most recently used.
func (c *Cache) Keys() []string {
	return c.entries.Keys()
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Capacity() int {
	return c.capacity
}

type Suggestion struct {
	Name       string
	ProfileID  int64
	Similarity float64
}

// Suggest lists cached names close to name, it never touches recency.
func (c *Cache) Suggest(name string, limit int) []Suggestion {
	query := strings.ToLower(name)
	var out []Suggestion
	for _, key := range c.entries.Keys() {
		profileId, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		similarity := matchr.JaroWinkler(query, strings.ToLower(key), false)
		if similarity < 0.75 {
			continue
		}
		out = append(out, Suggestion{Name: key, ProfileID: profileId, Similarity: similarity})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Persist replaces the stored snapshot with the current contents, oldest
// entry first.
func (c *Cache) Persist(ctx context.Context, database *sql.DB) error {
	ctx, span := tracer.Start(ctx, "cache:persist")
	defer span.End()

	keys := c.entries.Keys()
	err := db.InTx(ctx, database, func(qry *db.Queries) error {
		err := qry.ClearProfileCache(ctx)
		if err != nil {
			return err
		}
		for position, key := range keys {
			profileId, ok := c.entries.Peek(key)
			if !ok {
				continue
			}
			err = qry.InsertCachedProfile(ctx, db.InsertCachedProfileParams{
				Position:  int64(position),
				Name:      key,
				ProfileID: profileId,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.tel.ReportBroken(report_cache_persist, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("entries", len(keys)))
	c.tel.ReportCount("cache.persisted", int64(len(keys)))
	return nil
}

// Load reinserts a stored snapshot oldest first so relative recency survives
// the round trip.
func (c *Cache) Load(ctx context.Context, database *sql.DB) error {
	ctx, span := tracer.Start(ctx, "cache:load")
	defer span.End()

	rows, err := db.New(database).GetCachedProfiles(ctx)
	if err != nil {
		c.tel.ReportBroken(report_cache_load, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	for _, row := range rows {
		c.entries.Add(row.Name, row.ProfileID)
	}

	c.tel.ReportCount("cache.loaded", int64(len(rows)))
	return nil
}
