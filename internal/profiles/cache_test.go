package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/profiles/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t testing.TB) *sql.DB {
	database, err := sql.Open("sqlite", ":memory:")
	require.Nil(t, err)
	// one connection so every query sees the same in-memory database
	database.SetMaxOpenConns(1)
	_, err = database.Exec(db.Schema)
	require.Nil(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCacheEviction(t *testing.T) {
	cache, err := NewCache(3, telemetry.SlogAPI{})
	require.Nil(t, err)

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	// touching "a" makes "b" the least recently used
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Put("d", 4)
	require.Equal(t, 3, cache.Len())

	_, ok = cache.Get("b")
	require.False(t, ok)
	for _, name := range []string{"a", "c", "d"} {
		_, ok := cache.Get(name)
		require.True(t, ok, name)
	}
}

func TestCachePutRefreshes(t *testing.T) {
	cache, err := NewCache(2, telemetry.SlogAPI{})
	require.Nil(t, err)

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("a", 10)
	cache.Put("c", 3)

	id, ok := cache.Get("a")
	require.True(t, ok)
	require.Equal(t, int64(10), id)
	_, ok = cache.Get("b")
	require.False(t, ok)

	cache.Put("", 5)
	require.Equal(t, 2, cache.Len())
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	cache, err := NewCache(100, telemetry.SlogAPI{})
	require.Nil(t, err)
	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("player-%d", i), int64(i))
	}
	cache.Get("player-3")
	cache.Put("player-0", 100)

	require.Nil(t, cache.Persist(ctx, database))
	// a second persist replaces the snapshot instead of duplicating it
	require.Nil(t, cache.Persist(ctx, database))

	restored, err := NewCache(100, telemetry.SlogAPI{})
	require.Nil(t, err)
	require.Nil(t, restored.Load(ctx, database))

	if diff := cmp.Diff(cache.Keys(), restored.Keys()); diff != "" {
		t.Fatalf("recency order changed (-want +got):\n%s", diff)
	}
	keys := restored.Keys()
	require.Equal(t, "player-0", keys[len(keys)-1])
	require.Equal(t, "player-3", keys[len(keys)-2])

	id, ok := restored.Get("player-0")
	require.True(t, ok)
	require.Equal(t, int64(100), id)
}

func TestCacheLoadIntoSmallerCache(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	cache, err := NewCache(10, telemetry.SlogAPI{})
	require.Nil(t, err)
	for i := 0; i < 5; i++ {
		cache.Put(fmt.Sprintf("player-%d", i), int64(i))
	}
	require.Nil(t, cache.Persist(ctx, database))

	small, err := NewCache(2, telemetry.SlogAPI{})
	require.Nil(t, err)
	require.Nil(t, small.Load(ctx, database))
	require.Equal(t, []string{"player-3", "player-4"}, small.Keys())
}

func TestCacheSuggest(t *testing.T) {
	cache, err := NewCache(10, telemetry.SlogAPI{})
	require.Nil(t, err)
	cache.Put("Rappy", 1)
	cache.Put("Rappie", 2)
	cache.Put("Zzzzzz", 3)

	keysBefore := cache.Keys()
	suggestions := cache.Suggest("rappy", 5)
	require.NotEmpty(t, suggestions)
	require.Equal(t, "Rappy", suggestions[0].Name)
	for _, s := range suggestions {
		require.NotEqual(t, "Zzzzzz", s.Name)
	}
	require.Equal(t, keysBefore, cache.Keys())
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	registry := NewRegistry(telemetry.SlogAPI{})
	registry.Register("discord-1", 10)
	registry.Register("discord-2", 20)
	registry.Register("discord-1", 11)

	id, ok := registry.Lookup("discord-1")
	require.True(t, ok)
	require.Equal(t, int64(11), id)
	_, ok = registry.Lookup("discord-3")
	require.False(t, ok)

	require.Nil(t, registry.Persist(ctx, database))

	restored := NewRegistry(telemetry.SlogAPI{})
	require.Nil(t, restored.Load(ctx, database))
	require.Equal(t, 2, restored.Len())
	id, ok = restored.Lookup("discord-2")
	require.True(t, ok)
	require.Equal(t, int64(20), id)

	stored, err := db.New(database).GetExternalProfile(ctx, "discord-1")
	require.Nil(t, err)
	require.Equal(t, int64(11), stored)
}
