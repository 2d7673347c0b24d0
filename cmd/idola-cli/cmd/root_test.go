package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/identity"
	"idola-backend/internal/profiles"
	profilesdb "idola-backend/internal/profiles/db"
	"idola-backend/internal/scrapers/idola"
	configlibsql "idola-backend/lib/configutil/libsql"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	require.Nil(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestOfflineCommandSavesProfiles(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.Nil(t, os.MkdirAll(dataDir, 0777))
	for _, name := range identity.DefaultFiles {
		writeFile(t, filepath.Join(dataDir, name), "10101,Rappy\n")
	}
	dbFile := filepath.Join(dir, "state", "idola.db")
	configPath := filepath.Join(dir, "config.json5")
	writeFile(t, configPath, `{
		idola: {
			device_id: "device",
			device_token: "device-token",
			token_key: "token",
			uuid: "uuid",
			app_version: "1.0.0",
			api_url: "http://127.0.0.1:1",
			init_url: "http://127.0.0.1:1",
		},
		database: {file: "`+filepath.ToSlash(dbFile)+`"},
		identity: {dir: "`+filepath.ToSlash(dataDir)+`"},
	}`)

	rootCmd.SetArgs([]string{"--config", configPath, "lookup", "rappy"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Nil(t, err)

	require.NotNil(t, opened)
	require.Equal(t, idola.StateUninitialized, opened.Client.State())
	opened.Cache.Put("alice", 42)

	require.Nil(t, closeApp())
	require.Nil(t, opened)

	database, err := configlibsql.Struct{File: dbFile}.OpenDB(profilesdb.Schema)
	require.Nil(t, err)
	defer database.Close()

	restored, err := profiles.NewCache(10, telemetry.SlogAPI{})
	require.Nil(t, err)
	require.Nil(t, restored.Load(context.Background(), database))
	id, ok := restored.Get("alice")
	require.True(t, ok)
	require.Equal(t, int64(42), id)
}
