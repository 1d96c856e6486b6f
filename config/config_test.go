package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	req := require.New(t)
	cfg, err := Parse([]byte("http:\n  addr: \":8080\"\nsession:\n  secret: s\n"))
	req.NoError(err)

	req.Equal("memory", cfg.Store.Driver)
	req.Equal("meeting-service", cfg.Logging.Service)
	req.Equal(15*time.Second, cfg.HTTP.ReadTimeout)
	req.True(*cfg.Meeting.AllowSelfYield)
	req.True(*cfg.Meeting.AllowAgendaReorder)
	req.False(cfg.Meeting.HideQueueIdentities)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://x")
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("MEETING_ALLOW_SELF_YIELD", "false")

	cfg, err := Parse([]byte("http:\n  addr: \":8080\"\nsession:\n  secret: file\n"))
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Store.Driver)
	require.Equal(t, "postgres://x", cfg.Postgres.DSN)
	require.Equal(t, "from-env", cfg.Session.Secret)
	require.False(t, *cfg.Meeting.AllowSelfYield)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("session:\n  secret: s\n"))
	require.ErrorContains(t, err, "http.addr")

	_, err = Parse([]byte("http:\n  addr: \":1\"\nsession:\n  secret: s\nstore:\n  driver: redis\n"))
	require.ErrorContains(t, err, "store.driver")

	_, err = Parse([]byte("http:\n  addr: \":1\"\nsession:\n  secret: s\nstore:\n  driver: postgres\n"))
	require.ErrorContains(t, err, "postgres.dsn")
}

func TestLoadConfig_ShippedFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv("CONFIG_PATH", filepath.Join(wd, "config.yaml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "badger", cfg.Store.Driver)
	require.Equal(t, ":9090", cfg.GRPC.Addr)
	require.Equal(t, 168*time.Hour, cfg.Session.TTL)
}
