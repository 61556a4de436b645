package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/config"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestApplicationsMigrationDefaults(t *testing.T) {
	body, err := fs.ReadFile(migrationFiles, "migrations/000002_applications.up.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.Contains(t, sql, "DEFAULT gen_random_uuid()")
	assert.Contains(t, sql, "DEFAULT 'not_started'")
	assert.Contains(t, sql, "deadline     DATE")
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")

	client, err := ConnectRedis(context.Background(), &config.RedisConfig{Host: host, Port: port}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestConnectRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")
	mr.Close()

	_, err := ConnectRedis(context.Background(), &config.RedisConfig{Host: host, Port: port}, zap.NewNop())
	assert.Error(t, err)
}
