package db

import (
	"context"
	"testing"
	"time"

	"fxconvert/internal/config"

	"github.com/stretchr/testify/require"
)

func testDbServer() config.DbServer {
	return config.DbServer{
		Host: "127.0.0.1",
		Port: "1",
		User: "fx",
		Pass: "fx",
		Name: "fxconvert",
	}
}

func TestPoolConfig_AppliesMaxConnsAndConnectTimeout(t *testing.T) {
	cfg := testDbServer()
	cfg.MaxConns = 4
	cfg.ConnectTimeout = 750 * time.Millisecond

	poolCfg, err := poolConfig(cfg)

	require.NoError(t, err)
	require.Equal(t, int32(4), poolCfg.MaxConns)
	require.Equal(t, 750*time.Millisecond, poolCfg.ConnConfig.ConnectTimeout)
	require.Equal(t, "127.0.0.1", poolCfg.ConnConfig.Host)
	require.Equal(t, "fxconvert", poolCfg.ConnConfig.Database)
}

func TestPoolConfig_KeepsConnectionStringDefaults(t *testing.T) {
	poolCfg, err := poolConfig(testDbServer())

	require.NoError(t, err)
	require.Equal(t, int32(10), poolCfg.MaxConns)
}

func TestCreatePoolAndPing_UnreachableFailsWithinConnectTimeout(t *testing.T) {
	cfg := testDbServer()
	cfg.ConnectTimeout = 500 * time.Millisecond

	started := time.Now()
	pool, err := CreatePoolAndPing(context.Background(), cfg)

	require.Error(t, err)
	require.Nil(t, pool)
	require.Contains(t, err.Error(), "failed to ping 127.0.0.1:1/fxconvert")
	require.Less(t, time.Since(started), 5*time.Second)
}
