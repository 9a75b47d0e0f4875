package db

import (
	"context"
	"fmt"
	"fxconvert/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// CreatePoolAndPing opens the conversions store pool and fails fast when postgres is unreachable.
func CreatePoolAndPing(ctx context.Context, cfg config.DbServer) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool for %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	logrus.WithFields(logrus.Fields{
		"host":            cfg.Host,
		"db":              cfg.Name,
		"max_conns":       poolCfg.MaxConns,
		"connect_timeout": poolCfg.ConnConfig.ConnectTimeout,
	}).Info("postgres pool ready")
	return pool, nil
}

func poolConfig(cfg config.DbServer) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	return poolCfg, nil
}
