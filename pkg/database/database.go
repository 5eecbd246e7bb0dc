// Package database owns the PostgreSQL pool and ties it to the lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

const (
	pingInitialDelay = 250 * time.Millisecond
	pingMaxDelay     = 2 * time.Second
)

// System manages the connection pool.
type System interface {
	Connection() *sql.DB
	// Start pings the database during startup, retrying until the connect
	// timeout, and closes the pool on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether a startup ping succeeded.
	Ready() bool
	// Check pings the pool and returns ErrNotReady when it is unreachable.
	Check(ctx context.Context) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New opens the pool. sql.Open only validates the DSN; no connection is
// made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Check(ctx context.Context) error {
	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		attempts, err := d.waitForPing(ctx)
		if err != nil {
			d.logger.Error("database unreachable", "attempts", attempts, "error", err)
			return
		}

		d.ready.Store(true)
		d.logger.Info("database connection established", "attempts", attempts)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

// waitForPing pings until success or ctx ends, doubling the delay between
// attempts up to pingMaxDelay.
func (d *database) waitForPing(ctx context.Context) (int, error) {
	delay := pingInitialDelay
	for attempt := 1; ; attempt++ {
		err := d.Check(ctx)
		if err == nil {
			return attempt, nil
		}

		d.logger.Debug("database ping failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return attempt, err
		case <-time.After(delay):
		}
		delay = min(delay*2, pingMaxDelay)
	}
}
