package db

import (
	"context"
	"fmt"
	"time"

	"stark_bridge/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN               string
	MaxConns          int32
	HealthCheckPeriod time.Duration
}

// Pool: pgxpool с транзакциями read committed.
type Pool struct {
	pool *pgxpool.Pool
}

// Open парсит dsn, поднимает пул и пингует его.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Pool{pool: pool}, nil
}

func (p *Pool) Querier() Querier { return p.pool }

func (p *Pool) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Pool) Close() { p.pool.Close() }

// InTx: ошибка fn или паника, rollback, иначе commit. Ошибка commit возвращается наружу.
func (p *Pool) InTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) (err error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		switch r := recover(); {
		case r != nil:
			logger.Error("tx panic: %v", r)
			_ = tx.Rollback(ctx)
			panic(r)
		case err != nil:
			_ = tx.Rollback(ctx)
		default:
			if cerr := tx.Commit(ctx); cerr != nil {
				err = fmt.Errorf("commit: %w", cerr)
			}
		}
	}()

	return fn(ctx, tx)
}
