package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/repository"
)

const (
	uniqueViolation  = "23505"
	readinessTimeout = 2 * time.Second
)

var errClosed = errors.New("postgres storage is closed")

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var connectPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Options tunes the connection pool. Zero values keep the pgxpool defaults.
type Options struct {
	MaxConns        int32
	MaxConnIdleTime time.Duration
}

func (o Options) apply(cfg *pgxpool.Config) {
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = o.MaxConnIdleTime
	}
}

// Storage keeps the florist portal tables in PostgreSQL and hands out the
// repositories that work on them.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type shopRepository struct {
	storage *Storage
}

var _ repository.Store = (*Storage)(nil)

// New connects to dsn and migrates the schema.
func New(ctx context.Context, dsn string, opts Options, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	opts.apply(cfg)

	pool, err := connectPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	s := &Storage{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("postgres storage ready",
		slog.String("database", cfg.ConnConfig.Database),
		slog.Int("max_conns", int(cfg.MaxConns)),
	)
	return s, nil
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	s.pool = nil
}

func (s *Storage) Users() repository.UserRepository   { return &userRepository{storage: s} }
func (s *Storage) Orders() repository.OrderRepository { return &orderRepository{storage: s} }
func (s *Storage) Shops() repository.ShopRepository   { return &shopRepository{storage: s} }

// schema is applied in order on every start; each statement is idempotent.
var schema = []struct {
	name string
	stmt string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL DEFAULT '',
        email TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL,
        phone TEXT NOT NULL DEFAULT '',
        address TEXT NOT NULL DEFAULT '',
        zone_ranges TEXT[] NOT NULL DEFAULT '{}',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`},
	{"orders", `CREATE TABLE IF NOT EXISTS orders (
        id BIGSERIAL PRIMARY KEY,
        order_number TEXT UNIQUE,
        source_platform TEXT NOT NULL DEFAULT '',
        source_order_id TEXT,
        source_order_number TEXT NOT NULL DEFAULT '',
        source_order_name TEXT NOT NULL DEFAULT '',
        shop TEXT NOT NULL DEFAULT '',
        received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        order_date TIMESTAMPTZ,
        delivery_date TIMESTAMPTZ,
        delivery_option TEXT NOT NULL DEFAULT '',
        line_items JSONB NOT NULL DEFAULT '[]',
        add_ons JSONB NOT NULL DEFAULT '[]',
        add_ons_summary TEXT NOT NULL DEFAULT '',
        customer JSONB NOT NULL DEFAULT '{}',
        shipping_address JSONB NOT NULL DEFAULT '{}',
        zone TEXT NOT NULL DEFAULT '',
        partner_id BIGINT REFERENCES users(id),
        assigned_at TIMESTAMPTZ,
        status TEXT NOT NULL,
        total_price TEXT NOT NULL DEFAULT '',
        currency TEXT NOT NULL DEFAULT '',
        tracking_number TEXT NOT NULL DEFAULT '',
        tracking_url TEXT NOT NULL DEFAULT '',
        created_by_role TEXT NOT NULL DEFAULT '',
        created_by_email TEXT NOT NULL DEFAULT '',
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_by_role TEXT NOT NULL DEFAULT '',
        updated_by_email TEXT NOT NULL DEFAULT '',
        update_count INTEGER NOT NULL DEFAULT 0,
        last_updated_fields TEXT[] NOT NULL DEFAULT '{}',
        cancelled_at TIMESTAMPTZ,
        cancelled_by_role TEXT NOT NULL DEFAULT '',
        cancelled_by_email TEXT NOT NULL DEFAULT '',
        cancel_reason TEXT NOT NULL DEFAULT '',
        raw JSONB,
        UNIQUE (source_platform, source_order_id)
    )`},
	{"shop_credentials", `CREATE TABLE IF NOT EXISTS shop_credentials (
        shop TEXT PRIMARY KEY,
        access_token TEXT NOT NULL,
        scopes TEXT NOT NULL DEFAULT '',
        installed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`},
	{"idx_orders_partner", `CREATE INDEX IF NOT EXISTS idx_orders_partner ON orders(partner_id, delivery_date)`},
	{"idx_orders_delivery", `CREATE INDEX IF NOT EXISTS idx_orders_delivery ON orders(delivery_date, received_at DESC)`},
}

func (s *Storage) migrate(ctx context.Context) error {
	for _, step := range schema {
		if _, err := s.pool.Exec(ctx, step.stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", step.name, err)
		}
	}
	return nil
}

// WithinTransaction runs fn in a transaction that commits when fn returns nil.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", slog.Any("error", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// HealthCheck pings the database; it backs the readiness probe.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return errClosed
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domainErrors.ErrAlreadyExists
	}
	return err
}
