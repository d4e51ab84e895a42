package postgres

import (
	"context"
	"database/sql"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

type DB struct {
	Host         string        `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port         string        `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	Username     string        `yaml:"user" envconfig:"DB_USER" default:"postgres"`
	Password     string        `yaml:"password" envconfig:"DB_PASSWORD" json:"-"`
	NameDB       string        `yaml:"dbname" envconfig:"DB_NAME" default:"circulation"`
	SSLMode      string        `yaml:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns     int32         `yaml:"maxConns" envconfig:"DB_MAX_CONNS" default:"20"`
	ConnTimeout  time.Duration `yaml:"connTimeout" envconfig:"DB_CONN_TIMEOUT" default:"5s"`
	SkipMigrates bool          `yaml:"skipMigrates" envconfig:"DB_SKIP_MIGRATES"`
}

func (db *DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.Username, db.Password),
		Host:     net.JoinHostPort(db.Host, db.Port),
		Path:     db.NameDB,
		RawQuery: "sslmode=" + db.SSLMode,
	}
	return u.String()
}

// NewPostgresDB opens a pgx pool and applies the embedded goose migrations.
func NewPostgresDB(ctx context.Context, cfg *DB, migrations fs.FS) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.ParseConfig")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connCtx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.NewWithConfig")
	}
	if err = pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping")
	}

	if cfg.SkipMigrates || migrations == nil {
		return pool, nil
	}
	if err = migrate(cfg.DSN(), migrations); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func migrate(dsn string, migrations fs.FS) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return errors.Wrap(err, "sql.Open")
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err = goose.Up(db, "."); err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}
