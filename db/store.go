package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adlio/schema"
	"github.com/eisenwinter/veluxidp/config"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"
)

//go:embed migrations
var migrations embed.FS

var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("the requested entry was not found")
	// ErrAlreadyExists indicates the entity already exists within the store
	ErrAlreadyExists = errors.New("this entity already exists")
	// ErrAlreadyRedeemed indicates a single use record has already been consumed
	ErrAlreadyRedeemed = errors.New("this entity has already been redeemed")
)

// DataStore is the sql backed record store (sqlite, mysql, postgres)
type DataStore struct {
	log     *zap.Logger
	db      *sqlx.DB
	builder sq.StatementBuilderType
	migrate func() error
}

func (d *DataStore) Close() {
	d.db.Close()
}

// EnsureUsable applies all pending migrations
func (d *DataStore) EnsureUsable() error {
	if d.migrate != nil {
		return d.migrate()
	}
	return nil
}

func (d *DataStore) exists(
	ctx context.Context,
	tx *sqlx.Tx,
	table string,
	pred interface{},
) (bool, error) {
	var result bool
	q := d.builder.Select("1").Prefix("SELECT EXISTS (").From(table).Where(pred).Suffix(")")
	if tx != nil {
		q = q.RunWith(tx)
	} else {
		q = q.RunWith(d.db)
	}
	err := q.ScanContext(ctx, &result)
	if err != nil {
		return false, err
	}
	return result, nil
}

func (d *DataStore) getStatement(
	ctx context.Context,
	dest interface{},
	statement sq.SelectBuilder,
) error {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return err
	}
	return d.db.GetContext(ctx, dest, q, a...)
}

func (d *DataStore) selectStatement(
	ctx context.Context,
	dest interface{},
	statement sq.SelectBuilder,
) error {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return err
	}
	return d.db.SelectContext(ctx, dest, q, a...)
}

type sqlizer interface {
	ToSql() (string, []interface{}, error)
}

// execStatement runs insert, update and delete builders
func (d *DataStore) execStatement(
	ctx context.Context,
	statement sqlizer,
	tx *sqlx.Tx,
) (sql.Result, error) {
	q, a, err := statement.ToSql()
	if err != nil {
		d.log.Error("Unable to construct sql", zap.Error(err))
		return nil, err
	}
	if tx != nil {
		return tx.ExecContext(ctx, q, a...)
	}
	return d.db.ExecContext(ctx, q, a...)
}

func (d *DataStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			d.log.Error("unable to rollback transaction", zap.Error(rerr))
		}
		return err
	}
	return tx.Commit()
}

// dialect bundles everything that differs between the sql backends
type dialect struct {
	driver      string
	placeholder sq.PlaceholderFormat
	schema      schema.Dialect
	migrations  string
}

var (
	mysqlDialect    = dialect{"mysql", sq.Question, schema.MySQL, "migrations/mysql/*.sql"}
	postgresDialect = dialect{"pgx", sq.Dollar, schema.Postgres, "migrations/pg/*.sql"}
	sqliteDialect   = dialect{"sqlite3", sq.Question, schema.SQLite, "migrations/sqlite/*.sql"}
)

// open connects to the database, migrations run on a separate connection
// opened with migrationDSN if it differs from dsn
func open(logger *zap.Logger, d dialect, dsn string, migrationDSN string) (*DataStore, error) {
	conn, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		logger.Error("Could not open database", zap.String("driver", d.driver), zap.Error(err))
		return nil, err
	}
	store := &DataStore{
		log:     logger,
		db:      conn,
		builder: sq.StatementBuilder.PlaceholderFormat(d.placeholder),
	}
	store.migrate = func() error {
		mig, err := schema.FSMigrations(migrations, d.migrations)
		if err != nil {
			return err
		}
		target := conn.DB
		if migrationDSN != dsn {
			migdb, err := sqlx.Open(d.driver, migrationDSN)
			if err != nil {
				logger.Error("Could not open migration connection", zap.Error(err))
				return err
			}
			defer migdb.Close()
			target = migdb.DB
		}
		logger.Debug("Applying migrations", zap.String("driver", d.driver), zap.Int("count", len(mig)))
		return schema.NewMigrator(schema.WithDialect(d.schema)).Apply(target, mig)
	}
	return store, nil
}

func withParam(dsn string, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

func NewMysqlStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	return open(logger, mysqlDialect, cfg.DSN, withParam(cfg.DSN, "multiStatements=true"))
}

func NewPostgresStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	return open(logger, postgresDialect, cfg.DSN, cfg.DSN)
}

func NewSqliteStore(logger *zap.Logger, cfg *config.DatabaseConfiguration) (*DataStore, error) {
	if err := ensureSqliteDir(logger, cfg.DSN); err != nil {
		return nil, err
	}
	store, err := open(logger, sqliteDialect, cfg.DSN, cfg.DSN)
	if err != nil {
		return nil, err
	}
	// :memory: databases only live as long as their connection
	if strings.Contains(cfg.DSN, ":memory:") {
		store.db.SetMaxOpenConns(1)
	}
	return store, nil
}

// ensureSqliteDir creates the directory of a file backed sqlite database
func ensureSqliteDir(logger *zap.Logger, dsn string) error {
	path := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")
	if !strings.ContainsRune(path, os.PathSeparator) {
		return nil
	}
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		return nil
	}
	logger.Warn("Trying to create directory", zap.String("directory", dir))
	if err := os.MkdirAll(dir, 0750); err != nil {
		logger.Error("Could not create database directory", zap.Error(err))
		return err
	}
	return nil
}
