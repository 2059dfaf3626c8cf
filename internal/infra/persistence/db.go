package persistence

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Config struct {
	WriteDSN          string
	ReadDSN           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	// SlowQuery logs statements slower than this at warn level. Zero
	// disables slow query logging.
	SlowQuery time.Duration
	Logger    *logrus.Logger
}

// DB is the gorm handle shared by the repositories. Reads go to replicas
// unless the context is inside a transaction or asks for the primary.
type DB struct {
	Conn *gorm.DB
}

var _ repository.Store = (*DB)(nil)

type txKey struct{}

func New(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.WriteDSN == "" {
		return nil, errors.New("db: WriteDSN is required")
	}

	writeDSN := normalizeDSN(cfg.WriteDSN)
	primary := dialector(writeDSN)
	gdb, err := gorm.Open(primary, &gorm.Config{Logger: queryLogger(cfg)})
	if err != nil {
		return nil, err
	}

	if replicas := replicaDialectors(cfg.ReadDSN, writeDSN); len(replicas) > 0 {
		resolver := dbresolver.Register(dbresolver.Config{
			Sources:  []gorm.Dialector{primary},
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(int(cfg.MaxConns)).
			SetMaxIdleConns(int(cfg.MinConns)).
			SetConnMaxLifetime(cfg.MaxConnLifetime).
			SetConnMaxIdleTime(cfg.MaxConnIdleTime)
		if err := gdb.Use(resolver); err != nil {
			return nil, err
		}
	}

	if err := tunePool(gdb, cfg); err != nil {
		return nil, err
	}
	return &DB{Conn: gdb}, nil
}

func dialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}

// replicaDialectors returns nothing when the read DSNs all point at the
// primary, so a single-node setup skips the resolver entirely.
func replicaDialectors(readDSN, writeDSN string) []gorm.Dialector {
	dsns := splitDSNs(readDSN)
	for i := range dsns {
		dsns[i] = normalizeDSN(dsns[i])
	}
	if sameDSNs(dsns, writeDSN) {
		return nil
	}
	out := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		out = append(out, dialector(dsn))
	}
	return out
}

func tunePool(gdb *gorm.DB, cfg Config) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		sqlDB.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}
	return nil
}

func queryLogger(cfg Config) gormlogger.Interface {
	if cfg.Logger == nil {
		return gormlogger.Discard
	}
	level := gormlogger.Warn
	if cfg.SlowQuery <= 0 {
		level = gormlogger.Error
	}
	return gormlogger.New(cfg.Logger, gormlogger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// Open wraps an already configured dialector. Tests use it with sqlmock.
func Open(d gorm.Dialector) (*DB, error) {
	gdb, err := gorm.Open(d, &gorm.Config{SkipDefaultTransaction: true, Logger: gormlogger.Discard})
	if err != nil {
		return nil, err
	}
	return &DB{Conn: gdb}, nil
}

func (db *DB) Close() {
	if db == nil || db.Conn == nil {
		return
	}
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	if db == nil || db.Conn == nil {
		return errors.New("db: gorm connection is not initialized")
	}
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Write(ctx context.Context) *gorm.DB {
	return db.getConn(ctx)
}

func (db *DB) Read(ctx context.Context) *gorm.DB {
	if db == nil || db.Conn == nil {
		return nil
	}
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	if repository.PrefersPrimary(ctx) {
		return db.Conn.WithContext(ctx).Clauses(dbresolver.Write)
	}
	return db.Conn.WithContext(ctx).Clauses(dbresolver.Read)
}

// WithTx runs fn in one transaction. When ctx carries an acting user, it is
// published to the capture triggers as the transaction-local audit.actor_id.
// Inside an enclosing WithTx, fn runs under a savepoint of the outer
// transaction, so the outer rollback also discards it.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db == nil || db.Conn == nil {
		return errors.New("db: gorm connection is not initialized")
	}
	base := db.Conn.WithContext(ctx)
	if outer, ok := ctx.Value(txKey{}).(*gorm.DB); ok && outer != nil {
		base = outer.WithContext(ctx)
	}
	return base.Transaction(func(tx *gorm.DB) error {
		if id, ok := actor.FromContext(ctx); ok {
			if err := tx.Exec(setActorSQL, strconv.FormatInt(id, 10)).Error; err != nil {
				return err
			}
		}
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

const setActorSQL = "SELECT set_config('audit.actor_id', ?, true)"

func (db *DB) getConn(ctx context.Context) *gorm.DB {
	if db == nil || db.Conn == nil {
		return nil
	}
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.Conn.WithContext(ctx)
}

func splitDSNs(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sameDSNs(readDSNs []string, writeDSN string) bool {
	if len(readDSNs) == 0 {
		return true
	}
	for _, dsn := range readDSNs {
		if dsn != writeDSN {
			return false
		}
	}
	return true
}

func normalizeDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.Scheme == "" {
		return dsn
	}
	q := parsed.Query()
	if q.Get("statement_cache_capacity") == "" {
		q.Set("statement_cache_capacity", "0")
	}
	if q.Get("default_query_exec_mode") == "" {
		q.Set("default_query_exec_mode", "simple_protocol")
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
