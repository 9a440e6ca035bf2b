package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"contribgraph/config"
	"contribgraph/logger"
)

// DB represents a database connection backing the shared contributions cache
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
	// Prepared statements cache
	stmtCache struct {
		sync.RWMutex
		statements map[string]*sqlx.Stmt
	}
	janitor sync.WaitGroup
}

// safeLogInfo safely logs info messages, falling back to standard log if logger is not initialized
func safeLogInfo(msg string, fields ...zap.Field) {
	if logger.GetLogger() != nil {
		logger.Info(msg, fields...)
	} else {
		// Fallback to standard log with constant format string
		log.Printf("%s", msg)
	}
}

// New creates a new database connection
func New(cfg config.PostgresConfig) (*DB, error) {
	safeLogInfo("Connecting to database",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database))
	conn, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	// Configure connection pool with defaults
	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 25
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	database := newDB(conn)

	safeLogInfo("Database connection established",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return database, nil
}

func newDB(conn *sqlx.DB) *DB {
	database := &DB{
		conn: conn,
		now:  time.Now,
	}
	database.stmtCache.statements = make(map[string]*sqlx.Stmt)
	return database
}

// getStmt returns a prepared statement from cache or creates a new one
func (db *DB) getStmt(ctx context.Context, query string) (*sqlx.Stmt, error) {
	db.stmtCache.RLock()
	stmt, exists := db.stmtCache.statements[query]
	db.stmtCache.RUnlock()

	if exists {
		return stmt, nil
	}

	db.stmtCache.Lock()
	defer db.stmtCache.Unlock()

	// Double-check after acquiring write lock
	if stmt, exists = db.stmtCache.statements[query]; exists {
		return stmt, nil
	}

	stmt, err := db.conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	db.stmtCache.statements[query] = stmt
	return stmt, nil
}

// Close stops the janitor, closes cached statements and the connection
func (db *DB) Close() error {
	db.janitor.Wait()

	// Close all prepared statements
	db.stmtCache.Lock()
	for _, stmt := range db.stmtCache.statements {
		stmt.Close()
	}
	db.stmtCache.statements = make(map[string]*sqlx.Stmt)
	db.stmtCache.Unlock()

	// Close the database connection
	return db.conn.Close()
}
