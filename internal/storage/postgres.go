package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresBackend struct {
	db    *sql.DB
	table string
	log   *logrus.Logger
}

// NewPostgresBackend creates the entries table if needed and returns a
// backend over db.
func NewPostgresBackend(ctx context.Context, db *sql.DB, logger *logrus.Logger) (Backend, error) {
	b := &postgresBackend{
		db:    db,
		table: pq.QuoteIdentifier(TableName),
		log:   logger,
	}
	query := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            storage_key TEXT PRIMARY KEY,
            value BYTEA NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`, b.table)
	if _, err := db.ExecContext(ctx, query); err != nil {
		logger.Errorf("Storage: failed to create %s table: %v", TableName, err)
		return nil, fmt.Errorf("could not create storage table: %w", err)
	}
	logger.Infof("Storage: postgres backend ready (table %s)", TableName)
	return b, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (p *postgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	return p.get(ctx, p.db, key)
}

func (p *postgresBackend) get(ctx context.Context, q queryer, key string) ([]byte, bool, error) {
	var value []byte
	query := fmt.Sprintf(`SELECT value FROM %s WHERE storage_key = $1`, p.table)
	err := q.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		p.log.Errorf("Storage: failed to read key %s: %v", key, err)
		return nil, false, fmt.Errorf("could not read storage key: %w", err)
	}
	return value, true, nil
}

func (p *postgresBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return p.put(ctx, p.db, key, value)
}

func (p *postgresBackend) put(ctx context.Context, q queryer, key string, value []byte) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (storage_key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (storage_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, p.table)
	if _, err := q.ExecContext(ctx, query, key, value); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			p.log.Errorf("Storage: postgres error %s writing key %s: %s", pqErr.Code, key, pqErr.Message)
		} else {
			p.log.Errorf("Storage: failed to write key %s: %v", key, err)
		}
		return fmt.Errorf("could not write storage key: %w", err)
	}
	return nil
}

func (p *postgresBackend) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return p.remove(ctx, p.db, key)
}

func (p *postgresBackend) remove(ctx context.Context, q queryer, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE storage_key = $1`, p.table)
	if _, err := q.ExecContext(ctx, query, key); err != nil {
		p.log.Errorf("Storage: failed to delete key %s: %v", key, err)
		return fmt.Errorf("could not delete storage key: %w", err)
	}
	return nil
}

// Update serializes writers of the same key with a transaction-scoped
// advisory lock, which also covers keys that do not exist yet.
func (p *postgresBackend) Update(ctx context.Context, key string, fn UpdateFunc) (err error) {
	if err := validateKey(key); err != nil {
		return err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		p.log.Errorf("Storage: failed to begin transaction: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				p.log.Errorf("Storage: failed to rollback transaction: %v", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			p.log.Errorf("Storage: failed to commit transaction: %v", cErr)
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("could not lock storage key: %w", err)
	}
	current, found, err := p.get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, remove, err := fn(current, found)
	if err != nil {
		return err
	}
	if remove {
		return p.remove(ctx, tx, key)
	}
	return p.put(ctx, tx, key, next)
}
