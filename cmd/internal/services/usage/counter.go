// Package usage ведёт счётчик посещений (новых сессий расчёта).
// Счётчик монотонный; потеря отдельных инкрементов допустима.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

// VisitsCounter - имя счётчика посещений в таблице usage_counters.
const VisitsCounter = "visits"

// Counter - монотонный счётчик.
type Counter interface {
	Increment(ctx context.Context) (int64, error)
	Value(ctx context.Context) (int64, error)
}

// MemoryCounter хранит значение в памяти процесса (без DATABASE_URL).
type MemoryCounter struct {
	value atomic.Int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

func (c *MemoryCounter) Increment(_ context.Context) (int64, error) {
	return c.value.Add(1), nil
}

func (c *MemoryCounter) Value(_ context.Context) (int64, error) {
	return c.value.Load(), nil
}

// PostgresCounter хранит значение в таблице usage_counters.
type PostgresCounter struct {
	db     *sql.DB
	name   string
	logger *logging.Logger
}

// NewPostgresCounter создает счётчик с именем name. Таблица создаётся миграцией
// 000001_usage_counters.
func NewPostgresCounter(db *sql.DB, name string, logger *logging.Logger) *PostgresCounter {
	return &PostgresCounter{db: db, name: name, logger: logger}
}

const incrementQuery = `
INSERT INTO usage_counters (name, value, updated_at)
VALUES ($1, 1, now())
ON CONFLICT (name) DO UPDATE
SET value = usage_counters.value + 1,
    updated_at = now()
RETURNING value`

const valueQuery = `SELECT value FROM usage_counters WHERE name = $1`

func (c *PostgresCounter) Increment(ctx context.Context) (int64, error) {
	var v int64
	if err := c.db.QueryRowContext(ctx, incrementQuery, c.name).Scan(&v); err != nil {
		c.logger.WithField("method", "Increment").Errorf("Ошибка увеличения счётчика %s: %v", c.name, err)
		return 0, fmt.Errorf("не удалось увеличить счётчик %s: %w", c.name, err)
	}
	return v, nil
}

func (c *PostgresCounter) Value(ctx context.Context) (int64, error) {
	var v int64
	err := c.db.QueryRowContext(ctx, valueQuery, c.name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("не удалось прочитать счётчик %s: %w", c.name, err)
	}
	return v, nil
}
