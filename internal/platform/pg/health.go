package pg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WaitOptions определяет, как долго и как часто ждать БД при старте.
type WaitOptions struct {
	// Timeout - общий бюджет ожидания
	Timeout time.Duration
	// InitialInterval - начальная задержка между попытками
	InitialInterval time.Duration
	// MaxInterval - верхняя граница задержки (интервал удваивается)
	MaxInterval time.Duration
	// PingTimeout - таймаут одной попытки
	PingTimeout time.Duration
}

// DefaultWaitOptions возвращает опции ожидания по умолчанию.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		Timeout:         30 * time.Second,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		PingTimeout:     3 * time.Second,
	}
}

// WaitForDB ожидает доступности PostgreSQL с экспоненциальной задержкой.
// Возвращает последнюю ошибку подключения, если бюджет ожидания исчерпан.
func WaitForDB(ctx context.Context, log *slog.Logger, dsn string, opts WaitOptions) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	interval := opts.InitialInterval
	for attempt := 1; ; attempt++ {
		err := pingDatabase(ctx, dsn, opts.PingTimeout)
		if err == nil {
			return nil
		}
		log.Warn("database not ready", slog.Int("attempt", attempt), slog.Any("err", err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("database not available after %d attempts: %w", attempt, err)
		case <-time.After(interval):
		}
		interval = nextInterval(interval, opts.MaxInterval)
	}
}

// Ping проверяет живость пула: ping и простой запрос.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	var result int
	if err := pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return err
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result: got %d, want 1", result)
	}
	return nil
}

// pingDatabase выполняет пинг БД через временный пул.
func pingDatabase(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	return pool.Ping(ctx)
}

func nextInterval(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}
