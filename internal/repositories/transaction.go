package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TxManagerInterface interface {
	RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) TxManagerInterface {
	return &TxManager{pool: pool}
}

// errTxControl помечает сбои самой транзакции (begin/commit), в отличие от ошибок fn.
var errTxControl = errors.New("ошибка управления транзакцией")

// RunInTransaction выполняет fn в одной транзакции READ COMMITTED.
// Ошибка из fn возвращается без обёртки, чтобы сервисы проверяли её через errors.Is.
// Откат при панике выполняет pgx.BeginTxFunc.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var fnErr error
	err := pgx.BeginTxFunc(ctx, m.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errTxControl, err)
	}
	return nil
}
