package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// CollectionRepository - общий контракт для плоских коллекций (документы, запчасти, группы, вмешательства).
type CollectionRepository[E any] interface {
	List(ctx context.Context, filter types.Filter) ([]E, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*E, error)
	Create(ctx context.Context, tx pgx.Tx, entity E) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, entity E) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

// mapPgError переводит ошибки pgx в ошибки приложения.
func mapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
		case "23503", "23514":
			return apperrors.NewInvalidInputError("%s: %s", op, pgErr.Message)
		}
	}
	return apperrors.NewBackendError(op, err)
}

// countRows считает строки по уже отфильтрованному запросу.
func countRows(ctx context.Context, q Querier, builder sq.SelectBuilder) (uint64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки COUNT запроса: %w", err)
	}
	var total uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// execAffected выполняет запрос и возвращает ErrNotFound, если строк не затронуто.
func execAffected(ctx context.Context, q Querier, op string, builder sq.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса %s: %w", op, err)
	}
	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(op, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func toUint64s(values []int64) []uint64 {
	res := make([]uint64, 0, len(values))
	for _, v := range values {
		res = append(res, uint64(v))
	}
	return res
}

func collectIDs(rows pgx.Rows) ([]uint64, error) {
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// withLinkFilter - фильтр по таблице связей, например filter[group_id]=N.
// Нечисловое значение даёт пустую выборку.
func withLinkFilter(builder sq.SelectBuilder, filter types.Filter, key, expr string) sq.SelectBuilder {
	raw, ok := filter.Filter[key]
	if !ok {
		return builder
	}
	id, err := strconv.ParseUint(fmt.Sprint(raw), 10, 64)
	if err != nil {
		return builder.Where(sq.Expr("FALSE"))
	}
	return builder.Where(sq.Expr(expr, id))
}
