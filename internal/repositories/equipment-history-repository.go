package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gmao-system/internal/entities"
)

const equipmentHistoryFields = "id, equipment_id, field_name, old_value, new_value, changed_by, changed_at"

type EquipmentHistoryRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, entries []entities.EquipmentHistory) error
	FindByEquipmentID(ctx context.Context, equipmentID uint64, limit, offset uint64) ([]entities.EquipmentHistory, uint64, error)
	DeleteByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) (int64, error)
}

type EquipmentHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentHistoryRepository(storage *pgxpool.Pool) EquipmentHistoryRepositoryInterface {
	return &EquipmentHistoryRepository{storage: storage}
}

func (r *EquipmentHistoryRepository) Create(ctx context.Context, tx pgx.Tx, entries []entities.EquipmentHistory) error {
	if len(entries) == 0 {
		return nil
	}
	builder := psql.Insert("equipment_history").Columns("equipment_id", "field_name", "old_value", "new_value", "changed_by", "changed_at")
	for _, e := range entries {
		builder = builder.Values(e.EquipmentID, e.FieldName, e.OldValue, e.NewValue, e.ChangedBy, sq.Expr("NOW()"))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса истории: %w", err)
	}
	if _, err := getQuerier(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return mapPgError("create equipment_history", err)
	}
	return nil
}

// FindByEquipmentID - история от новых записей к старым.
func (r *EquipmentHistoryRepository) FindByEquipmentID(ctx context.Context, equipmentID uint64, limit, offset uint64) ([]entities.EquipmentHistory, uint64, error) {
	total, err := countRows(ctx, r.storage, psql.Select("COUNT(*)").From("equipment_history").Where(sq.Eq{"equipment_id": equipmentID}))
	if err != nil {
		return nil, 0, mapPgError("count equipment_history", err)
	}
	if total == 0 {
		return []entities.EquipmentHistory{}, 0, nil
	}

	builder := psql.Select(equipmentHistoryFields).
		From("equipment_history").
		Where(sq.Eq{"equipment_id": equipmentID}).
		OrderBy("changed_at DESC", "id DESC").
		Offset(offset)
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса истории: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError("select equipment_history", err)
	}
	defer rows.Close()

	list := make([]entities.EquipmentHistory, 0)
	for rows.Next() {
		var h entities.EquipmentHistory
		if err := rows.Scan(&h.ID, &h.EquipmentID, &h.FieldName, &h.OldValue, &h.NewValue, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, 0, mapPgError("scan equipment_history", err)
		}
		list = append(list, h)
	}
	return list, total, rows.Err()
}

func (r *EquipmentHistoryRepository) DeleteByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) (int64, error) {
	query, args, err := psql.Delete("equipment_history").Where(sq.Eq{"equipment_id": equipmentID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса удаления истории: %w", err)
	}
	tag, err := getQuerier(r.storage, tx).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPgError("delete equipment_history", err)
	}
	return tag.RowsAffected(), nil
}
