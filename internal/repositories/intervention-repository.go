package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gmao-system/internal/entities"
	db "gmao-system/internal/infrastructure/bd"
	"gmao-system/pkg/types"
)

const (
	interventionTable  = "interventions i"
	interventionFields = "i.id, i.equipment_id, i.title, i.status, i.scheduled_at, i.completed_at, i.technician_history, i.parts_used, i.created_at, i.updated_at"
)

var allowedInterventionFilters = map[string]string{
	"id":           "i.id",
	"equipment_id": "i.equipment_id",
	"status":       "i.status",
	"title":        "i.title",
	"scheduled_at": "i.scheduled_at",
	"completed_at": "i.completed_at",
	"created_at":   "i.created_at",
}

type InterventionRepositoryInterface interface {
	CollectionRepository[entities.Intervention]
	DeleteByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) (int64, error)
}

type InterventionRepository struct {
	storage *pgxpool.Pool
}

func NewInterventionRepository(storage *pgxpool.Pool) InterventionRepositoryInterface {
	return &InterventionRepository{storage: storage}
}

// JSONB колонки pgx разбирает сам через encoding/json.
func scanIntervention(row pgx.Row) (*entities.Intervention, error) {
	var i entities.Intervention
	err := row.Scan(&i.ID, &i.EquipmentID, &i.Title, &i.Status, &i.ScheduledAt, &i.CompletedAt,
		&i.TechnicianHistory, &i.PartsUsed, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InterventionRepository) List(ctx context.Context, filter types.Filter) ([]entities.Intervention, uint64, error) {
	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(interventionTable), filter, allowedInterventionFilters, "i.title")
	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil {
		return nil, 0, mapPgError("count interventions", err)
	}
	if total == 0 {
		return []entities.Intervention{}, 0, nil
	}

	query, args, err := db.ApplyListParams(psql.Select(interventionFields).From(interventionTable), filter, allowedInterventionFilters, "i.title").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса interventions: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError("select interventions", err)
	}
	defer rows.Close()

	list := make([]entities.Intervention, 0)
	for rows.Next() {
		i, err := scanIntervention(rows)
		if err != nil {
			return nil, 0, mapPgError("scan interventions", err)
		}
		list = append(list, *i)
	}
	return list, total, rows.Err()
}

func (r *InterventionRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Intervention, error) {
	query, args, err := psql.Select(interventionFields).From(interventionTable).Where(sq.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	i, err := scanIntervention(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError("find intervention", err)
	}
	return i, nil
}

func (r *InterventionRepository) Create(ctx context.Context, tx pgx.Tx, i entities.Intervention) (uint64, error) {
	query, args, err := psql.Insert("interventions").
		Columns("equipment_id", "title", "status", "scheduled_at", "completed_at", "technician_history", "parts_used", "created_at", "updated_at").
		Values(i.EquipmentID, i.Title, i.Status, i.ScheduledAt, i.CompletedAt, i.TechnicianHistory, i.PartsUsed, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}
	var newID uint64
	if err := getQuerier(r.storage, tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, mapPgError("create intervention", err)
	}
	return newID, nil
}

func (r *InterventionRepository) Update(ctx context.Context, tx pgx.Tx, i entities.Intervention) error {
	builder := psql.Update("interventions").
		Set("equipment_id", i.EquipmentID).
		Set("title", i.Title).
		Set("status", i.Status).
		Set("scheduled_at", i.ScheduledAt).
		Set("completed_at", i.CompletedAt).
		Set("technician_history", i.TechnicianHistory).
		Set("parts_used", i.PartsUsed).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": i.ID})
	return execAffected(ctx, getQuerier(r.storage, tx), "update intervention", builder)
}

func (r *InterventionRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return execAffected(ctx, getQuerier(r.storage, tx), "delete intervention", psql.Delete("interventions").Where(sq.Eq{"id": id}))
}

func (r *InterventionRepository) DeleteByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) (int64, error) {
	query, args, err := psql.Delete("interventions").Where(sq.Eq{"equipment_id": equipmentID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса DeleteByEquipmentID: %w", err)
	}
	tag, err := getQuerier(r.storage, tx).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPgError("delete interventions by equipment", err)
	}
	return tag.RowsAffected(), nil
}
