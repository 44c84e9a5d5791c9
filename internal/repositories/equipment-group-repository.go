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
	equipmentGroupTable  = "equipment_groups g"
	equipmentGroupFields = "g.id, g.name, g.description, g.image_path, g.created_at, g.updated_at"
)

var allowedEquipmentGroupFilters = map[string]string{
	"id":         "g.id",
	"name":       "g.name",
	"created_at": "g.created_at",
	"updated_at": "g.updated_at",
}

type EquipmentGroupRepositoryInterface interface {
	CollectionRepository[entities.EquipmentGroup]
	FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.EquipmentGroup, error)
	// GetDescriptions - все непустые описания групп в системе.
	GetDescriptions(ctx context.Context, tx pgx.Tx) ([]string, error)
}

type EquipmentGroupRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentGroupRepository(storage *pgxpool.Pool) EquipmentGroupRepositoryInterface {
	return &EquipmentGroupRepository{storage: storage}
}

func scanEquipmentGroup(row pgx.Row) (*entities.EquipmentGroup, error) {
	var g entities.EquipmentGroup
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.ImagePath, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *EquipmentGroupRepository) queryList(ctx context.Context, q Querier, builder sq.SelectBuilder) ([]entities.EquipmentGroup, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса equipment_groups: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("select equipment_groups", err)
	}
	defer rows.Close()

	list := make([]entities.EquipmentGroup, 0)
	for rows.Next() {
		g, err := scanEquipmentGroup(rows)
		if err != nil {
			return nil, mapPgError("scan equipment_groups", err)
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

func (r *EquipmentGroupRepository) List(ctx context.Context, filter types.Filter) ([]entities.EquipmentGroup, uint64, error) {
	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(equipmentGroupTable), filter, allowedEquipmentGroupFilters, "g.name", "g.description")
	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil {
		return nil, 0, mapPgError("count equipment_groups", err)
	}
	if total == 0 {
		return []entities.EquipmentGroup{}, 0, nil
	}

	builder := db.ApplyListParams(psql.Select(equipmentGroupFields).From(equipmentGroupTable), filter, allowedEquipmentGroupFilters, "g.name", "g.description")
	list, err := r.queryList(ctx, r.storage, builder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *EquipmentGroupRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentGroup, error) {
	query, args, err := psql.Select(equipmentGroupFields).From(equipmentGroupTable).Where(sq.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	g, err := scanEquipmentGroup(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError("find equipment_group", err)
	}
	return g, nil
}

func (r *EquipmentGroupRepository) FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.EquipmentGroup, error) {
	if len(ids) == 0 {
		return []entities.EquipmentGroup{}, nil
	}
	builder := psql.Select(equipmentGroupFields).From(equipmentGroupTable).Where(sq.Eq{"g.id": ids}).OrderBy("g.id ASC")
	return r.queryList(ctx, getQuerier(r.storage, tx), builder)
}

func (r *EquipmentGroupRepository) GetDescriptions(ctx context.Context, tx pgx.Tx) ([]string, error) {
	rows, err := getQuerier(r.storage, tx).Query(ctx,
		"SELECT DISTINCT description FROM equipment_groups WHERE description IS NOT NULL AND btrim(description) <> ''")
	if err != nil {
		return nil, mapPgError("select group descriptions", err)
	}
	defer rows.Close()

	res := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, mapPgError("scan group descriptions", err)
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r *EquipmentGroupRepository) Create(ctx context.Context, tx pgx.Tx, g entities.EquipmentGroup) (uint64, error) {
	query, args, err := psql.Insert("equipment_groups").
		Columns("name", "description", "image_path", "created_at", "updated_at").
		Values(g.Name, g.Description, g.ImagePath, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}
	var newID uint64
	if err := getQuerier(r.storage, tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, mapPgError("create equipment_group", err)
	}
	return newID, nil
}

func (r *EquipmentGroupRepository) Update(ctx context.Context, tx pgx.Tx, g entities.EquipmentGroup) error {
	builder := psql.Update("equipment_groups").
		Set("name", g.Name).
		Set("description", g.Description).
		Set("image_path", g.ImagePath).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": g.ID})
	return execAffected(ctx, getQuerier(r.storage, tx), "update equipment_group", builder)
}

func (r *EquipmentGroupRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return execAffected(ctx, getQuerier(r.storage, tx), "delete equipment_group", psql.Delete("equipment_groups").Where(sq.Eq{"id": id}))
}
