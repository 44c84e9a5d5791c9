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
	partTable  = "parts p"
	partFields = `p.id, p.name, p.reference, p.quantity, p.unit_price::float8, p.created_at, p.updated_at,
		ARRAY(SELECT pe.equipment_id FROM part_equipments pe WHERE pe.part_id = p.id ORDER BY pe.equipment_id) AS equipment_ids,
		ARRAY(SELECT pg.group_id FROM part_group_members pg WHERE pg.part_id = p.id ORDER BY pg.group_id) AS group_ids`
)

var allowedPartFilters = map[string]string{
	"id":         "p.id",
	"name":       "p.name",
	"reference":  "p.reference",
	"quantity":   "p.quantity",
	"unit_price": "p.unit_price",
	"created_at": "p.created_at",
	"updated_at": "p.updated_at",
}

type PartRepositoryInterface interface {
	CollectionRepository[entities.Part]
	FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Part, error)
}

type PartRepository struct {
	storage *pgxpool.Pool
}

func NewPartRepository(storage *pgxpool.Pool) PartRepositoryInterface {
	return &PartRepository{storage: storage}
}

func scanPart(row pgx.Row) (*entities.Part, error) {
	var p entities.Part
	var equipmentIDs, groupIDs []int64
	if err := row.Scan(&p.ID, &p.Name, &p.Reference, &p.Quantity, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt, &equipmentIDs, &groupIDs); err != nil {
		return nil, err
	}
	p.EquipmentIDs = toUint64s(equipmentIDs)
	p.GroupIDs = toUint64s(groupIDs)
	return &p, nil
}

func (r *PartRepository) queryList(ctx context.Context, q Querier, builder sq.SelectBuilder) ([]entities.Part, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса parts: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("select parts", err)
	}
	defer rows.Close()

	list := make([]entities.Part, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, mapPgError("scan parts", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func partLinkFilters(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	builder = withLinkFilter(builder, filter, "equipment_id", "p.id IN (SELECT part_id FROM part_equipments WHERE equipment_id = ?)")
	return withLinkFilter(builder, filter, "group_id", "p.id IN (SELECT part_id FROM part_group_members WHERE group_id = ?)")
}

func (r *PartRepository) List(ctx context.Context, filter types.Filter) ([]entities.Part, uint64, error) {
	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(partTable), filter, allowedPartFilters, "p.name", "p.reference")
	total, err := countRows(ctx, r.storage, partLinkFilters(countBuilder, filter))
	if err != nil {
		return nil, 0, mapPgError("count parts", err)
	}
	if total == 0 {
		return []entities.Part{}, 0, nil
	}

	builder := db.ApplyListParams(psql.Select(partFields).From(partTable), filter, allowedPartFilters, "p.name", "p.reference")
	list, err := r.queryList(ctx, r.storage, partLinkFilters(builder, filter))
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *PartRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Part, error) {
	query, args, err := psql.Select(partFields).From(partTable).Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	p, err := scanPart(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError("find part", err)
	}
	return p, nil
}

func (r *PartRepository) FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Part, error) {
	if len(ids) == 0 {
		return []entities.Part{}, nil
	}
	builder := psql.Select(partFields).From(partTable).Where(sq.Eq{"p.id": ids}).OrderBy("p.id ASC")
	return r.queryList(ctx, getQuerier(r.storage, tx), builder)
}

func (r *PartRepository) Create(ctx context.Context, tx pgx.Tx, p entities.Part) (uint64, error) {
	query, args, err := psql.Insert("parts").
		Columns("name", "reference", "quantity", "unit_price", "created_at", "updated_at").
		Values(p.Name, p.Reference, p.Quantity, p.UnitPrice, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}
	var newID uint64
	if err := getQuerier(r.storage, tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, mapPgError("create part", err)
	}
	return newID, nil
}

func (r *PartRepository) Update(ctx context.Context, tx pgx.Tx, p entities.Part) error {
	builder := psql.Update("parts").
		Set("name", p.Name).
		Set("reference", p.Reference).
		Set("quantity", p.Quantity).
		Set("unit_price", p.UnitPrice).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": p.ID})
	return execAffected(ctx, getQuerier(r.storage, tx), "update part", builder)
}

func (r *PartRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return execAffected(ctx, getQuerier(r.storage, tx), "delete part", psql.Delete("parts").Where(sq.Eq{"id": id}))
}
