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
	equipmentTable  = "equipments e"
	equipmentInGroupExpr = "e.id IN (SELECT equipment_id FROM equipment_group_members WHERE group_id = ?)"
	equipmentFields = "e.id, e.name, e.model, e.manufacturer, e.serial_number, e.status, e.health_percentage, e.image_path, e.description, e.building_id, e.service_id, e.location_id, e.created_at, e.updated_at"
)

// allowedEquipmentFilters - белый список для фильтрации и сортировки
var allowedEquipmentFilters = map[string]string{
	"id":                "e.id",
	"name":              "e.name",
	"status":            "e.status",
	"manufacturer":      "e.manufacturer",
	"model":             "e.model",
	"health_percentage": "e.health_percentage",
	"building_id":       "e.building_id",
	"service_id":        "e.service_id",
	"location_id":       "e.location_id",
	"created_at":        "e.created_at",
	"updated_at":        "e.updated_at",
}

type EquipmentRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Equipment, error)
	FindBySerialOrName(ctx context.Context, tx pgx.Tx, serial *string, name string) (*entities.Equipment, error)
	Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, e entities.Equipment) error
	UpdateDescription(ctx context.Context, tx pgx.Tx, id uint64, description *string) error
	UpdateImage(ctx context.Context, tx pgx.Tx, id uint64, imagePath *string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	GetStats(ctx context.Context) (*entities.EquipmentStats, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(
		&e.ID, &e.Name, &e.Model, &e.Manufacturer, &e.SerialNumber,
		&e.Status, &e.HealthPercentage, &e.ImagePath, &e.Description,
		&e.BuildingID, &e.ServiceID, &e.LocationID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) queryList(ctx context.Context, q Querier, builder sq.SelectBuilder) ([]entities.Equipment, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса equipments: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("select equipments", err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, mapPgError("scan equipments", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) GetAll(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	countBuilder := psql.Select("COUNT(*)").From(equipmentTable)
	countBuilder = db.ApplyFilters(countBuilder, filter, allowedEquipmentFilters, "e.name", "e.model", "e.serial_number")
	countBuilder = withLinkFilter(countBuilder, filter, "group_id", equipmentInGroupExpr)

	total, err := countRows(ctx, r.storage, countBuilder)
	if err != nil {
		return nil, 0, mapPgError("count equipments", err)
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	builder := psql.Select(equipmentFields).From(equipmentTable)
	builder = db.ApplyListParams(builder, filter, allowedEquipmentFilters, "e.name", "e.model", "e.serial_number")
	builder = withLinkFilter(builder, filter, "group_id", equipmentInGroupExpr)

	list, err := r.queryList(ctx, r.storage, builder)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *EquipmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	e, err := scanEquipment(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError("find equipment", err)
	}
	return e, nil
}

func (r *EquipmentRepository) FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Equipment, error) {
	if len(ids) == 0 {
		return []entities.Equipment{}, nil
	}
	builder := psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"e.id": ids}).OrderBy("e.id ASC")
	return r.queryList(ctx, getQuerier(r.storage, tx), builder)
}

// FindBySerialOrName ищет по серийному номеру, а без него по точному имени.
func (r *EquipmentRepository) FindBySerialOrName(ctx context.Context, tx pgx.Tx, serial *string, name string) (*entities.Equipment, error) {
	where := sq.Eq{"e.name": name}
	if serial != nil && *serial != "" {
		where = sq.Eq{"e.serial_number": *serial}
	}
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).Where(where).OrderBy("e.id ASC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindBySerialOrName: %w", err)
	}
	e, err := scanEquipment(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError("find equipment by serial", err)
	}
	return e, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	query, args, err := psql.Insert("equipments").
		Columns("name", "model", "manufacturer", "serial_number", "status", "health_percentage",
			"image_path", "description", "building_id", "service_id", "location_id", "created_at", "updated_at").
		Values(e.Name, e.Model, e.Manufacturer, e.SerialNumber, e.Status, e.HealthPercentage,
			e.ImagePath, e.Description, e.BuildingID, e.ServiceID, e.LocationID, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}

	var newID uint64
	if err := getQuerier(r.storage, tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, mapPgError("create equipment", err)
	}
	return newID, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, tx pgx.Tx, e entities.Equipment) error {
	builder := psql.Update("equipments").
		Set("name", e.Name).
		Set("model", e.Model).
		Set("manufacturer", e.Manufacturer).
		Set("serial_number", e.SerialNumber).
		Set("status", e.Status).
		Set("health_percentage", e.HealthPercentage).
		Set("description", e.Description).
		Set("building_id", e.BuildingID).
		Set("service_id", e.ServiceID).
		Set("location_id", e.LocationID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": e.ID})
	return execAffected(ctx, getQuerier(r.storage, tx), "update equipment", builder)
}

func (r *EquipmentRepository) UpdateDescription(ctx context.Context, tx pgx.Tx, id uint64, description *string) error {
	builder := psql.Update("equipments").
		Set("description", description).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	return execAffected(ctx, getQuerier(r.storage, tx), "update equipment description", builder)
}

func (r *EquipmentRepository) UpdateImage(ctx context.Context, tx pgx.Tx, id uint64, imagePath *string) error {
	builder := psql.Update("equipments").
		Set("image_path", imagePath).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	return execAffected(ctx, getQuerier(r.storage, tx), "update equipment image", builder)
}

func (r *EquipmentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return execAffected(ctx, getQuerier(r.storage, tx), "delete equipment", psql.Delete("equipments").Where(sq.Eq{"id": id}))
}

func (r *EquipmentRepository) GetStats(ctx context.Context) (*entities.EquipmentStats, error) {
	stats := &entities.EquipmentStats{ByStatus: make([]entities.EquipmentStatusCount, 0)}

	err := r.storage.QueryRow(ctx, "SELECT COUNT(*), COALESCE(AVG(health_percentage), 0)::float8 FROM equipments").
		Scan(&stats.Total, &stats.AverageHealth)
	if err != nil {
		return nil, mapPgError("equipment stats", err)
	}

	rows, err := r.storage.Query(ctx, "SELECT status, COUNT(*) FROM equipments GROUP BY status ORDER BY status")
	if err != nil {
		return nil, mapPgError("equipment stats by status", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entities.EquipmentStatusCount
		if err := rows.Scan(&item.Status, &item.Count); err != nil {
			return nil, mapPgError("scan equipment stats", err)
		}
		stats.ByStatus = append(stats.ByStatus, item)
	}
	return stats, rows.Err()
}
