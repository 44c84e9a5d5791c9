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
	documentTable  = "documents d"
	documentFields = `d.id, d.title, d.category, d.file_path, d.created_at, d.updated_at,
		ARRAY(SELECT de.equipment_id FROM document_equipments de WHERE de.document_id = d.id ORDER BY de.equipment_id) AS equipment_ids,
		ARRAY(SELECT dg.group_id FROM document_group_members dg WHERE dg.document_id = d.id ORDER BY dg.group_id) AS group_ids`
)

var allowedDocumentFilters = map[string]string{
	"id":         "d.id",
	"title":      "d.title",
	"category":   "d.category",
	"created_at": "d.created_at",
	"updated_at": "d.updated_at",
}

type DocumentRepositoryInterface interface {
	CollectionRepository[entities.Document]
	FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Document, error)
}

type DocumentRepository struct {
	storage *pgxpool.Pool
}

func NewDocumentRepository(storage *pgxpool.Pool) DocumentRepositoryInterface {
	return &DocumentRepository{storage: storage}
}

func scanDocument(row pgx.Row) (*entities.Document, error) {
	var d entities.Document
	var equipmentIDs, groupIDs []int64
	if err := row.Scan(&d.ID, &d.Title, &d.Category, &d.FilePath, &d.CreatedAt, &d.UpdatedAt, &equipmentIDs, &groupIDs); err != nil {
		return nil, err
	}
	d.EquipmentIDs = toUint64s(equipmentIDs)
	d.GroupIDs = toUint64s(groupIDs)
	return &d, nil
}

func (r *DocumentRepository) queryList(ctx context.Context, q Querier, builder sq.SelectBuilder) ([]entities.Document, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса documents: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("select documents", err)
	}
	defer rows.Close()

	list := make([]entities.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, mapPgError("scan documents", err)
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

func documentLinkFilters(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	builder = withLinkFilter(builder, filter, "equipment_id", "d.id IN (SELECT document_id FROM document_equipments WHERE equipment_id = ?)")
	return withLinkFilter(builder, filter, "group_id", "d.id IN (SELECT document_id FROM document_group_members WHERE group_id = ?)")
}

func (r *DocumentRepository) List(ctx context.Context, filter types.Filter) ([]entities.Document, uint64, error) {
	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(documentTable), filter, allowedDocumentFilters, "d.title", "d.category")
	total, err := countRows(ctx, r.storage, documentLinkFilters(countBuilder, filter))
	if err != nil {
		return nil, 0, mapPgError("count documents", err)
	}
	if total == 0 {
		return []entities.Document{}, 0, nil
	}

	builder := db.ApplyListParams(psql.Select(documentFields).From(documentTable), filter, allowedDocumentFilters, "d.title", "d.category")
	list, err := r.queryList(ctx, r.storage, documentLinkFilters(builder, filter))
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Document, error) {
	query, args, err := psql.Select(documentFields).From(documentTable).Where(sq.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	d, err := scanDocument(getQuerier(r.storage, tx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError("find document", err)
	}
	return d, nil
}

// FindByIDs возвращает документы в порядке возрастания ID; отсутствующие пропускаются.
func (r *DocumentRepository) FindByIDs(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.Document, error) {
	if len(ids) == 0 {
		return []entities.Document{}, nil
	}
	builder := psql.Select(documentFields).From(documentTable).Where(sq.Eq{"d.id": ids}).OrderBy("d.id ASC")
	return r.queryList(ctx, getQuerier(r.storage, tx), builder)
}

// Create сохраняет только строку документа; связи пишет сервис через Junctions.
func (r *DocumentRepository) Create(ctx context.Context, tx pgx.Tx, d entities.Document) (uint64, error) {
	query, args, err := psql.Insert("documents").
		Columns("title", "category", "file_path", "created_at", "updated_at").
		Values(d.Title, d.Category, d.FilePath, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}
	var newID uint64
	if err := getQuerier(r.storage, tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, mapPgError("create document", err)
	}
	return newID, nil
}

func (r *DocumentRepository) Update(ctx context.Context, tx pgx.Tx, d entities.Document) error {
	builder := psql.Update("documents").
		Set("title", d.Title).
		Set("category", d.Category).
		Set("file_path", d.FilePath).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": d.ID})
	return execAffected(ctx, getQuerier(r.storage, tx), "update document", builder)
}

func (r *DocumentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return execAffected(ctx, getQuerier(r.storage, tx), "delete document", psql.Delete("documents").Where(sq.Eq{"id": id}))
}
