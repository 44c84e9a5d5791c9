package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gmao-system/pkg/utils"
)

// Relation описывает таблицу связей "участник - группа". Имена таблиц и колонок
// берутся только отсюда, произвольные строки в SQL не попадают.
type Relation struct {
	Name         string
	Table        string
	MemberColumn string
	GroupColumn  string
}

var (
	EquipmentGroups    = Relation{Name: "equipment_groups", Table: "equipment_group_members", MemberColumn: "equipment_id", GroupColumn: "group_id"}
	DocumentGroups     = Relation{Name: "document_groups", Table: "document_group_members", MemberColumn: "document_id", GroupColumn: "group_id"}
	PartGroups         = Relation{Name: "part_groups", Table: "part_group_members", MemberColumn: "part_id", GroupColumn: "group_id"}
	DocumentEquipments = Relation{Name: "document_equipments", Table: "document_equipments", MemberColumn: "document_id", GroupColumn: "equipment_id"}
	PartEquipments     = Relation{Name: "part_equipments", Table: "part_equipments", MemberColumn: "part_id", GroupColumn: "equipment_id"}
)

type JunctionRepositoryInterface interface {
	Relation() Relation
	GetGroupsFor(ctx context.Context, tx pgx.Tx, memberID uint64) ([]uint64, error)
	GetMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64) ([]uint64, error)
	// ReplaceGroupsFor удаляет все связи участника и вставляет новые. Атомарность
	// обеспечивает вызывающий, передавая tx.
	ReplaceGroupsFor(ctx context.Context, tx pgx.Tx, memberID uint64, groupIDs []uint64) error
	ReplaceMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64, memberIDs []uint64) error
	RemoveMember(ctx context.Context, tx pgx.Tx, memberID uint64) (int64, error)
	RemoveGroup(ctx context.Context, tx pgx.Tx, groupID uint64) (int64, error)
	RemoveLink(ctx context.Context, tx pgx.Tx, memberID, groupID uint64) error
	CountMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64, excludingMember uint64) (int, error)
}

// Junctions - набор всех таблиц связей.
type Junctions struct {
	EquipmentGroups    JunctionRepositoryInterface
	DocumentGroups     JunctionRepositoryInterface
	PartGroups         JunctionRepositoryInterface
	DocumentEquipments JunctionRepositoryInterface
	PartEquipments     JunctionRepositoryInterface
}

func NewJunctions(storage *pgxpool.Pool) Junctions {
	return Junctions{
		EquipmentGroups:    NewJunctionRepository(storage, EquipmentGroups),
		DocumentGroups:     NewJunctionRepository(storage, DocumentGroups),
		PartGroups:         NewJunctionRepository(storage, PartGroups),
		DocumentEquipments: NewJunctionRepository(storage, DocumentEquipments),
		PartEquipments:     NewJunctionRepository(storage, PartEquipments),
	}
}

type junctionRepository struct {
	storage  *pgxpool.Pool
	relation Relation
}

func NewJunctionRepository(storage *pgxpool.Pool, relation Relation) JunctionRepositoryInterface {
	return &junctionRepository{storage: storage, relation: relation}
}

func (r *junctionRepository) Relation() Relation { return r.relation }

func (r *junctionRepository) selectColumn(ctx context.Context, tx pgx.Tx, column string, where sq.Eq) ([]uint64, error) {
	query, args, err := psql.Select(column).
		From(r.relation.Table).
		Where(where).
		OrderBy(column + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса %s: %w", r.relation.Name, err)
	}
	rows, err := getQuerier(r.storage, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("select "+r.relation.Name, err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, mapPgError("scan "+r.relation.Name, err)
	}
	return ids, nil
}

func (r *junctionRepository) GetGroupsFor(ctx context.Context, tx pgx.Tx, memberID uint64) ([]uint64, error) {
	return r.selectColumn(ctx, tx, r.relation.GroupColumn, sq.Eq{r.relation.MemberColumn: memberID})
}

func (r *junctionRepository) GetMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64) ([]uint64, error) {
	return r.selectColumn(ctx, tx, r.relation.MemberColumn, sq.Eq{r.relation.GroupColumn: groupID})
}

func (r *junctionRepository) deleteWhere(ctx context.Context, tx pgx.Tx, where sq.Eq) (int64, error) {
	query, args, err := psql.Delete(r.relation.Table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки DELETE %s: %w", r.relation.Name, err)
	}
	tag, err := getQuerier(r.storage, tx).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPgError("delete "+r.relation.Name, err)
	}
	return tag.RowsAffected(), nil
}

// insertPairs вставляет пары (member, group) одним запросом.
func (r *junctionRepository) insertPairs(ctx context.Context, tx pgx.Tx, pairs [][2]uint64) error {
	if len(pairs) == 0 {
		return nil
	}
	builder := psql.Insert(r.relation.Table).Columns(r.relation.MemberColumn, r.relation.GroupColumn)
	for _, p := range pairs {
		builder = builder.Values(p[0], p[1])
	}
	query, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки INSERT %s: %w", r.relation.Name, err)
	}
	if _, err := getQuerier(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return mapPgError("insert "+r.relation.Name, err)
	}
	return nil
}

func (r *junctionRepository) ReplaceGroupsFor(ctx context.Context, tx pgx.Tx, memberID uint64, groupIDs []uint64) error {
	if _, err := r.deleteWhere(ctx, tx, sq.Eq{r.relation.MemberColumn: memberID}); err != nil {
		return err
	}
	ids := utils.UniqueIDs(groupIDs)
	pairs := make([][2]uint64, 0, len(ids))
	for _, groupID := range ids {
		pairs = append(pairs, [2]uint64{memberID, groupID})
	}
	return r.insertPairs(ctx, tx, pairs)
}

func (r *junctionRepository) ReplaceMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64, memberIDs []uint64) error {
	if _, err := r.deleteWhere(ctx, tx, sq.Eq{r.relation.GroupColumn: groupID}); err != nil {
		return err
	}
	ids := utils.UniqueIDs(memberIDs)
	pairs := make([][2]uint64, 0, len(ids))
	for _, memberID := range ids {
		pairs = append(pairs, [2]uint64{memberID, groupID})
	}
	return r.insertPairs(ctx, tx, pairs)
}

func (r *junctionRepository) RemoveMember(ctx context.Context, tx pgx.Tx, memberID uint64) (int64, error) {
	return r.deleteWhere(ctx, tx, sq.Eq{r.relation.MemberColumn: memberID})
}

func (r *junctionRepository) RemoveGroup(ctx context.Context, tx pgx.Tx, groupID uint64) (int64, error) {
	return r.deleteWhere(ctx, tx, sq.Eq{r.relation.GroupColumn: groupID})
}

func (r *junctionRepository) RemoveLink(ctx context.Context, tx pgx.Tx, memberID, groupID uint64) error {
	_, err := r.deleteWhere(ctx, tx, sq.Eq{r.relation.MemberColumn: memberID, r.relation.GroupColumn: groupID})
	return err
}

func (r *junctionRepository) CountMembersOf(ctx context.Context, tx pgx.Tx, groupID uint64, excludingMember uint64) (int, error) {
	builder := psql.Select("COUNT(*)").From(r.relation.Table).Where(sq.Eq{r.relation.GroupColumn: groupID})
	if excludingMember != 0 {
		builder = builder.Where(sq.NotEq{r.relation.MemberColumn: excludingMember})
	}
	total, err := countRows(ctx, getQuerier(r.storage, tx), builder)
	if err != nil {
		return 0, mapPgError("count "+r.relation.Name, err)
	}
	return int(total), nil
}
