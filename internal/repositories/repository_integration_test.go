package repositories

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmao-system/internal/entities"
	"gmao-system/pkg/database/postgresql"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/types"
	"gmao-system/pkg/utils"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД, если задан TEST_DATABASE_URL, и применяет миграции.
// Без переменной интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		ctx := context.Background()
		pool, err := postgresql.ConnectDB(ctx, dsn)
		if err != nil {
			log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
		}
		if err := postgresql.Migrate(ctx, pool); err != nil {
			log.Fatalf("Не удалось применить миграции: %v", err)
		}
		testPool = pool
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	cleanupTables(t, testPool)
	return testPool
}

// cleanupTables очищает таблицы для изоляции тестов.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE TABLE interventions, equipment_history, part_equipments, part_group_members,
		parts, document_equipments, document_group_members, documents, equipment_group_members, equipment_groups, equipments
		RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

func TestJunctionRepository_Integration(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()

	equipments := NewEquipmentRepository(pool)
	groups := NewEquipmentGroupRepository(pool)
	junctions := NewJunctions(pool)

	eqID, err := equipments.Create(ctx, nil, entities.Equipment{Name: "Насос P-1", Status: "operational", HealthPercentage: 90})
	require.NoError(t, err)
	g1, err := groups.Create(ctx, nil, entities.EquipmentGroup{Name: "Насосы", Description: utils.ToPtr("Центробежные насосы")})
	require.NoError(t, err)
	g2, err := groups.Create(ctx, nil, entities.EquipmentGroup{Name: "Цех 2"})
	require.NoError(t, err)

	err = NewTxManager(pool).RunInTransaction(ctx, func(tx pgx.Tx) error {
		return junctions.EquipmentGroups.ReplaceGroupsFor(ctx, tx, eqID, []uint64{g2, g1, g2})
	})
	require.NoError(t, err)

	got, err := junctions.EquipmentGroups.GetGroupsFor(ctx, nil, eqID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{g1, g2}, got)

	members, err := junctions.EquipmentGroups.GetMembersOf(ctx, nil, g1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{eqID}, members)

	count, err := junctions.EquipmentGroups.CountMembersOf(ctx, nil, g1, eqID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, junctions.EquipmentGroups.ReplaceGroupsFor(ctx, nil, eqID, nil))
	got, err = junctions.EquipmentGroups.GetGroupsFor(ctx, nil, eqID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocumentRepository_Integration_Projection(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()

	equipments := NewEquipmentRepository(pool)
	groups := NewEquipmentGroupRepository(pool)
	documents := NewDocumentRepository(pool)
	junctions := NewJunctions(pool)

	eqID, err := equipments.Create(ctx, nil, entities.Equipment{Name: "Компрессор", Status: "maintenance", HealthPercentage: 40})
	require.NoError(t, err)
	groupID, err := groups.Create(ctx, nil, entities.EquipmentGroup{Name: "Компрессоры"})
	require.NoError(t, err)
	docID, err := documents.Create(ctx, nil, entities.Document{Title: "Паспорт"})
	require.NoError(t, err)

	require.NoError(t, junctions.DocumentEquipments.ReplaceGroupsFor(ctx, nil, docID, []uint64{eqID}))
	require.NoError(t, junctions.DocumentGroups.ReplaceGroupsFor(ctx, nil, docID, []uint64{groupID}))

	doc, err := documents.FindByID(ctx, nil, docID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{eqID}, doc.EquipmentIDs)
	assert.Equal(t, []uint64{groupID}, doc.GroupIDs)

	list, total, err := documents.List(ctx, types.Filter{Filter: map[string]interface{}{"group_id": groupID}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, documents.Delete(ctx, nil, docID))
	_, err = documents.FindByID(ctx, nil, docID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
