package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/pkg/constants"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/types"
)

func TestDocumentService_CRUDWithLinks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewDocumentService(env.documents, fakeTxManager{}, env.membership, env.files, env.cache, zap.NewNop())
	a := env.addEquipment("a", nil)
	b := env.addEquipment("b", nil)
	g := env.addGroup("g", nil)

	created, err := svc.Add(ctx, dto.CreateDocumentDTO{
		Title:        "Manual",
		FilePath:     strPtr("/uploads/documents/manual.pdf"),
		EquipmentIDs: []uint64{b, a, a},
		GroupIDs:     []uint64{g},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{a, b}, created.EquipmentIDs)
	assert.Equal(t, []uint64{g}, created.GroupIDs)

	onlyA := []uint64{a}
	updated, err := svc.Update(ctx, created.ID, dto.UpdateDocumentDTO{Title: null.StringFrom("Manual v2"), EquipmentIDs: &onlyA})
	require.NoError(t, err)
	assert.Equal(t, "Manual v2", updated.Title)
	assert.Equal(t, []uint64{a}, updated.EquipmentIDs)
	assert.Equal(t, []uint64{g}, updated.GroupIDs, "группы не переданы и не меняются")

	list, total, err := svc.Refetch(ctx, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{"/uploads/documents/manual.pdf"}, env.files.deleted)
	_, err = svc.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDocumentService_UnknownEquipmentRejected(t *testing.T) {
	env := newTestEnv()
	svc := NewDocumentService(env.documents, fakeTxManager{}, env.membership, env.files, env.cache, zap.NewNop())

	_, err := svc.Add(context.Background(), dto.CreateDocumentDTO{Title: "Manual", EquipmentIDs: []uint64{77}})
	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestGroupService_MembersOnCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewGroupService(env.groups, fakeTxManager{}, env.membership, env.files, env.cache, zap.NewNop())
	eq := env.addEquipment("Pump-1", nil)

	group, err := svc.Add(ctx, dto.CreateEquipmentGroupDTO{Name: "Pumps", Description: strPtr("Rotary pumps"), EquipmentIDs: []uint64{eq}})
	require.NoError(t, err)

	members, _ := env.equipmentGroups.GetMembersOf(ctx, nil, group.ID)
	assert.Equal(t, []uint64{eq}, members)
	assert.Equal(t, "Rotary pumps", *env.equipments.rows[eq].Description)
}

func TestPartService_PatchKeepsUnsetFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewPartService(env.parts, fakeTxManager{}, env.membership, env.cache, zap.NewNop())

	part, err := svc.Add(ctx, dto.CreatePartDTO{Name: "Seal", Reference: strPtr("S-1"), Quantity: 4, UnitPrice: 2.5})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, part.ID, dto.UpdatePartDTO{Quantity: null.IntFrom(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)
	assert.Equal(t, "S-1", *updated.Reference)
	assert.InDelta(t, 2.5, updated.UnitPrice, 0.0001)
}

func TestInterventionService_Normalizes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewInterventionService(env.interventions, fakeTxManager{}, zap.NewNop())
	start := time.Now()

	created, err := svc.Add(ctx, dto.CreateInterventionDTO{
		EquipmentID: 1,
		Title:       "Замена уплотнения",
		TechnicianHistory: []entities.TechnicianWork{
			{TechnicianName: "Ivan", StartDate: start, PartsUsed: []entities.PartUsage{{PartID: 2, Quantity: 1}, {PartID: 1, Quantity: 2}}},
			{TechnicianName: "Oleg", StartDate: start, PartsUsed: []entities.PartUsage{{PartID: 2, Quantity: 3}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.InterventionStatusPlanned, created.Status)
	assert.Equal(t, []entities.PartUsage{{PartID: 1, Quantity: 2}, {PartID: 2, Quantity: 4}}, created.PartsUsed)
	assert.Nil(t, created.CompletedAt)

	done, err := svc.Update(ctx, created.ID, dto.UpdateInterventionDTO{Status: null.StringFrom(constants.InterventionStatusDone)})
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)
}

func TestCollectionService_UpdateMissing(t *testing.T) {
	env := newTestEnv()
	svc := NewPartService(env.parts, fakeTxManager{}, env.membership, env.cache, zap.NewNop())
	_, err := svc.Update(context.Background(), 8, dto.UpdatePartDTO{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
