package services

import (
	"context"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmao-system/internal/dto"
	"gmao-system/pkg/constants"
	apperrors "gmao-system/pkg/errors"
)

func TestCreateEquipment_DefaultsAndGroups(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	g := env.addGroup("Pumps", strPtr("Rotary pumps"))

	created, err := env.equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{
		Name:         "Pump-1",
		SerialNumber: strPtr("  "),
		GroupIDs:     []uint64{g},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.EquipmentStatusOperational, created.Status)
	assert.Equal(t, 100, created.HealthPercentage)
	assert.Nil(t, created.SerialNumber)
	assert.Equal(t, []uint64{g}, created.GroupIDs)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Rotary pumps", *created.Description)
}

func TestUpdateEquipment_WritesHistoryPerField(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := env.addEquipment("Pump-1", strPtr("old"))

	updated, err := env.equipment.UpdateEquipment(ctx, id, dto.UpdateEquipmentDTO{
		Status:           null.StringFrom(constants.EquipmentStatusFaulty),
		HealthPercentage: null.IntFrom(40),
		Description:      null.StringFrom(""),
		Name:             null.StringFrom("Pump-1"),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, constants.EquipmentStatusFaulty, updated.Status)
	assert.Nil(t, updated.Description)

	history, err := env.equipment.GetHistory(ctx, id, 50, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(3), history.Total)

	fields := map[string]string{}
	for _, h := range history.List {
		assert.Equal(t, SystemActor, h.ChangedBy)
		fields[h.FieldName] = ""
		if h.NewValue != nil {
			fields[h.FieldName] = *h.NewValue
		}
	}
	assert.Equal(t, map[string]string{"status": "faulty", "health_percentage": "40", "description": ""}, fields)
}

func TestUpdateEquipment_NoChangesNoHistory(t *testing.T) {
	env := newTestEnv()
	id := env.addEquipment("Pump-1", nil)

	_, err := env.equipment.UpdateEquipment(context.Background(), id, dto.UpdateEquipmentDTO{Name: null.StringFrom("Pump-1")}, "ivan")
	require.NoError(t, err)
	assert.Empty(t, env.history.entries)
}

func TestUpdateEquipment_NotFound(t *testing.T) {
	env := newTestEnv()
	_, err := env.equipment.UpdateEquipment(context.Background(), 1, dto.UpdateEquipmentDTO{}, "ivan")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUploadImage_ReplacesOldFile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := env.addEquipment("Pump-1", nil)
	old := "/uploads/equipment/images/old.png"
	e := env.equipments.rows[id]
	e.ImagePath = &old
	env.equipments.rows[id] = e

	updated, err := env.equipment.UploadImage(ctx, id, strings.NewReader("png"), "new.png")
	require.NoError(t, err)
	require.NotNil(t, updated.ImagePath)
	assert.True(t, strings.HasPrefix(*updated.ImagePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(*updated.ImagePath, "new.png"))
	assert.Equal(t, []string{old}, env.files.deleted)
}

func TestGetStats(t *testing.T) {
	env := newTestEnv()
	env.addEquipment("a", nil)
	env.addEquipment("b", nil)

	stats, err := env.equipment.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.InDelta(t, 100.0, stats.AverageHealth, 0.001)
}
