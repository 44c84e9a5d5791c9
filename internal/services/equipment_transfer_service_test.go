package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gmao-system/internal/entities"
	"gmao-system/pkg/constants"
	"gmao-system/pkg/types"
)

func newTransferService(env *testEnv) *EquipmentTransferService {
	return NewEquipmentTransferService(env.equipments, env.groups, env.junctions, env.equipment, zap.NewNop())
}

func TestDetectEquipmentHeader(t *testing.T) {
	rows := [][]string{
		{"Реестр оборудования"},
		{},
		{"№", "Наименование", "Модель", "Серийный номер", "Статус", "Состояние, %"},
	}
	idx, cols, ok := detectEquipmentHeader(rows)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 1, cols.name)
	assert.Equal(t, 2, cols.model)
	assert.Equal(t, 3, cols.serial)
	assert.Equal(t, 4, cols.status)
	assert.Equal(t, 5, cols.health)
	assert.Equal(t, -1, cols.manufacturer)

	_, _, ok = detectEquipmentHeader([][]string{{"Название", "Цена"}})
	assert.False(t, ok)
}

func TestImport_UpsertsBySerial(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	existing, _ := env.equipments.Create(ctx, nil, entities.Equipment{
		Name: "Pump-1", SerialNumber: strPtr("SN-1"), Status: constants.EquipmentStatusOperational, HealthPercentage: 100,
	})

	f := excelize.NewFile()
	sheet := "Sheet1"
	rows := [][]interface{}{
		{"Реестр оборудования"},
		{"Название", "Модель", "Серийный номер", "Статус", "Состояние"},
		{"Pump-1", "P-200", "SN-1", "на ремонте", "60"},
		{"Compressor", "C-10", "SN-2", "", ""},
		{"Fan", "", "", "сломан", ""},
		{"Итого", "", "", "", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := newTransferService(env).Import(ctx, buf, "ivan")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Fan", result.Errors[0].Name)

	pump := env.equipments.rows[existing]
	assert.Equal(t, "P-200", *pump.Model)
	assert.Equal(t, constants.EquipmentStatusMaintenance, pump.Status)
	assert.Equal(t, 60, pump.HealthPercentage)
	assert.Equal(t, 3, env.history.countFor(existing))
	assert.Equal(t, "ivan", env.history.entries[0].ChangedBy)
	assert.Len(t, env.equipments.rows, 2)
}

func TestImport_RejectsTableWithoutHeader(t *testing.T) {
	env := newTestEnv()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Цена", "Количество"}))
	buf, _ := f.WriteToBuffer()

	_, err := newTransferService(env).Import(context.Background(), buf, "ivan")
	assert.Error(t, err)
}

func TestExport_WritesGroupNames(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addEquipment("Pump-1", nil)
	env.addEquipment("Pump-2", nil)
	g1 := env.addGroup("Pumps", nil)
	g2 := env.addGroup("Hall A", nil)
	env.link(env.equipmentGroups, a, g1)
	env.link(env.equipmentGroups, a, g2)

	f, err := newTransferService(env).Export(ctx, types.Filter{})
	require.NoError(t, err)

	rows, err := f.GetRows(equipmentSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Название", rows[0][1])
	assert.Equal(t, "Pump-1", rows[1][1])

	groups, _ := f.GetCellValue(equipmentSheet, "L2")
	assert.Equal(t, "Pumps, Hall A", groups)
}
