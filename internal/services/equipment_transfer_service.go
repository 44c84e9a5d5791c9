package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/repositories"
	"gmao-system/pkg/constants"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/types"
	"gmao-system/pkg/utils"
)

const equipmentSheet = "Оборудование"

var equipmentExportHeaders = []interface{}{
	"ID", "Название", "Модель", "Производитель", "Серийный номер", "Статус",
	"Состояние, %", "Описание", "Здание", "Служба", "Локация", "Группы",
}

// statusAliases - статусы, как их пишут в таблицах.
var statusAliases = map[string]string{
	"operational":   constants.EquipmentStatusOperational,
	"работает":      constants.EquipmentStatusOperational,
	"в работе":      constants.EquipmentStatusOperational,
	"maintenance":   constants.EquipmentStatusMaintenance,
	"обслуживание":  constants.EquipmentStatusMaintenance,
	"на ремонте":    constants.EquipmentStatusMaintenance,
	"faulty":        constants.EquipmentStatusFaulty,
	"неисправно":    constants.EquipmentStatusFaulty,
	"неисправен":    constants.EquipmentStatusFaulty,
}

type EquipmentTransferServiceInterface interface {
	Export(ctx context.Context, filter types.Filter) (*excelize.File, error)
	Import(ctx context.Context, file io.Reader, actor string) (*dto.ImportResultDTO, error)
}

// EquipmentTransferService - выгрузка и загрузка оборудования в XLSX.
type EquipmentTransferService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	groupRepo     repositories.EquipmentGroupRepositoryInterface
	junctions     repositories.Junctions
	equipment     *EquipmentService
	logger        *zap.Logger
}

func NewEquipmentTransferService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	groupRepo repositories.EquipmentGroupRepositoryInterface,
	junctions repositories.Junctions,
	equipment *EquipmentService,
	logger *zap.Logger,
) *EquipmentTransferService {
	return &EquipmentTransferService{
		equipmentRepo: equipmentRepo,
		groupRepo:     groupRepo,
		junctions:     junctions,
		equipment:     equipment,
		logger:        logger,
	}
}

func (s *EquipmentTransferService) Export(ctx context.Context, filter types.Filter) (*excelize.File, error) {
	filter.WithPagination = false
	list, _, err := s.equipmentRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	groupNames := make(map[uint64]string)
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", equipmentSheet)
	if err := f.SetSheetRow(equipmentSheet, "A1", &equipmentExportHeaders); err != nil {
		return nil, err
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(equipmentSheet, "A1", "L1", style)

	for i, e := range list {
		groups, err := s.groupNamesFor(ctx, e.ID, groupNames)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			e.ID, e.Name, utils.SafeDeref(e.Model), utils.SafeDeref(e.Manufacturer), utils.SafeDeref(e.SerialNumber),
			e.Status, e.HealthPercentage, utils.SafeDeref(e.Description),
			optionalID(e.BuildingID), optionalID(e.ServiceID), optionalID(e.LocationID),
			strings.Join(groups, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(equipmentSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(equipmentSheet, "B", "E", 25)
	_ = f.SetColWidth(equipmentSheet, "H", "H", 50)
	_ = f.SetColWidth(equipmentSheet, "L", "L", 40)

	s.logger.Info("Выгрузка оборудования сформирована", zap.Int("rows", len(list)))
	return f, nil
}

func optionalID(id *uint64) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

func (s *EquipmentTransferService) groupNamesFor(ctx context.Context, equipmentID uint64, known map[uint64]string) ([]string, error) {
	groupIDs, err := s.junctions.EquipmentGroups.GetGroupsFor(ctx, nil, equipmentID)
	if err != nil {
		return nil, err
	}
	var missing []uint64
	for _, id := range groupIDs {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		groups, err := s.groupRepo.FindByIDs(ctx, nil, missing)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			known[g.ID] = g.Name
		}
	}
	names := make([]string, 0, len(groupIDs))
	for _, id := range groupIDs {
		if name, ok := known[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// equipmentColumns - индексы колонок, -1 если колонки нет.
type equipmentColumns struct {
	name, model, manufacturer, serial, status, health, description int
}

// detectEquipmentHeader ищет строку-шапку: в ней должно быть название и
// (серийный номер или модель).
func detectEquipmentHeader(rows [][]string) (int, equipmentColumns, bool) {
	for rIdx, row := range rows {
		cols := equipmentColumns{-1, -1, -1, -1, -1, -1, -1}
		for cIdx, colName := range row {
			c := strings.ToLower(strings.TrimSpace(colName))
			switch {
			case c == "":
			case strings.Contains(c, "серийн") || strings.Contains(c, "serial"):
				cols.serial = cIdx
			case strings.Contains(c, "назван") || strings.Contains(c, "наименован") || c == "name":
				cols.name = cIdx
			case strings.Contains(c, "модел") || c == "model":
				cols.model = cIdx
			case strings.Contains(c, "производ") || strings.Contains(c, "manufacturer"):
				cols.manufacturer = cIdx
			case strings.Contains(c, "статус") || c == "status":
				cols.status = cIdx
			case strings.Contains(c, "состояни") || strings.Contains(c, "health"):
				cols.health = cIdx
			case strings.Contains(c, "описан") || c == "description":
				cols.description = cIdx
			}
		}
		if cols.name != -1 && (cols.serial != -1 || cols.model != -1) {
			return rIdx, cols, true
		}
	}
	return -1, equipmentColumns{}, false
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isTrash - итоговые строки и пустые строки пропускаются.
func isTrash(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return v == "" || strings.Contains(v, "итого") || strings.Contains(v, "всего")
}

func parseStatus(raw string) (string, bool) {
	if raw == "" {
		return "", true
	}
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

func parseHealth(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return nil, fmt.Errorf("состояние должно быть числом от 0 до 100: %q", raw)
	}
	h := int(v)
	return &h, nil
}

// Import - загрузка из XLSX. Строка с известным серийным номером (или названием, если
// номера нет) обновляет оборудование, остальные создают новое. Ошибки строк не
// прерывают загрузку и возвращаются в отчёте.
func (s *EquipmentTransferService) Import(ctx context.Context, file io.Reader, actor string) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("не удалось прочитать XLSX: %v", err)
	}
	defer f.Close()

	var rows [][]string
	headerRow := -1
	var cols equipmentColumns
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if idx, c, ok := detectEquipmentHeader(sheetRows); ok {
			rows, headerRow, cols = sheetRows, idx, c
			s.logger.Info("Заголовки найдены", zap.String("sheet", sheet), zap.Int("row", idx+1))
			break
		}
	}
	if headerRow == -1 {
		return nil, apperrors.NewInvalidInputError("не найдена шапка таблицы: нужны колонки 'Название' и 'Серийный номер' или 'Модель'")
	}

	result := &dto.ImportResultDTO{Errors: []dto.ImportRowErrorDTO{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		name := safeGet(row, cols.name)
		if isTrash(name) {
			result.Skipped++
			continue
		}
		created, err := s.importRow(ctx, row, cols, actor)
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{Row: i + 1, Name: name, Message: err.Error()})
			s.logger.Warn("Ошибка в строке импорта", zap.Int("row", i+1), zap.String("name", name), zap.Error(err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("Импорт оборудования завершён",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *EquipmentTransferService) importRow(ctx context.Context, row []string, cols equipmentColumns, actor string) (bool, error) {
	name := safeGet(row, cols.name)
	status, ok := parseStatus(safeGet(row, cols.status))
	if !ok {
		return false, fmt.Errorf("неизвестный статус %q", safeGet(row, cols.status))
	}
	health, err := parseHealth(safeGet(row, cols.health))
	if err != nil {
		return false, err
	}
	serial := utils.TrimmedOrNil(utils.ToPtr(safeGet(row, cols.serial)))

	existing, err := s.equipmentRepo.FindBySerialOrName(ctx, nil, serial, name)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	if existing == nil {
		_, err := s.equipment.CreateEquipment(ctx, dto.CreateEquipmentDTO{
			Name:             name,
			Model:            utils.ToPtr(safeGet(row, cols.model)),
			Manufacturer:     utils.ToPtr(safeGet(row, cols.manufacturer)),
			SerialNumber:     serial,
			Status:           status,
			HealthPercentage: health,
			Description:      utils.ToPtr(safeGet(row, cols.description)),
		})
		return true, err
	}

	patch := dto.UpdateEquipmentDTO{
		Name:         null.StringFrom(name),
		Model:        nonEmpty(safeGet(row, cols.model)),
		Manufacturer: nonEmpty(safeGet(row, cols.manufacturer)),
		SerialNumber: nonEmpty(safeGet(row, cols.serial)),
		Status:       nonEmpty(status),
		Description:  nonEmpty(safeGet(row, cols.description)),
	}
	if health != nil {
		patch.HealthPercentage = null.IntFrom(*health)
	}
	_, err = s.equipment.UpdateEquipment(ctx, existing.ID, patch, actor)
	return false, err
}

// nonEmpty - пустая ячейка не затирает значение в БД.
func nonEmpty(v string) null.String {
	if v == "" {
		return null.String{}
	}
	return null.StringFrom(v)
}
