package services

import (
	"context"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gmao-system/config"
	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/internal/repositories"
	"gmao-system/pkg/constants"
	"gmao-system/pkg/filestorage"
	"gmao-system/pkg/types"
	"gmao-system/pkg/utils"
)

// SystemActor - автор изменений, если заголовок X-User-Name не передан.
const SystemActor = "system"

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDetailsDTO, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailsDTO, error)
	UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO, actor string) (*dto.EquipmentDetailsDTO, error)
	GetHistory(ctx context.Context, id uint64, limit, offset uint64) (*dto.EquipmentHistoryListDTO, error)
	UploadImage(ctx context.Context, id uint64, file io.Reader, fileName string) (*entities.Equipment, error)
	GetStats(ctx context.Context) (*entities.EquipmentStats, error)
}

type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	historyRepo   repositories.EquipmentHistoryRepositoryInterface
	junctions     repositories.Junctions
	membership    *MembershipService
	fileStorage   filestorage.FileStorageInterface
	cache         *BaseService
	logger        *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	historyRepo repositories.EquipmentHistoryRepositoryInterface,
	junctions repositories.Junctions,
	membership *MembershipService,
	fileStorage filestorage.FileStorageInterface,
	cache *BaseService,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		historyRepo:   historyRepo,
		junctions:     junctions,
		membership:    membership,
		fileStorage:   fileStorage,
		cache:         cache,
		logger:        logger,
	}
}

func (s *EquipmentService) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	return s.equipmentRepo.GetAll(ctx, filter)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDetailsDTO, error) {
	return s.details(ctx, nil, id)
}

func (s *EquipmentService) details(ctx context.Context, tx pgx.Tx, id uint64) (*dto.EquipmentDetailsDTO, error) {
	equipment, err := s.equipmentRepo.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	groupIDs, err := s.junctions.EquipmentGroups.GetGroupsFor(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EquipmentDetailsDTO{Equipment: *equipment, GroupIDs: groupIDs}, nil
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailsDTO, error) {
	equipment := entities.Equipment{
		Name:             payload.Name,
		Model:            utils.TrimmedOrNil(payload.Model),
		Manufacturer:     utils.TrimmedOrNil(payload.Manufacturer),
		SerialNumber:     utils.TrimmedOrNil(payload.SerialNumber),
		Status:           payload.Status,
		HealthPercentage: 100,
		Description:      utils.TrimmedOrNil(payload.Description),
		BuildingID:       payload.BuildingID,
		ServiceID:        payload.ServiceID,
		LocationID:       payload.LocationID,
	}
	if equipment.Status == "" {
		equipment.Status = constants.EquipmentStatusOperational
	}
	if payload.HealthPercentage != nil {
		equipment.HealthPercentage = *payload.HealthPercentage
	}

	var result *dto.EquipmentDetailsDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.equipmentRepo.Create(ctx, tx, equipment)
		if err != nil {
			return err
		}
		if len(payload.GroupIDs) > 0 {
			if err := s.membership.replaceEquipmentGroups(ctx, tx, id, payload.GroupIDs); err != nil {
				return err
			}
		}
		result, err = s.details(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при создании оборудования", zap.String("name", payload.Name), zap.Error(err))
		return nil, err
	}
	if len(payload.GroupIDs) > 0 {
		s.cache.BumpGeneration(ctx)
	}
	s.logger.Info("Оборудование успешно создано", zap.Uint64("id", result.ID))
	return result, nil
}

// UpdateEquipment применяет изменения и пишет по записи истории на каждое изменённое поле.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO, actor string) (*dto.EquipmentDetailsDTO, error) {
	if actor == "" {
		actor = SystemActor
	}

	var result *dto.EquipmentDetailsDTO
	var changes []entities.EquipmentHistory
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		updated := *current
		applyEquipmentPatch(&updated, payload)

		changes = diffEquipment(current, &updated, actor)
		if len(changes) > 0 {
			if err := s.equipmentRepo.Update(ctx, tx, updated); err != nil {
				return err
			}
			if err := s.historyRepo.Create(ctx, tx, changes); err != nil {
				return err
			}
		}
		result, err = s.details(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении оборудования", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Оборудование обновлено", zap.Uint64("id", id), zap.Int("changedFields", len(changes)), zap.String("actor", actor))
	return result, nil
}

func applyEquipmentPatch(e *entities.Equipment, p dto.UpdateEquipmentDTO) {
	utils.PatchString(&e.Name, p.Name)
	utils.PatchOptionalString(&e.Model, p.Model)
	utils.PatchOptionalString(&e.Manufacturer, p.Manufacturer)
	utils.PatchOptionalString(&e.SerialNumber, p.SerialNumber)
	utils.PatchString(&e.Status, p.Status)
	utils.PatchInt(&e.HealthPercentage, p.HealthPercentage)
	utils.PatchOptionalString(&e.Description, p.Description)
	utils.PatchOptionalUint64(&e.BuildingID, p.BuildingID)
	utils.PatchOptionalUint64(&e.ServiceID, p.ServiceID)
	utils.PatchOptionalUint64(&e.LocationID, p.LocationID)
}

func diffEquipment(before, after *entities.Equipment, actor string) []entities.EquipmentHistory {
	var res []entities.EquipmentHistory
	add := func(field string, oldVal, newVal *string) {
		res = append(res, entities.EquipmentHistory{
			EquipmentID: before.ID,
			FieldName:   field,
			OldValue:    oldVal,
			NewValue:    newVal,
			ChangedBy:   actor,
		})
	}

	if before.Name != after.Name {
		add("name", &before.Name, &after.Name)
	}
	if utils.DiffPtr(before.Model, after.Model) {
		add("model", before.Model, after.Model)
	}
	if utils.DiffPtr(before.Manufacturer, after.Manufacturer) {
		add("manufacturer", before.Manufacturer, after.Manufacturer)
	}
	if utils.DiffPtr(before.SerialNumber, after.SerialNumber) {
		add("serial_number", before.SerialNumber, after.SerialNumber)
	}
	if before.Status != after.Status {
		add("status", &before.Status, &after.Status)
	}
	if before.HealthPercentage != after.HealthPercentage {
		add("health_percentage", utils.ToPtr(strconv.Itoa(before.HealthPercentage)), utils.ToPtr(strconv.Itoa(after.HealthPercentage)))
	}
	if utils.DiffPtr(before.Description, after.Description) {
		add("description", before.Description, after.Description)
	}
	if utils.DiffPtr(before.BuildingID, after.BuildingID) {
		add("building_id", utils.PtrToString(before.BuildingID), utils.PtrToString(after.BuildingID))
	}
	if utils.DiffPtr(before.ServiceID, after.ServiceID) {
		add("service_id", utils.PtrToString(before.ServiceID), utils.PtrToString(after.ServiceID))
	}
	if utils.DiffPtr(before.LocationID, after.LocationID) {
		add("location_id", utils.PtrToString(before.LocationID), utils.PtrToString(after.LocationID))
	}
	return res
}

func (s *EquipmentService) GetHistory(ctx context.Context, id uint64, limit, offset uint64) (*dto.EquipmentHistoryListDTO, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, nil, id); err != nil {
		return nil, err
	}
	list, total, err := s.historyRepo.FindByEquipmentID(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.EquipmentHistoryListDTO{List: list, Total: total}, nil
}

// UploadImage сохраняет новое изображение; старое удаляется после успешной записи в БД.
func (s *EquipmentService) UploadImage(ctx context.Context, id uint64, file io.Reader, fileName string) (*entities.Equipment, error) {
	current, err := s.equipmentRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	prefix := config.UploadContexts[constants.UploadContextEquipmentImage.String()].PathPrefix
	saved, err := s.fileStorage.Save(file, fileName, prefix)
	if err != nil {
		s.logger.Error("Не удалось сохранить изображение", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	path := filestorage.PublicURL(saved)

	if err := s.equipmentRepo.UpdateImage(ctx, nil, id, &path); err != nil {
		removeFile(s.fileStorage, s.logger, &path)
		return nil, err
	}
	removeFile(s.fileStorage, s.logger, current.ImagePath)

	s.logger.Info("Изображение оборудования обновлено", zap.Uint64("id", id), zap.String("path", path))
	return s.equipmentRepo.FindByID(ctx, nil, id)
}

func (s *EquipmentService) GetStats(ctx context.Context) (*entities.EquipmentStats, error) {
	return s.equipmentRepo.GetStats(ctx)
}
