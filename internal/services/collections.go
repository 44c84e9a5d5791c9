package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/internal/repositories"
	"gmao-system/pkg/constants"
	"gmao-system/pkg/filestorage"
	"gmao-system/pkg/utils"
)

type (
	DocumentService     = CollectionService[entities.Document, dto.CreateDocumentDTO, dto.UpdateDocumentDTO]
	PartService         = CollectionService[entities.Part, dto.CreatePartDTO, dto.UpdatePartDTO]
	GroupService        = CollectionService[entities.EquipmentGroup, dto.CreateEquipmentGroupDTO, dto.UpdateEquipmentGroupDTO]
	InterventionService = CollectionService[entities.Intervention, dto.CreateInterventionDTO, dto.UpdateInterventionDTO]
)

// removeFile - удаление файла после удаления записи, без ошибки для вызывающего.
func removeFile(fileStorage filestorage.FileStorageInterface, logger *zap.Logger, path *string) {
	if fileStorage == nil || path == nil || *path == "" {
		return
	}
	if err := fileStorage.Delete(*path); err != nil {
		logger.Warn("Не удалось удалить файл", zap.String("path", *path), zap.Error(err))
	}
}

func NewDocumentService(
	repo repositories.DocumentRepositoryInterface,
	txManager repositories.TxManagerInterface,
	membership *MembershipService,
	fileStorage filestorage.FileStorageInterface,
	cache *BaseService,
	logger *zap.Logger,
) *DocumentService {
	return NewCollectionService("documents", repositories.CollectionRepository[entities.Document](repo), txManager,
		CollectionHooks[entities.Document, dto.CreateDocumentDTO, dto.UpdateDocumentDTO]{
			Build: func(c dto.CreateDocumentDTO) entities.Document {
				return entities.Document{Title: c.Title, Category: utils.TrimmedOrNil(c.Category), FilePath: utils.TrimmedOrNil(c.FilePath)}
			},
			Patch: func(d *entities.Document, u dto.UpdateDocumentDTO) {
				utils.PatchString(&d.Title, u.Title)
				utils.PatchOptionalString(&d.Category, u.Category)
				utils.PatchOptionalString(&d.FilePath, u.FilePath)
			},
			AfterCreate: func(ctx context.Context, tx pgx.Tx, id uint64, c dto.CreateDocumentDTO) error {
				if err := membership.replaceLinks(ctx, tx, membership.junctions.DocumentEquipments, id, c.EquipmentIDs); err != nil {
					return err
				}
				return membership.replaceLinks(ctx, tx, membership.junctions.DocumentGroups, id, c.GroupIDs)
			},
			AfterUpdate: func(ctx context.Context, tx pgx.Tx, id uint64, u dto.UpdateDocumentDTO) error {
				if u.EquipmentIDs != nil {
					if err := membership.replaceLinks(ctx, tx, membership.junctions.DocumentEquipments, id, *u.EquipmentIDs); err != nil {
						return err
					}
				}
				if u.GroupIDs != nil {
					return membership.replaceLinks(ctx, tx, membership.junctions.DocumentGroups, id, *u.GroupIDs)
				}
				return nil
			},
			AfterDelete: func(_ context.Context, d entities.Document) {
				removeFile(fileStorage, logger, d.FilePath)
			},
			OnChange: cache.BumpGeneration,
		}, logger)
}

func NewPartService(
	repo repositories.PartRepositoryInterface,
	txManager repositories.TxManagerInterface,
	membership *MembershipService,
	cache *BaseService,
	logger *zap.Logger,
) *PartService {
	return NewCollectionService("parts", repositories.CollectionRepository[entities.Part](repo), txManager,
		CollectionHooks[entities.Part, dto.CreatePartDTO, dto.UpdatePartDTO]{
			Build: func(c dto.CreatePartDTO) entities.Part {
				return entities.Part{Name: c.Name, Reference: utils.TrimmedOrNil(c.Reference), Quantity: c.Quantity, UnitPrice: c.UnitPrice}
			},
			Patch: func(p *entities.Part, u dto.UpdatePartDTO) {
				utils.PatchString(&p.Name, u.Name)
				utils.PatchOptionalString(&p.Reference, u.Reference)
				utils.PatchInt(&p.Quantity, u.Quantity)
				utils.PatchFloat(&p.UnitPrice, u.UnitPrice)
			},
			AfterCreate: func(ctx context.Context, tx pgx.Tx, id uint64, c dto.CreatePartDTO) error {
				if err := membership.replaceLinks(ctx, tx, membership.junctions.PartEquipments, id, c.EquipmentIDs); err != nil {
					return err
				}
				return membership.replaceLinks(ctx, tx, membership.junctions.PartGroups, id, c.GroupIDs)
			},
			AfterUpdate: func(ctx context.Context, tx pgx.Tx, id uint64, u dto.UpdatePartDTO) error {
				if u.EquipmentIDs != nil {
					if err := membership.replaceLinks(ctx, tx, membership.junctions.PartEquipments, id, *u.EquipmentIDs); err != nil {
						return err
					}
				}
				if u.GroupIDs != nil {
					return membership.replaceLinks(ctx, tx, membership.junctions.PartGroups, id, *u.GroupIDs)
				}
				return nil
			},
			OnChange: cache.BumpGeneration,
		}, logger)
}

// NewGroupService - группы; состав группы можно передать при создании и обновлении,
// тогда сразу срабатывает подстановка описания.
func NewGroupService(
	repo repositories.EquipmentGroupRepositoryInterface,
	txManager repositories.TxManagerInterface,
	membership *MembershipService,
	fileStorage filestorage.FileStorageInterface,
	cache *BaseService,
	logger *zap.Logger,
) *GroupService {
	return NewCollectionService("equipment_groups", repositories.CollectionRepository[entities.EquipmentGroup](repo), txManager,
		CollectionHooks[entities.EquipmentGroup, dto.CreateEquipmentGroupDTO, dto.UpdateEquipmentGroupDTO]{
			Build: func(c dto.CreateEquipmentGroupDTO) entities.EquipmentGroup {
				return entities.EquipmentGroup{Name: c.Name, Description: utils.TrimmedOrNil(c.Description), ImagePath: utils.TrimmedOrNil(c.ImagePath)}
			},
			Patch: func(g *entities.EquipmentGroup, u dto.UpdateEquipmentGroupDTO) {
				utils.PatchString(&g.Name, u.Name)
				utils.PatchOptionalString(&g.Description, u.Description)
				utils.PatchOptionalString(&g.ImagePath, u.ImagePath)
			},
			AfterCreate: func(ctx context.Context, tx pgx.Tx, id uint64, c dto.CreateEquipmentGroupDTO) error {
				if len(c.EquipmentIDs) == 0 {
					return nil
				}
				return membership.replaceGroupEquipments(ctx, tx, id, c.EquipmentIDs)
			},
			AfterUpdate: func(ctx context.Context, tx pgx.Tx, id uint64, u dto.UpdateEquipmentGroupDTO) error {
				if u.EquipmentIDs == nil {
					return nil
				}
				return membership.replaceGroupEquipments(ctx, tx, id, *u.EquipmentIDs)
			},
			AfterDelete: func(_ context.Context, g entities.EquipmentGroup) {
				removeFile(fileStorage, logger, g.ImagePath)
			},
			OnChange: cache.BumpGeneration,
		}, logger)
}

func NewInterventionService(
	repo repositories.InterventionRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) *InterventionService {
	return NewCollectionService("interventions", repositories.CollectionRepository[entities.Intervention](repo), txManager,
		CollectionHooks[entities.Intervention, dto.CreateInterventionDTO, dto.UpdateInterventionDTO]{
			Build: func(c dto.CreateInterventionDTO) entities.Intervention {
				i := entities.Intervention{
					EquipmentID:       c.EquipmentID,
					Title:             c.Title,
					Status:            c.Status,
					ScheduledAt:       c.ScheduledAt,
					TechnicianHistory: c.TechnicianHistory,
				}
				normalizeIntervention(&i)
				return i
			},
			Patch: func(i *entities.Intervention, u dto.UpdateInterventionDTO) {
				utils.PatchString(&i.Title, u.Title)
				utils.PatchString(&i.Status, u.Status)
				utils.PatchOptionalTime(&i.ScheduledAt, u.ScheduledAt)
				utils.PatchOptionalTime(&i.CompletedAt, u.CompletedAt)
				if u.TechnicianHistory != nil {
					i.TechnicianHistory = *u.TechnicianHistory
				}
				normalizeIntervention(i)
			},
		}, logger)
}

// normalizeIntervention: статус по умолчанию, пересчёт запчастей, дата завершения.
func normalizeIntervention(i *entities.Intervention) {
	if i.Status == "" {
		i.Status = constants.InterventionStatusPlanned
	}
	if i.TechnicianHistory == nil {
		i.TechnicianHistory = []entities.TechnicianWork{}
	}
	i.PartsUsed = entities.AggregatePartsUsed(i.TechnicianHistory)
	if i.Status == constants.InterventionStatusDone && i.CompletedAt == nil {
		now := time.Now()
		i.CompletedAt = &now
	}
}
