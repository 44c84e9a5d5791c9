package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/repositories"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/filestorage"
	"gmao-system/pkg/metrics"
)

// DeleteOptions - параметры удаления оборудования.
type DeleteOptions struct {
	// CascadeEmptyGroups - удалять опустевшие группы вместе с их общими документами и запчастями.
	CascadeEmptyGroups bool
}

type EquipmentDeletionServiceInterface interface {
	DeleteEquipment(ctx context.Context, equipmentID uint64, opts DeleteOptions) (*dto.DeletionReportDTO, error)
}

type EquipmentDeletionService struct {
	txManager        repositories.TxManagerInterface
	equipmentRepo    repositories.EquipmentRepositoryInterface
	groupRepo        repositories.EquipmentGroupRepositoryInterface
	documentRepo     repositories.DocumentRepositoryInterface
	partRepo         repositories.PartRepositoryInterface
	interventionRepo repositories.InterventionRepositoryInterface
	historyRepo      repositories.EquipmentHistoryRepositoryInterface
	junctions        repositories.Junctions
	fileStorage      filestorage.FileStorageInterface
	cache            *BaseService
	logger           *zap.Logger
}

func NewEquipmentDeletionService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	groupRepo repositories.EquipmentGroupRepositoryInterface,
	documentRepo repositories.DocumentRepositoryInterface,
	partRepo repositories.PartRepositoryInterface,
	interventionRepo repositories.InterventionRepositoryInterface,
	historyRepo repositories.EquipmentHistoryRepositoryInterface,
	junctions repositories.Junctions,
	fileStorage filestorage.FileStorageInterface,
	cache *BaseService,
	logger *zap.Logger,
) *EquipmentDeletionService {
	return &EquipmentDeletionService{
		txManager:        txManager,
		equipmentRepo:    equipmentRepo,
		groupRepo:        groupRepo,
		documentRepo:     documentRepo,
		partRepo:         partRepo,
		interventionRepo: interventionRepo,
		historyRepo:      historyRepo,
		junctions:        junctions,
		fileStorage:      fileStorage,
		cache:            cache,
		logger:           logger,
	}
}

// sharedResource - документ или запчасть: одинаковая логика отвязки и удаления сирот.
type sharedResource struct {
	kind       string
	direct     repositories.JunctionRepositoryInterface
	groups     repositories.JunctionRepositoryInterface
	filePathOf func(ctx context.Context, tx pgx.Tx, id uint64) (*string, error)
	remove     func(ctx context.Context, tx pgx.Tx, id uint64) error
}

func (s *EquipmentDeletionService) documents() sharedResource {
	return sharedResource{
		kind:   "document",
		direct: s.junctions.DocumentEquipments,
		groups: s.junctions.DocumentGroups,
		filePathOf: func(ctx context.Context, tx pgx.Tx, id uint64) (*string, error) {
			doc, err := s.documentRepo.FindByID(ctx, tx, id)
			if err != nil {
				return nil, err
			}
			return doc.FilePath, nil
		},
		remove: s.documentRepo.Delete,
	}
}

func (s *EquipmentDeletionService) parts() sharedResource {
	return sharedResource{
		kind:       "part",
		direct:     s.junctions.PartEquipments,
		groups:     s.junctions.PartGroups,
		filePathOf: func(context.Context, pgx.Tx, uint64) (*string, error) { return nil, nil },
		remove:     s.partRepo.Delete,
	}
}

// deletionRun - состояние одного удаления: отчёт и файлы, которые чистятся после коммита.
type deletionRun struct {
	report    *dto.DeletionReportDTO
	imagePath *string
	files     []string
}

// DeleteEquipment удаляет оборудование со всеми зависимыми данными.
// Шаги 1-7 и удаление строки идут в одной транзакции; файлы удаляются после коммита
// и их ошибки только логируются.
func (s *EquipmentDeletionService) DeleteEquipment(ctx context.Context, equipmentID uint64, opts DeleteOptions) (*dto.DeletionReportDTO, error) {
	run := &deletionRun{report: &dto.DeletionReportDTO{
		EquipmentID:       equipmentID,
		DocumentsDetached: []uint64{},
		DocumentsDeleted:  []uint64{},
		PartsDetached:     []uint64{},
		PartsDeleted:      []uint64{},
		GroupsLeft:        []uint64{},
		GroupsDeleted:     []uint64{},
	}}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.deleteInTx(ctx, tx, equipmentID, opts, run)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.EquipmentDeletionsTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.EquipmentDeletionsTotal.WithLabelValues("failed").Inc()
			s.logger.Error("Ошибка при удалении оборудования", zap.Uint64("equipmentID", equipmentID), zap.Error(err))
		}
		return nil, err
	}

	s.cleanupFiles(run)
	s.cache.BumpGeneration(ctx)

	metrics.EquipmentDeletionsTotal.WithLabelValues("ok").Inc()
	metrics.OrphansDeletedTotal.WithLabelValues("document").Add(float64(len(run.report.DocumentsDeleted)))
	metrics.OrphansDeletedTotal.WithLabelValues("part").Add(float64(len(run.report.PartsDeleted)))
	metrics.OrphansDeletedTotal.WithLabelValues("group").Add(float64(len(run.report.GroupsDeleted)))

	s.logger.Info("Оборудование удалено",
		zap.Uint64("equipmentID", equipmentID),
		zap.Bool("cascade", opts.CascadeEmptyGroups),
		zap.Int64("interventions", run.report.InterventionsDeleted),
		zap.Int64("history", run.report.HistoryDeleted),
		zap.Uint64s("documentsDeleted", run.report.DocumentsDeleted),
		zap.Uint64s("partsDeleted", run.report.PartsDeleted),
		zap.Uint64s("groupsDeleted", run.report.GroupsDeleted),
	)
	return run.report, nil
}

func (s *EquipmentDeletionService) deleteInTx(ctx context.Context, tx pgx.Tx, equipmentID uint64, opts DeleteOptions, run *deletionRun) error {
	// 1. оборудование
	equipment, err := s.equipmentRepo.FindByID(ctx, tx, equipmentID)
	if err != nil {
		return err
	}
	run.imagePath = equipment.ImagePath

	// 2. группы
	groupIDs, err := s.junctions.EquipmentGroups.GetGroupsFor(ctx, tx, equipmentID)
	if err != nil {
		return err
	}

	// 3-4. вмешательства и история
	if run.report.InterventionsDeleted, err = s.interventionRepo.DeleteByEquipmentID(ctx, tx, equipmentID); err != nil {
		return err
	}
	if run.report.HistoryDeleted, err = s.historyRepo.DeleteByEquipmentID(ctx, tx, equipmentID); err != nil {
		return err
	}

	// 5. прямые ссылки документов и запчастей
	if run.report.DocumentsDetached, run.report.DocumentsDeleted, err = s.detachResource(ctx, tx, s.documents(), equipmentID, run); err != nil {
		return err
	}
	if run.report.PartsDetached, run.report.PartsDeleted, err = s.detachResource(ctx, tx, s.parts(), equipmentID, run); err != nil {
		return err
	}

	// 6. членство в группах
	if _, err := s.junctions.EquipmentGroups.RemoveMember(ctx, tx, equipmentID); err != nil {
		return err
	}

	// 7. опустевшие группы
	for _, groupID := range groupIDs {
		remaining, err := s.junctions.EquipmentGroups.CountMembersOf(ctx, tx, groupID, 0)
		if err != nil {
			return err
		}
		if remaining > 0 {
			continue
		}
		if !opts.CascadeEmptyGroups {
			run.report.GroupsLeft = append(run.report.GroupsLeft, groupID)
			continue
		}
		if err := s.deleteEmptyGroup(ctx, tx, groupID, run); err != nil {
			return err
		}
	}

	// 9. строка оборудования
	return s.equipmentRepo.Delete(ctx, tx, equipmentID)
}

// detachResource убирает прямую ссылку на оборудование и удаляет ресурс,
// если у него не осталось ни ссылок, ни групп.
func (s *EquipmentDeletionService) detachResource(ctx context.Context, tx pgx.Tx, res sharedResource, equipmentID uint64, run *deletionRun) (detached, deleted []uint64, err error) {
	detached, deleted = []uint64{}, []uint64{}

	ids, err := res.direct.GetMembersOf(ctx, tx, equipmentID)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if err := res.direct.RemoveLink(ctx, tx, id, equipmentID); err != nil {
			return nil, nil, err
		}
		orphan, err := s.isOrphan(ctx, tx, res, id)
		if err != nil {
			return nil, nil, err
		}
		if !orphan {
			detached = append(detached, id)
			continue
		}
		if err := s.deleteResource(ctx, tx, res, id, run); err != nil {
			return nil, nil, err
		}
		deleted = append(deleted, id)
	}
	return detached, deleted, nil
}

func (s *EquipmentDeletionService) isOrphan(ctx context.Context, tx pgx.Tx, res sharedResource, id uint64) (bool, error) {
	links, err := res.direct.GetGroupsFor(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if len(links) > 0 {
		return false, nil
	}
	groups, err := res.groups.GetGroupsFor(ctx, tx, id)
	if err != nil {
		return false, err
	}
	return len(groups) == 0, nil
}

func (s *EquipmentDeletionService) deleteResource(ctx context.Context, tx pgx.Tx, res sharedResource, id uint64, run *deletionRun) error {
	path, err := res.filePathOf(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := res.remove(ctx, tx, id); err != nil {
		return err
	}
	if path != nil && *path != "" {
		run.files = append(run.files, *path)
	}
	return nil
}

// deleteEmptyGroup удаляет группу без участников и её общие ресурсы, которые больше
// ни к чему не привязаны.
func (s *EquipmentDeletionService) deleteEmptyGroup(ctx context.Context, tx pgx.Tx, groupID uint64, run *deletionRun) error {
	group, err := s.groupRepo.FindByID(ctx, tx, groupID)
	if err != nil {
		return err
	}

	for _, res := range []sharedResource{s.documents(), s.parts()} {
		shared, err := res.groups.GetMembersOf(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if _, err := res.groups.RemoveGroup(ctx, tx, groupID); err != nil {
			return err
		}
		for _, id := range shared {
			orphan, err := s.isOrphan(ctx, tx, res, id)
			if err != nil {
				return err
			}
			if !orphan {
				continue
			}
			if err := s.deleteResource(ctx, tx, res, id, run); err != nil {
				return err
			}
			// ресурс, отвязанный на шаге 5, в отчёте числится только удалённым
			if res.kind == "document" {
				run.report.DocumentsDetached = withoutID(run.report.DocumentsDetached, id)
				run.report.DocumentsDeleted = append(run.report.DocumentsDeleted, id)
			} else {
				run.report.PartsDetached = withoutID(run.report.PartsDetached, id)
				run.report.PartsDeleted = append(run.report.PartsDeleted, id)
			}
		}
	}

	if err := s.groupRepo.Delete(ctx, tx, groupID); err != nil {
		return err
	}
	if group.ImagePath != nil && *group.ImagePath != "" {
		run.files = append(run.files, *group.ImagePath)
	}
	run.report.GroupsDeleted = append(run.report.GroupsDeleted, groupID)
	return nil
}

func withoutID(ids []uint64, id uint64) []uint64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// cleanupFiles - шаг 8: картинка оборудования и файлы удалённых документов/групп.
func (s *EquipmentDeletionService) cleanupFiles(run *deletionRun) {
	if run.imagePath != nil && *run.imagePath != "" {
		if err := s.fileStorage.Delete(*run.imagePath); err != nil {
			s.logger.Warn("Не удалось удалить изображение оборудования",
				zap.Uint64("equipmentID", run.report.EquipmentID), zap.String("path", *run.imagePath), zap.Error(err))
			run.report.Warnings = append(run.report.Warnings, "изображение не удалено: "+err.Error())
		} else {
			run.report.ImageDeleted = true
		}
	}

	for _, path := range run.files {
		if err := s.fileStorage.Delete(path); err != nil {
			s.logger.Warn("Не удалось удалить файл", zap.String("path", path), zap.Error(err))
			run.report.Warnings = append(run.report.Warnings, "файл не удалён: "+path)
		}
	}
}
