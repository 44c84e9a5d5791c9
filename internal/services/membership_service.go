package services

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/internal/repositories"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/metrics"
	"gmao-system/pkg/utils"
)

type MembershipServiceInterface interface {
	GetEquipmentGroups(ctx context.Context, equipmentID uint64) ([]entities.EquipmentGroup, error)
	SetEquipmentGroups(ctx context.Context, equipmentID uint64, groupIDs []uint64) ([]entities.EquipmentGroup, error)
	GetGroupEquipments(ctx context.Context, groupID uint64) ([]entities.Equipment, error)
	SetGroupEquipments(ctx context.Context, groupID uint64, equipmentIDs []uint64) ([]entities.Equipment, error)

	SetDocumentGroups(ctx context.Context, documentID uint64, groupIDs []uint64) error
	SetDocumentEquipments(ctx context.Context, documentID uint64, equipmentIDs []uint64) error
	SetPartGroups(ctx context.Context, partID uint64, groupIDs []uint64) error
	SetPartEquipments(ctx context.Context, partID uint64, equipmentIDs []uint64) error

	PropagateGroupDescriptionToGroupMembers(ctx context.Context, groupID uint64) (*dto.PropagationResultDTO, error)
}

// MembershipService ведёт связи оборудования, документов и запчастей с группами
// и копирует описание групп в оборудование без описания.
type MembershipService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	groupRepo     repositories.EquipmentGroupRepositoryInterface
	documentRepo  repositories.DocumentRepositoryInterface
	partRepo      repositories.PartRepositoryInterface
	junctions     repositories.Junctions
	cache         *BaseService
	logger        *zap.Logger
}

func NewMembershipService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	groupRepo repositories.EquipmentGroupRepositoryInterface,
	documentRepo repositories.DocumentRepositoryInterface,
	partRepo repositories.PartRepositoryInterface,
	junctions repositories.Junctions,
	cache *BaseService,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		groupRepo:     groupRepo,
		documentRepo:  documentRepo,
		partRepo:      partRepo,
		junctions:     junctions,
		cache:         cache,
		logger:        logger,
	}
}

func (s *MembershipService) GetEquipmentGroups(ctx context.Context, equipmentID uint64) ([]entities.EquipmentGroup, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, nil, equipmentID); err != nil {
		return nil, err
	}
	groupIDs, err := s.junctions.EquipmentGroups.GetGroupsFor(ctx, nil, equipmentID)
	if err != nil {
		return nil, err
	}
	return s.groupRepo.FindByIDs(ctx, nil, groupIDs)
}

func (s *MembershipService) SetEquipmentGroups(ctx context.Context, equipmentID uint64, groupIDs []uint64) ([]entities.EquipmentGroup, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.equipmentRepo.FindByID(ctx, tx, equipmentID); err != nil {
			return err
		}
		return s.replaceEquipmentGroups(ctx, tx, equipmentID, groupIDs)
	})
	if err != nil {
		s.logger.Error("Ошибка при изменении групп оборудования", zap.Uint64("equipmentID", equipmentID), zap.Error(err))
		return nil, err
	}
	s.cache.BumpGeneration(ctx)
	s.logger.Info("Группы оборудования обновлены", zap.Uint64("equipmentID", equipmentID), zap.Uint64s("groupIDs", groupIDs))
	return s.GetEquipmentGroups(ctx, equipmentID)
}

// replaceEquipmentGroups - замена групп оборудования и подстановка описания в рамках tx.
func (s *MembershipService) replaceEquipmentGroups(ctx context.Context, tx pgx.Tx, equipmentID uint64, groupIDs []uint64) error {
	ids := utils.UniqueIDs(groupIDs)
	if err := s.ensureGroupsExist(ctx, tx, ids); err != nil {
		return err
	}
	if err := s.junctions.EquipmentGroups.ReplaceGroupsFor(ctx, tx, equipmentID, ids); err != nil {
		return err
	}
	_, err := s.fillDescriptionFromGroups(ctx, tx, equipmentID)
	return err
}

func (s *MembershipService) GetGroupEquipments(ctx context.Context, groupID uint64) ([]entities.Equipment, error) {
	if _, err := s.groupRepo.FindByID(ctx, nil, groupID); err != nil {
		return nil, err
	}
	memberIDs, err := s.junctions.EquipmentGroups.GetMembersOf(ctx, nil, groupID)
	if err != nil {
		return nil, err
	}
	return s.equipmentRepo.FindByIDs(ctx, nil, memberIDs)
}

func (s *MembershipService) SetGroupEquipments(ctx context.Context, groupID uint64, equipmentIDs []uint64) ([]entities.Equipment, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.groupRepo.FindByID(ctx, tx, groupID); err != nil {
			return err
		}
		return s.replaceGroupEquipments(ctx, tx, groupID, equipmentIDs)
	})
	if err != nil {
		s.logger.Error("Ошибка при изменении состава группы", zap.Uint64("groupID", groupID), zap.Error(err))
		return nil, err
	}
	s.cache.BumpGeneration(ctx)
	s.logger.Info("Состав группы обновлён", zap.Uint64("groupID", groupID), zap.Uint64s("equipmentIDs", equipmentIDs))
	return s.GetGroupEquipments(ctx, groupID)
}

func (s *MembershipService) replaceGroupEquipments(ctx context.Context, tx pgx.Tx, groupID uint64, equipmentIDs []uint64) error {
	ids := utils.UniqueIDs(equipmentIDs)
	if err := s.ensureEquipmentsExist(ctx, tx, ids); err != nil {
		return err
	}
	if err := s.junctions.EquipmentGroups.ReplaceMembersOf(ctx, tx, groupID, ids); err != nil {
		return err
	}
	for _, equipmentID := range ids {
		if _, err := s.fillDescriptionFromGroups(ctx, tx, equipmentID); err != nil {
			return err
		}
	}
	return nil
}

// fillDescriptionFromGroups копирует описание первой группы (по возрастанию ID) с непустым
// описанием, если у оборудования своего описания нет. Непустое описание не трогается.
func (s *MembershipService) fillDescriptionFromGroups(ctx context.Context, tx pgx.Tx, equipmentID uint64) (bool, error) {
	equipment, err := s.equipmentRepo.FindByID(ctx, tx, equipmentID)
	if err != nil {
		return false, err
	}
	if !utils.IsBlank(equipment.Description) {
		return false, nil
	}

	groupIDs, err := s.junctions.EquipmentGroups.GetGroupsFor(ctx, tx, equipmentID)
	if err != nil {
		return false, err
	}
	groups, err := s.groupRepo.FindByIDs(ctx, tx, groupIDs)
	if err != nil {
		return false, err
	}
	description, ok := firstGroupDescription(groups)
	if !ok {
		return false, nil
	}

	if err := s.equipmentRepo.UpdateDescription(ctx, tx, equipmentID, &description); err != nil {
		return false, err
	}
	metrics.DescriptionPropagationsTotal.Inc()
	s.logger.Debug("Описание группы скопировано в оборудование", zap.Uint64("equipmentID", equipmentID))
	return true, nil
}

func firstGroupDescription(groups []entities.EquipmentGroup) (string, bool) {
	sorted := make([]entities.EquipmentGroup, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, g := range sorted {
		if !utils.IsBlank(g.Description) {
			return *g.Description, true
		}
	}
	return "", false
}

func (s *MembershipService) ensureGroupsExist(ctx context.Context, tx pgx.Tx, ids []uint64) error {
	found, err := s.groupRepo.FindByIDs(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return apperrors.NewInvalidInputError("часть групп из списка не найдена")
	}
	return nil
}

func (s *MembershipService) ensureEquipmentsExist(ctx context.Context, tx pgx.Tx, ids []uint64) error {
	found, err := s.equipmentRepo.FindByIDs(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return apperrors.NewInvalidInputError("часть оборудования из списка не найдена")
	}
	return nil
}

// replaceLinks - общая замена связей документа или запчасти.
func (s *MembershipService) replaceLinks(ctx context.Context, tx pgx.Tx, junction repositories.JunctionRepositoryInterface, memberID uint64, ids []uint64) error {
	ids = utils.UniqueIDs(ids)
	var err error
	if rel := junction.Relation(); rel == repositories.DocumentEquipments || rel == repositories.PartEquipments {
		err = s.ensureEquipmentsExist(ctx, tx, ids)
	} else {
		err = s.ensureGroupsExist(ctx, tx, ids)
	}
	if err != nil {
		return err
	}
	return junction.ReplaceGroupsFor(ctx, tx, memberID, ids)
}

func (s *MembershipService) setLinks(ctx context.Context, junction repositories.JunctionRepositoryInterface, memberID uint64, ids []uint64, exists func(tx pgx.Tx) error) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := exists(tx); err != nil {
			return err
		}
		return s.replaceLinks(ctx, tx, junction, memberID, ids)
	})
	if err != nil {
		s.logger.Error("Ошибка при изменении связей",
			zap.String("relation", junction.Relation().Name), zap.Uint64("memberID", memberID), zap.Error(err))
		return err
	}
	s.cache.BumpGeneration(ctx)
	return nil
}

func (s *MembershipService) SetDocumentGroups(ctx context.Context, documentID uint64, groupIDs []uint64) error {
	return s.setLinks(ctx, s.junctions.DocumentGroups, documentID, groupIDs, func(tx pgx.Tx) error {
		_, err := s.documentRepo.FindByID(ctx, tx, documentID)
		return err
	})
}

func (s *MembershipService) SetDocumentEquipments(ctx context.Context, documentID uint64, equipmentIDs []uint64) error {
	return s.setLinks(ctx, s.junctions.DocumentEquipments, documentID, equipmentIDs, func(tx pgx.Tx) error {
		_, err := s.documentRepo.FindByID(ctx, tx, documentID)
		return err
	})
}

func (s *MembershipService) SetPartGroups(ctx context.Context, partID uint64, groupIDs []uint64) error {
	return s.setLinks(ctx, s.junctions.PartGroups, partID, groupIDs, func(tx pgx.Tx) error {
		_, err := s.partRepo.FindByID(ctx, tx, partID)
		return err
	})
}

func (s *MembershipService) SetPartEquipments(ctx context.Context, partID uint64, equipmentIDs []uint64) error {
	return s.setLinks(ctx, s.junctions.PartEquipments, partID, equipmentIDs, func(tx pgx.Tx) error {
		_, err := s.partRepo.FindByID(ctx, tx, partID)
		return err
	})
}

// PropagateGroupDescriptionToGroupMembers записывает описание группы всем её участникам.
// Перезаписывается пустое описание или описание, совпадающее с описанием любой группы
// (значит, оно когда-то было скопировано из группы).
func (s *MembershipService) PropagateGroupDescriptionToGroupMembers(ctx context.Context, groupID uint64) (*dto.PropagationResultDTO, error) {
	result := &dto.PropagationResultDTO{GroupID: groupID, Updated: []uint64{}, Skipped: []uint64{}}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		group, err := s.groupRepo.FindByID(ctx, tx, groupID)
		if err != nil {
			return err
		}
		memberIDs, err := s.junctions.EquipmentGroups.GetMembersOf(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if utils.IsBlank(group.Description) {
			result.Skipped = append(result.Skipped, memberIDs...)
			return nil
		}

		descriptions, err := s.groupRepo.GetDescriptions(ctx, tx)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(descriptions))
		for _, d := range descriptions {
			known[d] = struct{}{}
		}

		members, err := s.equipmentRepo.FindByIDs(ctx, tx, memberIDs)
		if err != nil {
			return err
		}
		for _, equipment := range members {
			if !isPropagationTarget(equipment.Description, *group.Description, known) {
				result.Skipped = append(result.Skipped, equipment.ID)
				continue
			}
			if err := s.equipmentRepo.UpdateDescription(ctx, tx, equipment.ID, group.Description); err != nil {
				return err
			}
			result.Updated = append(result.Updated, equipment.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при распространении описания группы", zap.Uint64("groupID", groupID), zap.Error(err))
		return nil, err
	}

	metrics.DescriptionPropagationsTotal.Add(float64(len(result.Updated)))
	s.logger.Info("Описание группы распространено",
		zap.Uint64("groupID", groupID),
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func isPropagationTarget(current *string, groupDescription string, known map[string]struct{}) bool {
	if utils.IsBlank(current) {
		return true
	}
	if *current == groupDescription {
		return false
	}
	_, ok := known[*current]
	return ok
}
