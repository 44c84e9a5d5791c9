package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/internal/repositories"
	"gmao-system/pkg/constants"
	"gmao-system/pkg/metrics"
)

type GroupResourceServiceInterface interface {
	ResolveDocumentsFor(ctx context.Context, equipmentID uint64) ([]dto.ResolvedDocumentDTO, error)
	ResolveCreatedPartsFor(ctx context.Context, equipmentID uint64) ([]dto.ResolvedPartDTO, error)
}

// GroupResourceService собирает документы и запчасти, видимые оборудованию:
// прямые связи плюс всё, что пришло через его группы.
type GroupResourceService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	documentRepo  repositories.DocumentRepositoryInterface
	partRepo      repositories.PartRepositoryInterface
	junctions     repositories.Junctions
	cache         *BaseService
	logger        *zap.Logger
}

func NewGroupResourceService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	documentRepo repositories.DocumentRepositoryInterface,
	partRepo repositories.PartRepositoryInterface,
	junctions repositories.Junctions,
	cache *BaseService,
	logger *zap.Logger,
) *GroupResourceService {
	return &GroupResourceService{
		equipmentRepo: equipmentRepo,
		documentRepo:  documentRepo,
		partRepo:      partRepo,
		junctions:     junctions,
		cache:         cache,
		logger:        logger,
	}
}

// resolvedRef - откуда пришёл ресурс. При дубликате по ID побеждает последняя запись.
type resolvedRef struct {
	source  string
	groupID *uint64
}

// resolveRefs объединяет прямые связи и связи через группы (группы по возрастанию ID).
// Порядок результата - порядок первого появления ID.
func (s *GroupResourceService) resolveRefs(ctx context.Context, equipmentID uint64, direct, viaGroups repositories.JunctionRepositoryInterface) ([]uint64, map[uint64]resolvedRef, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, nil, equipmentID); err != nil {
		return nil, nil, err
	}

	order := make([]uint64, 0)
	refs := make(map[uint64]resolvedRef)
	put := func(id uint64, ref resolvedRef) {
		if _, seen := refs[id]; !seen {
			order = append(order, id)
		}
		refs[id] = ref
	}

	directIDs, err := direct.GetMembersOf(ctx, nil, equipmentID)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range directIDs {
		put(id, resolvedRef{source: dto.ResolvedSourceDirect})
	}

	groupIDs, err := s.junctions.EquipmentGroups.GetGroupsFor(ctx, nil, equipmentID)
	if err != nil {
		return nil, nil, err
	}
	for _, groupID := range groupIDs {
		memberIDs, err := viaGroups.GetMembersOf(ctx, nil, groupID)
		if err != nil {
			return nil, nil, err
		}
		gid := groupID
		for _, id := range memberIDs {
			put(id, resolvedRef{source: dto.ResolvedSourceGroup, groupID: &gid})
		}
	}
	return order, refs, nil
}

func resolvedCacheKey(kind string, generation int64, equipmentID uint64) string {
	return fmt.Sprintf(constants.CacheKeyResolved, kind, generation, equipmentID)
}

func (s *GroupResourceService) ResolveDocumentsFor(ctx context.Context, equipmentID uint64) ([]dto.ResolvedDocumentDTO, error) {
	key := resolvedCacheKey("documents", s.cache.Generation(ctx), equipmentID)
	var cached []dto.ResolvedDocumentDTO
	if s.cache.CacheGet(ctx, key, &cached) {
		metrics.ResolveCacheHitsTotal.Inc()
		return cached, nil
	}
	metrics.ResolveCacheMissesTotal.Inc()

	order, refs, err := s.resolveRefs(ctx, equipmentID, s.junctions.DocumentEquipments, s.junctions.DocumentGroups)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.FindByIDs(ctx, nil, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]entities.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	result := make([]dto.ResolvedDocumentDTO, 0, len(order))
	for _, id := range order {
		doc, ok := byID[id]
		if !ok {
			continue
		}
		ref := refs[id]
		result = append(result, dto.ResolvedDocumentDTO{Document: doc, Source: ref.source, GroupID: ref.groupID})
	}

	s.cache.CacheSet(ctx, key, result)
	return result, nil
}

func (s *GroupResourceService) ResolveCreatedPartsFor(ctx context.Context, equipmentID uint64) ([]dto.ResolvedPartDTO, error) {
	key := resolvedCacheKey("parts", s.cache.Generation(ctx), equipmentID)
	var cached []dto.ResolvedPartDTO
	if s.cache.CacheGet(ctx, key, &cached) {
		metrics.ResolveCacheHitsTotal.Inc()
		return cached, nil
	}
	metrics.ResolveCacheMissesTotal.Inc()

	order, refs, err := s.resolveRefs(ctx, equipmentID, s.junctions.PartEquipments, s.junctions.PartGroups)
	if err != nil {
		return nil, err
	}
	parts, err := s.partRepo.FindByIDs(ctx, nil, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]entities.Part, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}

	result := make([]dto.ResolvedPartDTO, 0, len(order))
	for _, id := range order {
		part, ok := byID[id]
		if !ok {
			continue
		}
		ref := refs[id]
		result = append(result, dto.ResolvedPartDTO{Part: part, Source: ref.source, GroupID: ref.groupID})
	}

	s.cache.CacheSet(ctx, key, result)
	return result, nil
}
