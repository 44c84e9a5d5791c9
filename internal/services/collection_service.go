package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gmao-system/internal/repositories"
	"gmao-system/pkg/types"
)

// CollectionHooks - то, чем коллекции отличаются друг от друга.
type CollectionHooks[E any, C any, U any] struct {
	// Build собирает новую сущность из DTO создания.
	Build func(create C) E
	// Patch применяет частичное обновление к загруженной сущности.
	Patch func(entity *E, patch U)
	// AfterCreate/AfterUpdate выполняются в той же транзакции (например, запись связей).
	AfterCreate func(ctx context.Context, tx pgx.Tx, id uint64, create C) error
	AfterUpdate func(ctx context.Context, tx pgx.Tx, id uint64, patch U) error
	// AfterDelete вызывается после коммита; ошибки внутри только логируются.
	AfterDelete func(ctx context.Context, entity E)
	// OnChange - после любой успешной записи (сброс кэша).
	OnChange func(ctx context.Context)
}

type CollectionServiceInterface[E any, C any, U any] interface {
	Fetch(ctx context.Context, filter types.Filter) ([]E, uint64, error)
	Refetch(ctx context.Context, filter types.Filter) ([]E, uint64, error)
	FindByID(ctx context.Context, id uint64) (*E, error)
	Add(ctx context.Context, create C) (*E, error)
	Update(ctx context.Context, id uint64, patch U) (*E, error)
	Delete(ctx context.Context, id uint64) error
}

// CollectionService - общий CRUD над одной таблицей.
type CollectionService[E any, C any, U any] struct {
	name      string
	repo      repositories.CollectionRepository[E]
	txManager repositories.TxManagerInterface
	hooks     CollectionHooks[E, C, U]
	logger    *zap.Logger
}

func NewCollectionService[E any, C any, U any](
	name string,
	repo repositories.CollectionRepository[E],
	txManager repositories.TxManagerInterface,
	hooks CollectionHooks[E, C, U],
	logger *zap.Logger,
) *CollectionService[E, C, U] {
	return &CollectionService[E, C, U]{
		name:      name,
		repo:      repo,
		txManager: txManager,
		hooks:     hooks,
		logger:    logger.With(zap.String("collection", name)),
	}
}

func (s *CollectionService[E, C, U]) Fetch(ctx context.Context, filter types.Filter) ([]E, uint64, error) {
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// Refetch - повторная загрузка списка, на сервере то же самое, что Fetch.
func (s *CollectionService[E, C, U]) Refetch(ctx context.Context, filter types.Filter) ([]E, uint64, error) {
	return s.Fetch(ctx, filter)
}

func (s *CollectionService[E, C, U]) FindByID(ctx context.Context, id uint64) (*E, error) {
	return s.repo.FindByID(ctx, nil, id)
}

func (s *CollectionService[E, C, U]) Add(ctx context.Context, create C) (*E, error) {
	var created *E
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.repo.Create(ctx, tx, s.hooks.Build(create))
		if err != nil {
			return err
		}
		if s.hooks.AfterCreate != nil {
			if err := s.hooks.AfterCreate(ctx, tx, id, create); err != nil {
				return err
			}
		}
		created, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при создании записи", zap.Error(err))
		return nil, err
	}
	s.changed(ctx)
	s.logger.Info("Запись создана")
	return created, nil
}

func (s *CollectionService[E, C, U]) Update(ctx context.Context, id uint64, patch U) (*E, error) {
	var updated *E
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		s.hooks.Patch(current, patch)
		if err := s.repo.Update(ctx, tx, *current); err != nil {
			return err
		}
		if s.hooks.AfterUpdate != nil {
			if err := s.hooks.AfterUpdate(ctx, tx, id, patch); err != nil {
				return err
			}
		}
		updated, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении записи", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.changed(ctx)
	s.logger.Info("Запись обновлена", zap.Uint64("id", id))
	return updated, nil
}

func (s *CollectionService[E, C, U]) Delete(ctx context.Context, id uint64) error {
	var deleted *E
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		deleted = current
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		s.logger.Error("Ошибка при удалении записи", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	if s.hooks.AfterDelete != nil {
		s.hooks.AfterDelete(ctx, *deleted)
	}
	s.changed(ctx)
	s.logger.Info("Запись удалена", zap.Uint64("id", id))
	return nil
}

func (s *CollectionService[E, C, U]) changed(ctx context.Context) {
	if s.hooks.OnChange != nil {
		s.hooks.OnChange(ctx)
	}
}
