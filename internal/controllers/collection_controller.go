package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gmao-system/internal/services"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/utils"
)

// CollectionMessages - тексты ответов для конкретной коллекции.
type CollectionMessages struct {
	Listed  string
	Found   string
	Created string
	Updated string
	Deleted string
	Failed  string
}

// CollectionController - общий CRUD для документов, запчастей, групп и вмешательств.
type CollectionController[E any, C any, U any] struct {
	service  services.CollectionServiceInterface[E, C, U]
	messages CollectionMessages
	logger   *zap.Logger
}

func NewCollectionController[E any, C any, U any](
	service services.CollectionServiceInterface[E, C, U],
	messages CollectionMessages,
	logger *zap.Logger,
) *CollectionController[E, C, U] {
	return &CollectionController[E, C, U]{service: service, messages: messages, logger: logger}
}

func (c *CollectionController[E, C, U]) fail(ctx echo.Context, err error) error {
	return utils.ErrorResponse(ctx, utils.WrapError(err, c.messages.Failed, nil), c.logger)
}

func (c *CollectionController[E, C, U]) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.service.Fetch(ctx.Request().Context(), filter)
	if err != nil {
		return c.fail(ctx, err)
	}
	return utils.SuccessResponse(ctx, list, c.messages.Listed, http.StatusOK, total)
}

func (c *CollectionController[E, C, U]) Find(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.service.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return c.fail(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, c.messages.Found, http.StatusOK)
}

func (c *CollectionController[E, C, U]) Create(ctx echo.Context) error {
	var payload C
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.service.Add(ctx.Request().Context(), payload)
	if err != nil {
		return c.fail(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, c.messages.Created, http.StatusCreated)
}

func (c *CollectionController[E, C, U]) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload U
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.service.Update(ctx.Request().Context(), id, payload)
	if err != nil {
		return c.fail(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, c.messages.Updated, http.StatusOK)
}

func (c *CollectionController[E, C, U]) Delete(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return c.fail(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, c.messages.Deleted, http.StatusOK)
}
