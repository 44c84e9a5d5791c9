package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gmao-system/internal/services"
	"gmao-system/pkg/utils"
)

// EquipmentGroupController - состав группы и распространение её описания.
// CRUD самих групп идёт через CollectionController.
type EquipmentGroupController struct {
	membership services.MembershipServiceInterface
	logger     *zap.Logger
}

func NewEquipmentGroupController(membership services.MembershipServiceInterface, logger *zap.Logger) *EquipmentGroupController {
	return &EquipmentGroupController{membership: membership, logger: logger}
}

func (c *EquipmentGroupController) GetEquipments(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.membership.GetGroupEquipments(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить состав группы", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Состав группы получен", http.StatusOK)
}

func (c *EquipmentGroupController) SetEquipments(ctx echo.Context) error {
	id, payload, err := bindIDs(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.membership.SetGroupEquipments(ctx.Request().Context(), id, payload.IDs)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось изменить состав группы", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Состав группы обновлён", http.StatusOK)
}

func (c *EquipmentGroupController) PropagateDescription(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.membership.PropagateGroupDescriptionToGroupMembers(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось распространить описание группы", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Описание группы распространено", http.StatusOK)
}

// LinkController - замена связей документа или запчасти с группами и оборудованием.
type LinkController struct {
	setGroups     func(ctx echo.Context, id uint64, ids []uint64) error
	setEquipments func(ctx echo.Context, id uint64, ids []uint64) error
	logger        *zap.Logger
}

func NewDocumentLinkController(membership services.MembershipServiceInterface, logger *zap.Logger) *LinkController {
	return &LinkController{
		setGroups: func(ctx echo.Context, id uint64, ids []uint64) error {
			return membership.SetDocumentGroups(ctx.Request().Context(), id, ids)
		},
		setEquipments: func(ctx echo.Context, id uint64, ids []uint64) error {
			return membership.SetDocumentEquipments(ctx.Request().Context(), id, ids)
		},
		logger: logger,
	}
}

func NewPartLinkController(membership services.MembershipServiceInterface, logger *zap.Logger) *LinkController {
	return &LinkController{
		setGroups: func(ctx echo.Context, id uint64, ids []uint64) error {
			return membership.SetPartGroups(ctx.Request().Context(), id, ids)
		},
		setEquipments: func(ctx echo.Context, id uint64, ids []uint64) error {
			return membership.SetPartEquipments(ctx.Request().Context(), id, ids)
		},
		logger: logger,
	}
}

func (c *LinkController) SetGroups(ctx echo.Context) error {
	return c.set(ctx, c.setGroups)
}

func (c *LinkController) SetEquipments(ctx echo.Context) error {
	return c.set(ctx, c.setEquipments)
}

func (c *LinkController) set(ctx echo.Context, apply func(echo.Context, uint64, []uint64) error) error {
	id, payload, err := bindIDs(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := apply(ctx, id, payload.IDs); err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось изменить связи", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{"id": id, "ids": payload.IDs}, "Связи обновлены", http.StatusOK)
}
