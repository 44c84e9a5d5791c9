package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/services"
	"gmao-system/pkg/constants"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/utils"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	membership       services.MembershipServiceInterface
	deletion         services.EquipmentDeletionServiceInterface
	resources        services.GroupResourceServiceInterface
	transfer         services.EquipmentTransferServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(
	equipmentService services.EquipmentServiceInterface,
	membership services.MembershipServiceInterface,
	deletion services.EquipmentDeletionServiceInterface,
	resources services.GroupResourceServiceInterface,
	transfer services.EquipmentTransferServiceInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService: equipmentService,
		membership:       membership,
		deletion:         deletion,
		resources:        resources,
		transfer:         transfer,
		logger:           logger,
	}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.equipmentService.GetEquipments(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetEquipments: ошибка при получении списка оборудования", zap.Error(err))
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить список оборудования", nil), c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список оборудования успешно получен", http.StatusOK, total)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.FindEquipment(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось найти оборудование", nil), c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var payload dto.CreateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Error("CreateEquipment: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.CreateEquipment(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateEquipment: ошибка при создании оборудования", zap.Any("payload", payload), zap.Error(err))
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось создать оборудование", nil), c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно создано", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	actor := ctx.Request().Header.Get(utils.ActorHeader)
	res, err := c.equipmentService.UpdateEquipment(ctx.Request().Context(), id, payload, actor)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось обновить оборудование", nil), c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно обновлено", http.StatusOK)
}

// DeleteEquipment: ?cascade=false оставляет опустевшие группы.
func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	opts := services.DeleteOptions{CascadeEmptyGroups: true}
	if raw := ctx.QueryParam("cascade"); raw != "" {
		cascade, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "Параметр cascade должен быть true или false", apperrors.ErrBadRequest, nil),
				c.logger,
			)
		}
		opts.CascadeEmptyGroups = cascade
	}

	report, err := c.deletion.DeleteEquipment(ctx.Request().Context(), id, opts)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось удалить оборудование", map[string]interface{}{"id": id}), c.logger)
	}

	return utils.SuccessResponse(ctx, report, "Оборудование успешно удалено", http.StatusOK)
}

func (c *EquipmentController) GetGroups(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.membership.GetEquipmentGroups(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить группы оборудования", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Группы оборудования получены", http.StatusOK)
}

func (c *EquipmentController) SetGroups(ctx echo.Context) error {
	id, payload, err := bindIDs(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.membership.SetEquipmentGroups(ctx.Request().Context(), id, payload.IDs)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось изменить группы оборудования", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Группы оборудования обновлены", http.StatusOK)
}

func (c *EquipmentController) GetDocuments(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.resources.ResolveDocumentsFor(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить документы оборудования", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Документы оборудования получены", http.StatusOK)
}

func (c *EquipmentController) GetParts(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.resources.ResolveCreatedPartsFor(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить запчасти оборудования", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запчасти оборудования получены", http.StatusOK)
}

func (c *EquipmentController) GetHistory(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, err := c.equipmentService.GetHistory(ctx.Request().Context(), id, uint64(filter.Limit), uint64(filter.Offset))
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить историю оборудования", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "История оборудования получена", http.StatusOK)
}

func (c *EquipmentController) UploadImage(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	src, fileHeader, err := openUpload(ctx, constants.UploadContextEquipmentImage.String())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer src.Close()

	res, err := c.equipmentService.UploadImage(ctx.Request().Context(), id, src, fileHeader.Filename)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось сохранить изображение", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Изображение оборудования обновлено", http.StatusOK)
}

func (c *EquipmentController) GetStats(ctx echo.Context) error {
	res, err := c.equipmentService.GetStats(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось получить статистику", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статистика оборудования получена", http.StatusOK)
}

func (c *EquipmentController) Export(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	f, err := c.transfer.Export(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось сформировать выгрузку", nil), c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("equipment_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func (c *EquipmentController) Import(ctx echo.Context) error {
	src, _, err := openUpload(ctx, constants.UploadContextImport.String())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer src.Close()

	actor := ctx.Request().Header.Get(utils.ActorHeader)
	if actor == "" {
		actor = services.SystemActor
	}
	res, err := c.transfer.Import(ctx.Request().Context(), src, actor)
	if err != nil {
		return utils.ErrorResponse(ctx, utils.WrapError(err, "Не удалось загрузить оборудование", nil), c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Импорт оборудования завершён", http.StatusOK)
}

// bindIDs - id из пути и тело {"ids": [...]}.
func bindIDs(ctx echo.Context) (uint64, dto.SetIDsDTO, error) {
	var payload dto.SetIDsDTO
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return 0, payload, err
	}
	if err := ctx.Bind(&payload); err != nil {
		return 0, payload, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil)
	}
	if err := ctx.Validate(&payload); err != nil {
		return 0, payload, err
	}
	return id, payload, nil
}
