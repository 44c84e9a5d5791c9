package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gmao-system/config"
	"gmao-system/internal/dto"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/filestorage"
	"gmao-system/pkg/utils"
	"gmao-system/pkg/validation"
)

type UploadController struct {
	fileStorage filestorage.FileStorageInterface
	logger      *zap.Logger
}

func NewUploadController(fileStorage filestorage.FileStorageInterface, logger *zap.Logger) *UploadController {
	return &UploadController{fileStorage: fileStorage, logger: logger}
}

// openUpload достаёт файл из формы и проверяет его по правилам контекста загрузки.
// Закрыть файл должен вызывающий.
func openUpload(c echo.Context, uploadContext string) (multipart.File, *multipart.FileHeader, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, "Файл не был передан", apperrors.ErrBadRequest, nil)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil)
	}

	if err := validation.ValidateFile(fileHeader, src, uploadContext); err != nil {
		src.Close()
		return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, err.Error(), apperrors.ErrBadRequest, nil)
	}
	return src, fileHeader, nil
}

func (ctrl *UploadController) Upload(c echo.Context) error {
	uploadContext := c.Param("type")

	rules, ok := config.UploadContexts[uploadContext]
	if !ok {
		return utils.ErrorResponse(c,
			apperrors.NewHttpError(
				http.StatusBadRequest,
				"Неизвестный контекст загрузки",
				apperrors.ErrBadRequest,
				map[string]interface{}{"context": uploadContext},
			),
			ctrl.logger,
		)
	}

	src, fileHeader, err := openUpload(c, uploadContext)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	defer src.Close()

	savedPath, err := ctrl.fileStorage.Save(src, fileHeader.Filename, rules.PathPrefix)
	if err != nil {
		ctrl.logger.Error("Ошибка сохранения файла", zap.Error(err))
		return utils.ErrorResponse(c,
			apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка сохранения файла", err, nil),
			ctrl.logger,
		)
	}

	return utils.SuccessResponse(c, dto.UploadResultDTO{URL: filestorage.PublicURL(savedPath)}, "Файл успешно загружен", http.StatusOK)
}
