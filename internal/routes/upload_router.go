package routes

import (
	"github.com/labstack/echo/v4"

	"gmao-system/internal/controllers"
)

func runUploadRouter(group *echo.Group, uploadController *controllers.UploadController) {
	group.POST("/upload/:type", uploadController.Upload)
}
