package routes

import (
	"github.com/labstack/echo/v4"

	"gmao-system/internal/controllers"
)

func runEquipmentRouter(api *echo.Group, equipmentCtrl *controllers.EquipmentController) {
	equipment := api.Group("/equipment")

	equipment.GET("", equipmentCtrl.GetEquipments)
	equipment.POST("", equipmentCtrl.CreateEquipment)
	equipment.GET("/stats", equipmentCtrl.GetStats)
	equipment.GET("/export", equipmentCtrl.Export)
	equipment.POST("/import", equipmentCtrl.Import)

	equipment.GET("/:id", equipmentCtrl.FindEquipment)
	equipment.PUT("/:id", equipmentCtrl.UpdateEquipment)
	equipment.DELETE("/:id", equipmentCtrl.DeleteEquipment)

	equipment.GET("/:id/groups", equipmentCtrl.GetGroups)
	equipment.PUT("/:id/groups", equipmentCtrl.SetGroups)
	equipment.GET("/:id/documents", equipmentCtrl.GetDocuments)
	equipment.GET("/:id/parts", equipmentCtrl.GetParts)
	equipment.GET("/:id/history", equipmentCtrl.GetHistory)
	equipment.POST("/:id/image", equipmentCtrl.UploadImage)
}

func runEquipmentGroupRouter(api *echo.Group, crud *controllers.GroupController, groupCtrl *controllers.EquipmentGroupController) {
	groups := api.Group("/equipment-groups")

	groups.GET("", crud.List)
	groups.POST("", crud.Create)
	groups.GET("/:id", crud.Find)
	groups.PUT("/:id", crud.Update)
	groups.DELETE("/:id", crud.Delete)

	groups.GET("/:id/equipments", groupCtrl.GetEquipments)
	groups.PUT("/:id/equipments", groupCtrl.SetEquipments)
	groups.POST("/:id/propagate-description", groupCtrl.PropagateDescription)
}

func runDocumentRouter(api *echo.Group, crud *controllers.DocumentController, links *controllers.LinkController) {
	documents := api.Group("/documents")

	documents.GET("", crud.List)
	documents.POST("", crud.Create)
	documents.GET("/:id", crud.Find)
	documents.PUT("/:id", crud.Update)
	documents.DELETE("/:id", crud.Delete)
	documents.PUT("/:id/groups", links.SetGroups)
	documents.PUT("/:id/equipments", links.SetEquipments)
}

func runPartRouter(api *echo.Group, crud *controllers.PartController, links *controllers.LinkController) {
	parts := api.Group("/parts")

	parts.GET("", crud.List)
	parts.POST("", crud.Create)
	parts.GET("/:id", crud.Find)
	parts.PUT("/:id", crud.Update)
	parts.DELETE("/:id", crud.Delete)
	parts.PUT("/:id/groups", links.SetGroups)
	parts.PUT("/:id/equipments", links.SetEquipments)
}

func runInterventionRouter(api *echo.Group, crud *controllers.InterventionController) {
	interventions := api.Group("/interventions")

	interventions.GET("", crud.List)
	interventions.POST("", crud.Create)
	interventions.GET("/:id", crud.Find)
	interventions.PUT("/:id", crud.Update)
	interventions.DELETE("/:id", crud.Delete)
}
