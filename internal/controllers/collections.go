package controllers

import (
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/internal/services"
)

type (
	DocumentController     = CollectionController[entities.Document, dto.CreateDocumentDTO, dto.UpdateDocumentDTO]
	PartController         = CollectionController[entities.Part, dto.CreatePartDTO, dto.UpdatePartDTO]
	GroupController        = CollectionController[entities.EquipmentGroup, dto.CreateEquipmentGroupDTO, dto.UpdateEquipmentGroupDTO]
	InterventionController = CollectionController[entities.Intervention, dto.CreateInterventionDTO, dto.UpdateInterventionDTO]
)

func NewDocumentController(service *services.DocumentService, logger *zap.Logger) *DocumentController {
	return NewCollectionController[entities.Document, dto.CreateDocumentDTO, dto.UpdateDocumentDTO](service, CollectionMessages{
		Listed:  "Список документов успешно получен",
		Found:   "Документ успешно найден",
		Created: "Документ успешно создан",
		Updated: "Документ успешно обновлён",
		Deleted: "Документ успешно удалён",
		Failed:  "Ошибка при работе с документами",
	}, logger)
}

func NewPartController(service *services.PartService, logger *zap.Logger) *PartController {
	return NewCollectionController[entities.Part, dto.CreatePartDTO, dto.UpdatePartDTO](service, CollectionMessages{
		Listed:  "Список запчастей успешно получен",
		Found:   "Запчасть успешно найдена",
		Created: "Запчасть успешно создана",
		Updated: "Запчасть успешно обновлена",
		Deleted: "Запчасть успешно удалена",
		Failed:  "Ошибка при работе с запчастями",
	}, logger)
}

func NewGroupController(service *services.GroupService, logger *zap.Logger) *GroupController {
	return NewCollectionController[entities.EquipmentGroup, dto.CreateEquipmentGroupDTO, dto.UpdateEquipmentGroupDTO](service, CollectionMessages{
		Listed:  "Список групп успешно получен",
		Found:   "Группа успешно найдена",
		Created: "Группа успешно создана",
		Updated: "Группа успешно обновлена",
		Deleted: "Группа успешно удалена",
		Failed:  "Ошибка при работе с группами оборудования",
	}, logger)
}

func NewInterventionController(service *services.InterventionService, logger *zap.Logger) *InterventionController {
	return NewCollectionController[entities.Intervention, dto.CreateInterventionDTO, dto.UpdateInterventionDTO](service, CollectionMessages{
		Listed:  "Список вмешательств успешно получен",
		Found:   "Вмешательство успешно найдено",
		Created: "Вмешательство успешно создано",
		Updated: "Вмешательство успешно обновлено",
		Deleted: "Вмешательство успешно удалено",
		Failed:  "Ошибка при работе с вмешательствами",
	}, logger)
}
