package dto

import "github.com/aarondl/null/v8"

type CreateEquipmentGroupDTO struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Description  *string  `json:"description"`
	ImagePath    *string  `json:"image_path"`
	EquipmentIDs []uint64 `json:"equipment_ids" validate:"omitempty,dive,gt=0"`
}

type UpdateEquipmentGroupDTO struct {
	Name        null.String `json:"name" validate:"omitempty,max=255"`
	Description null.String `json:"description"`
	ImagePath   null.String `json:"image_path"`
	// nil - состав не меняется, пустой список - группа очищается.
	EquipmentIDs *[]uint64 `json:"equipment_ids" validate:"omitempty,dive,gt=0"`
}

// SetIDsDTO - тело запросов, заменяющих набор связей целиком.
type SetIDsDTO struct {
	IDs []uint64 `json:"ids" validate:"dive,gt=0"`
}

type PropagationResultDTO struct {
	GroupID uint64   `json:"group_id"`
	Updated []uint64 `json:"updated"`
	Skipped []uint64 `json:"skipped"`
}
