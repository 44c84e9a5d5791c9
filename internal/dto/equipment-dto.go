package dto

import (
	"github.com/aarondl/null/v8"

	"gmao-system/internal/entities"
)

type CreateEquipmentDTO struct {
	Name             string  `json:"name" validate:"required,max=255"`
	Model            *string `json:"model" validate:"omitempty,max=255"`
	Manufacturer     *string `json:"manufacturer" validate:"omitempty,max=255"`
	SerialNumber     *string `json:"serial_number" validate:"omitempty,max=255"`
	Status           string  `json:"status" validate:"omitempty,equipment_status"`
	HealthPercentage *int    `json:"health_percentage" validate:"omitempty,min=0,max=100"`
	Description      *string `json:"description"`
	BuildingID       *uint64 `json:"building_id" validate:"omitempty,gt=0"`
	ServiceID        *uint64 `json:"service_id" validate:"omitempty,gt=0"`
	LocationID       *uint64 `json:"location_id" validate:"omitempty,gt=0"`

	// Группы при создании; описание подтягивается из групп, если своё пустое.
	GroupIDs []uint64 `json:"group_ids" validate:"omitempty,dive,gt=0"`
}

// UpdateEquipmentDTO - частичное обновление. null.* отличает "не передано" от "null".
type UpdateEquipmentDTO struct {
	Name             null.String `json:"name" validate:"omitempty,max=255"`
	Model            null.String `json:"model" validate:"omitempty,max=255"`
	Manufacturer     null.String `json:"manufacturer" validate:"omitempty,max=255"`
	SerialNumber     null.String `json:"serial_number" validate:"omitempty,max=255"`
	Status           null.String `json:"status" validate:"omitempty,equipment_status"`
	HealthPercentage null.Int    `json:"health_percentage" validate:"omitempty,min=0,max=100"`
	Description      null.String `json:"description"`
	BuildingID       null.Uint64 `json:"building_id"`
	ServiceID        null.Uint64 `json:"service_id"`
	LocationID       null.Uint64 `json:"location_id"`
}

type EquipmentDetailsDTO struct {
	entities.Equipment
	GroupIDs []uint64 `json:"group_ids"`
}

type EquipmentHistoryListDTO struct {
	List  []entities.EquipmentHistory `json:"list"`
	Total uint64                      `json:"total"`
}
