package entities

import (
	"gmao-system/pkg/types"
)

type Equipment struct {
	ID               uint64  `json:"id" db:"id"`
	Name             string  `json:"name" db:"name"`
	Model            *string `json:"model" db:"model"`
	Manufacturer     *string `json:"manufacturer" db:"manufacturer"`
	SerialNumber     *string `json:"serial_number" db:"serial_number"`
	Status           string  `json:"status" db:"status"`
	HealthPercentage int     `json:"health_percentage" db:"health_percentage"`
	ImagePath        *string `json:"image_path" db:"image_path"`
	Description      *string `json:"description" db:"description"`
	BuildingID       *uint64 `json:"building_id" db:"building_id"`
	ServiceID        *uint64 `json:"service_id" db:"service_id"`
	LocationID       *uint64 `json:"location_id" db:"location_id"`

	types.BaseEntity // CreatedAt, UpdatedAt
}

type EquipmentStatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int64  `json:"count" db:"count"`
}

type EquipmentStats struct {
	Total         int64                  `json:"total"`
	AverageHealth float64                `json:"average_health"`
	ByStatus      []EquipmentStatusCount `json:"by_status"`
}
