package dto

import "github.com/aarondl/null/v8"

type CreatePartDTO struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Reference    *string  `json:"reference" validate:"omitempty,max=255"`
	Quantity     int      `json:"quantity" validate:"min=0"`
	UnitPrice    float64  `json:"unit_price" validate:"min=0"`
	EquipmentIDs []uint64 `json:"equipment_ids" validate:"omitempty,dive,gt=0"`
	GroupIDs     []uint64 `json:"group_ids" validate:"omitempty,dive,gt=0"`
}

type UpdatePartDTO struct {
	Name         null.String  `json:"name" validate:"omitempty,max=255"`
	Reference    null.String  `json:"reference" validate:"omitempty,max=255"`
	Quantity     null.Int     `json:"quantity" validate:"omitempty,min=0"`
	UnitPrice    null.Float64 `json:"unit_price"`
	EquipmentIDs *[]uint64    `json:"equipment_ids" validate:"omitempty,dive,gt=0"`
	GroupIDs     *[]uint64    `json:"group_ids" validate:"omitempty,dive,gt=0"`
}
