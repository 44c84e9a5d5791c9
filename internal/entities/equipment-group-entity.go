package entities

import "gmao-system/pkg/types"

// EquipmentGroup - логическая группа оборудования с общими описанием, документами и запчастями.
type EquipmentGroup struct {
	ID          uint64  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	ImagePath   *string `json:"image_path" db:"image_path"`

	types.BaseEntity
}
