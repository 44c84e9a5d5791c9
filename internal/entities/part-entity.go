package entities

import "gmao-system/pkg/types"

type Part struct {
	ID        uint64  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Reference *string `json:"reference" db:"reference"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`

	// Проекции связей (part_equipments / part_group_members).
	EquipmentIDs []uint64 `json:"equipment_ids" db:"-"`
	GroupIDs     []uint64 `json:"group_ids" db:"-"`

	types.BaseEntity
}
