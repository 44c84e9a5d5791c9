package entities

import "gmao-system/pkg/types"

type Document struct {
	ID       uint64  `json:"id" db:"id"`
	Title    string  `json:"title" db:"title"`
	Category *string `json:"category" db:"category"`
	FilePath *string `json:"file_path" db:"file_path"`

	// Проекции связей: считаются из document_equipments / document_group_members,
	// напрямую не сохраняются.
	EquipmentIDs []uint64 `json:"equipment_ids" db:"-"`
	GroupIDs     []uint64 `json:"group_ids" db:"-"`

	types.BaseEntity
}
