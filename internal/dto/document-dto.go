package dto

import "github.com/aarondl/null/v8"

type CreateDocumentDTO struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Category     *string  `json:"category" validate:"omitempty,max=100"`
	FilePath     *string  `json:"file_path"`
	EquipmentIDs []uint64 `json:"equipment_ids" validate:"omitempty,dive,gt=0"`
	GroupIDs     []uint64 `json:"group_ids" validate:"omitempty,dive,gt=0"`
}

type UpdateDocumentDTO struct {
	Title        null.String `json:"title" validate:"omitempty,max=255"`
	Category     null.String `json:"category" validate:"omitempty,max=100"`
	FilePath     null.String `json:"file_path"`
	EquipmentIDs *[]uint64   `json:"equipment_ids" validate:"omitempty,dive,gt=0"`
	GroupIDs     *[]uint64   `json:"group_ids" validate:"omitempty,dive,gt=0"`
}
