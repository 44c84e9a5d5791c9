package dto

// DeletionReportDTO - что было удалено вместе с оборудованием.
type DeletionReportDTO struct {
	EquipmentID          uint64   `json:"equipment_id"`
	InterventionsDeleted int64    `json:"interventions_deleted"`
	HistoryDeleted       int64    `json:"history_deleted"`
	DocumentsDetached    []uint64 `json:"documents_detached"`
	DocumentsDeleted     []uint64 `json:"documents_deleted"`
	PartsDetached        []uint64 `json:"parts_detached"`
	PartsDeleted         []uint64 `json:"parts_deleted"`
	GroupsLeft           []uint64 `json:"groups_left"`
	GroupsDeleted        []uint64 `json:"groups_deleted"`
	ImageDeleted         bool     `json:"image_deleted"`
	// Warnings - проблемы, не отменившие удаление (например, файл не удалился).
	Warnings []string `json:"warnings,omitempty"`
}
