package entities

import "time"

// EquipmentHistory - запись журнала изменений оборудования, только добавление.
type EquipmentHistory struct {
	ID          uint64    `json:"id" db:"id"`
	EquipmentID uint64    `json:"equipment_id" db:"equipment_id"`
	FieldName   string    `json:"field_name" db:"field_name"`
	OldValue    *string   `json:"old_value" db:"old_value"`
	NewValue    *string   `json:"new_value" db:"new_value"`
	ChangedBy   string    `json:"changed_by" db:"changed_by"`
	ChangedAt   time.Time `json:"changed_at" db:"changed_at"`
}
