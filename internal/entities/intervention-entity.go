package entities

import (
	"sort"
	"time"

	"gmao-system/pkg/types"
)

type PartUsage struct {
	PartID   uint64 `json:"part_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// TechnicianWork - работа одного техника в рамках вмешательства.
type TechnicianWork struct {
	TechnicianName string      `json:"technician_name" validate:"required"`
	StartDate      time.Time   `json:"start_date" validate:"required"`
	EndDate        *time.Time  `json:"end_date,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	PartsUsed      []PartUsage `json:"parts_used,omitempty" validate:"omitempty,dive"`
}

type Intervention struct {
	ID                uint64           `json:"id" db:"id"`
	EquipmentID       uint64           `json:"equipment_id" db:"equipment_id"`
	Title             string           `json:"title" db:"title"`
	Status            string           `json:"status" db:"status"`
	ScheduledAt       *time.Time       `json:"scheduled_at" db:"scheduled_at"`
	CompletedAt       *time.Time       `json:"completed_at" db:"completed_at"`
	TechnicianHistory []TechnicianWork `json:"technician_history" db:"technician_history"`
	PartsUsed         []PartUsage      `json:"parts_used" db:"parts_used"`

	types.BaseEntity
}

// AggregatePartsUsed суммирует запчасти по всем записям техников, сортировка по PartID.
func AggregatePartsUsed(history []TechnicianWork) []PartUsage {
	totals := make(map[uint64]int)
	for _, work := range history {
		for _, usage := range work.PartsUsed {
			totals[usage.PartID] += usage.Quantity
		}
	}

	res := make([]PartUsage, 0, len(totals))
	for partID, qty := range totals {
		res = append(res, PartUsage{PartID: partID, Quantity: qty})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].PartID < res[j].PartID })
	return res
}
