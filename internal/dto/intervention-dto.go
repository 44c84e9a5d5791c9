package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"gmao-system/internal/entities"
)

type CreateInterventionDTO struct {
	EquipmentID       uint64                    `json:"equipment_id" validate:"required,gt=0"`
	Title             string                    `json:"title" validate:"required,max=255"`
	Status            string                    `json:"status" validate:"omitempty,intervention_status"`
	ScheduledAt       *time.Time                `json:"scheduled_at"`
	TechnicianHistory []entities.TechnicianWork `json:"technician_history" validate:"omitempty,dive"`
}

type UpdateInterventionDTO struct {
	Title             null.String                `json:"title" validate:"omitempty,max=255"`
	Status            null.String                `json:"status" validate:"omitempty,intervention_status"`
	ScheduledAt       null.Time                  `json:"scheduled_at"`
	CompletedAt       null.Time                  `json:"completed_at"`
	TechnicianHistory *[]entities.TechnicianWork `json:"technician_history" validate:"omitempty,dive"`
}
