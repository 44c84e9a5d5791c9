package validation

import (
	"github.com/go-playground/validator/v10"

	"gmao-system/pkg/constants"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("equipment_status", isEquipmentStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("intervention_status", isInterventionStatus); err != nil {
		return err
	}
	return nil
}

func isEquipmentStatus(fl validator.FieldLevel) bool {
	return constants.IsEquipmentStatus(fl.Field().String())
}

func isInterventionStatus(fl validator.FieldLevel) bool {
	return constants.IsInterventionStatus(fl.Field().String())
}
