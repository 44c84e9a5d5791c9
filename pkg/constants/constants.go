// pkg/constants/constants.go
package constants

//============== UPLOAD CONTEXTS ==============

// UploadContext определяет тип для контекстов загрузки файлов.
type UploadContext string

const (
	UploadContextEquipmentImage UploadContext = "equipment_image"
	UploadContextGroupImage     UploadContext = "group_image"
	UploadContextDocumentFile   UploadContext = "document_file"
	UploadContextImport         UploadContext = "equipment_import"
)

// String возвращает строковое представление контекста.
func (uc UploadContext) String() string {
	return string(uc)
}

//============== EQUIPMENT STATUSES ==============

const (
	EquipmentStatusOperational = "operational"
	EquipmentStatusMaintenance = "maintenance"
	EquipmentStatusFaulty      = "faulty"
)

var EquipmentStatuses = []string{
	EquipmentStatusOperational,
	EquipmentStatusMaintenance,
	EquipmentStatusFaulty,
}

func IsEquipmentStatus(s string) bool {
	for _, status := range EquipmentStatuses {
		if status == s {
			return true
		}
	}
	return false
}

//============== INTERVENTION STATUSES ==============

const (
	InterventionStatusPlanned    = "planned"
	InterventionStatusInProgress = "in_progress"
	InterventionStatusDone       = "done"
	InterventionStatusCancelled  = "cancelled"
)

func IsInterventionStatus(s string) bool {
	switch s {
	case InterventionStatusPlanned, InterventionStatusInProgress, InterventionStatusDone, InterventionStatusCancelled:
		return true
	}
	return false
}

//============== CACHE KEYS ==============

const (
	// Счётчик поколений связей. Любое изменение связей его увеличивает,
	// поэтому старые ключи выборок просто перестают читаться.
	CacheKeyJunctionGeneration = "gmao:junction:generation"

	// Формат: gmao:resolve:<kind>:<generation>:<equipmentID>
	CacheKeyResolved = "gmao:resolve:%s:%d:%d"
)
