package dto

import "gmao-system/internal/entities"

const (
	ResolvedSourceDirect = "direct"
	ResolvedSourceGroup  = "group"
)

// ResolvedDocumentDTO - документ, видимый оборудованию, и путь, по которому он найден.
type ResolvedDocumentDTO struct {
	Document entities.Document `json:"document"`
	Source   string            `json:"source"`
	GroupID  *uint64           `json:"group_id,omitempty"`
}

type ResolvedPartDTO struct {
	Part    entities.Part `json:"part"`
	Source  string        `json:"source"`
	GroupID *uint64       `json:"group_id,omitempty"`
}
