package dto

type UploadResultDTO struct {
	URL string `json:"url"`
}
