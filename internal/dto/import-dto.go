package dto

type ImportRowErrorDTO struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type ImportResultDTO struct {
	Created int                 `json:"created"`
	Updated int                 `json:"updated"`
	Skipped int                 `json:"skipped"`
	Errors  []ImportRowErrorDTO `json:"errors"`
}
