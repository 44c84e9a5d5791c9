package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

var UploadContexts = map[string]UploadConfig{
	"equipment_image": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxSizeMB:        10,
		PathPrefix:       "equipments",
	},
	"group_image": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxSizeMB:        10,
		PathPrefix:       "equipment-groups",
	},
	"document_file": {
		AllowedMimeTypes: []string{
			"image/jpeg", "image/png", "application/pdf", "application/zip",
		},
		MaxSizeMB:  50,
		PathPrefix: "documents",
	},
	// xlsx определяется как zip
	"equipment_import": {
		AllowedMimeTypes: []string{"application/zip", "application/octet-stream"},
		MaxSizeMB:        20,
		PathPrefix:       "imports",
	},
}
