package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"gmao-system/config"
)

// ValidateFile проверяет размер и MIME-тип файла
// contextName - ключ из config.UploadContexts (например, "equipment_image")
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("внутренняя ошибка: неизвестный контекст загрузки '%s'", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return fmt.Errorf("размер файла (%.2f MB) превышает лимит в %d MB", float64(fileHeader.Size)/1024/1024, rules.MaxSizeMB)
		}
	}

	// Magic numbers: первые 512 байт
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		return fmt.Errorf("ошибка чтения файла")
	}

	// Возвращаем курсор в начало, файл дальше сохраняется целиком
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("ошибка обработки файла")
	}

	mimeType := http.DetectContentType(buffer)

	// SVG/XML часто определяются как text/plain
	if isPossibleXml(mimeType) && isSvgSignature(buffer) {
		mimeType = "image/svg+xml"
	}

	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return fmt.Errorf("недопустимый формат файла: %s", mimeType)
	}

	return nil
}

func isPossibleXml(mime string) bool {
	return mime == "text/plain; charset=utf-8" ||
		mime == "text/xml; charset=utf-8" ||
		mime == "application/octet-stream"
}

func isSvgSignature(buf []byte) bool {
	return len(buf) > 5 && (string(buf[:4]) == "<svg" || string(buf[:5]) == "<?xml")
}
