// pkg/filestorage/local_filestorage.go

package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorageInterface - хранилище бинарных файлов по ключу (относительному пути).
// Удаление строки в БД не удаляет файл: это отдельный шаг.
type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(filePath string) error
}

// PublicPrefix - под этим префиксом сервер отдаёт сохранённые файлы.
const PublicPrefix = "/uploads/"

// PublicURL превращает путь из Save в ссылку для клиента.
func PublicURL(filePath string) string {
	return PublicPrefix + strings.TrimPrefix(filePath, "/")
}

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию: %w", err)
		}
	}
	return &LocalFileStorage{basePath: basePath}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	ext := filepath.Ext(originalFileName)
	uniqueFileName := fmt.Sprintf("%s-%s%s", time.Now().Format("2006-01-02"), uuid.New().String(), ext)

	datePath := time.Now().Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)

	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

// Delete принимает как "prefix/2024/08/21/file.jpg", так и "/uploads/prefix/...".
func (s *LocalFileStorage) Delete(fileURL string) error {
	relativePath := strings.TrimPrefix(strings.TrimPrefix(fileURL, PublicPrefix), "/")
	if relativePath == "" || strings.Contains(relativePath, "..") {
		return fmt.Errorf("недопустимый путь файла: %q", fileURL)
	}

	fullPath := filepath.Join(s.basePath, relativePath)

	// Если файла и так нет, считаем операцию успешной.
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(fullPath)
}
