package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalFileStorage(base)
	require.NoError(t, err)

	path, err := storage.Save(strings.NewReader("png-bytes"), "pump.png", "equipments")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "equipments/"))
	assert.Equal(t, ".png", filepath.Ext(path))

	content, err := os.ReadFile(filepath.Join(base, path))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, storage.Delete(PublicURL(path)))
	_, err = os.Stat(filepath.Join(base, path))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, storage.Delete(path))
}

func TestLocalFileStorage_DeleteRejectsTraversal(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, storage.Delete("../etc/passwd"))
	assert.Error(t, storage.Delete(""))
}
