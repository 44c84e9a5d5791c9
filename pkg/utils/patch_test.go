package utils

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

func TestPatchOptionalString(t *testing.T) {
	current := ToPtr("старое")

	assert.False(t, PatchOptionalString(&current, null.String{}))
	assert.Equal(t, "старое", *current)

	assert.True(t, PatchOptionalString(&current, null.StringFrom("  новое ")))
	assert.Equal(t, "новое", *current)

	assert.False(t, PatchOptionalString(&current, null.StringFrom("новое")))

	assert.True(t, PatchOptionalString(&current, null.StringFrom("   ")))
	assert.Nil(t, current)
}

func TestPatchString_IgnoresBlank(t *testing.T) {
	name := "Насос"
	assert.False(t, PatchString(&name, null.StringFrom(" ")))
	assert.Equal(t, "Насос", name)
	assert.True(t, PatchString(&name, null.StringFrom("Компрессор")))
	assert.Equal(t, "Компрессор", name)
}

func TestPatchOptionalUint64(t *testing.T) {
	var building *uint64
	assert.True(t, PatchOptionalUint64(&building, null.Uint64From(5)))
	assert.Equal(t, uint64(5), *building)
	assert.True(t, PatchOptionalUint64(&building, null.Uint64From(0)))
	assert.Nil(t, building)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, UniqueIDs([]uint64{3, 0, 1, 3, 2, 1}))
	assert.Empty(t, UniqueIDs(nil))
}
