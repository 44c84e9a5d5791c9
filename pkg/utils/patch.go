package utils

import (
	"strings"
	"time"

	"github.com/aarondl/null/v8"
)

// Частичное обновление: невалидное null-поле ("не передано" или null) ничего не меняет.
// Для необязательных полей пустое значение ("" или 0) очищает поле.

func PatchString(dst *string, v null.String) bool {
	if !v.Valid {
		return false
	}
	val := strings.TrimSpace(v.String)
	if val == "" || val == *dst {
		return false
	}
	*dst = val
	return true
}

func PatchOptionalString(dst **string, v null.String) bool {
	if !v.Valid {
		return false
	}
	var next *string
	if val := strings.TrimSpace(v.String); val != "" {
		next = &val
	}
	if !DiffPtr(*dst, next) {
		return false
	}
	*dst = next
	return true
}

func PatchInt(dst *int, v null.Int) bool {
	if !v.Valid || v.Int == *dst {
		return false
	}
	*dst = v.Int
	return true
}

func PatchFloat(dst *float64, v null.Float64) bool {
	if !v.Valid || v.Float64 == *dst {
		return false
	}
	*dst = v.Float64
	return true
}

func PatchOptionalUint64(dst **uint64, v null.Uint64) bool {
	if !v.Valid {
		return false
	}
	var next *uint64
	if v.Uint64 != 0 {
		val := v.Uint64
		next = &val
	}
	if !DiffPtr(*dst, next) {
		return false
	}
	*dst = next
	return true
}

func PatchOptionalTime(dst **time.Time, v null.Time) bool {
	if !v.Valid {
		return false
	}
	val := v.Time
	if *dst != nil && (*dst).Equal(val) {
		return false
	}
	*dst = &val
	return true
}

// TrimmedOrNil - пустая строка из формы превращается в NULL.
func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
