package utils

import (
	"strconv"
	"strings"
)

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func DiffPtr[T comparable](oldVal, newVal *T) bool {
	if oldVal == nil && newVal == nil {
		return false
	}
	if oldVal == nil || newVal == nil {
		return true
	}
	return *oldVal != *newVal
}

func ToPtr[T any](v T) *T {
	return &v
}

func PtrToString(v *uint64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatUint(*v, 10)
	return &s
}

// IsBlank - пустая строка или только пробелы (nil тоже пустой).
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// UniqueIDs убирает дубли и нули, сохраняя порядок.
func UniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	res := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
