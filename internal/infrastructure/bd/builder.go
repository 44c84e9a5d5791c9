package db

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"gmao-system/pkg/types"
)

// ApplyListParams применяет фильтры, поиск, сортировку и пагинацию.
// allowedMap - белый список "поле из запроса" -> "колонка БД".
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, searchColumns ...string) sq.SelectBuilder {
	builder = ApplyFilters(builder, filter, allowedMap, searchColumns...)
	builder = ApplySort(builder, filter, allowedMap)
	return ApplyPagination(builder, filter)
}

// ApplyFilters - только WHERE-часть, нужна и для COUNT(*).
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string, searchColumns ...string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" && len(searchColumns) > 0 {
		or := sq.Or{}
		for _, col := range searchColumns {
			or = append(or, sq.ILike{col: "%" + search + "%"})
		}
		builder = builder.Where(or)
	}
	return builder
}

func ApplySort(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	sorted := false
	for jsonField, dir := range filter.Sort {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(dir) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		sorted = true
	}
	if !sorted {
		if idCol, ok := allowedMap["id"]; ok {
			builder = builder.OrderBy(idCol + " ASC")
		}
	}
	return builder
}

func ApplyPagination(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}
	return builder
}
