package db

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmao-system/pkg/types"
)

var allowed = map[string]string{
	"id":     "e.id",
	"status": "e.status",
	"name":   "e.name",
}

func TestApplyListParams(t *testing.T) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	t.Run("фильтр со списком, сортировка и пагинация", func(t *testing.T) {
		filter := types.Filter{
			Filter:         map[string]interface{}{"status": "faulty,maintenance", "unknown": "x"},
			Sort:           map[string]string{"name": "desc"},
			Limit:          10,
			Offset:         20,
			WithPagination: true,
		}
		query, args, err := ApplyListParams(psql.Select("e.id").From("equipments e"), filter, allowed).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT e.id FROM equipments e WHERE e.status IN ($1,$2) ORDER BY e.name DESC LIMIT 10 OFFSET 20", query)
		assert.Equal(t, []interface{}{"faulty", "maintenance"}, args)
	})

	t.Run("поиск и сортировка по умолчанию", func(t *testing.T) {
		filter := types.Filter{Search: "pump"}
		query, args, err := ApplyListParams(psql.Select("e.id").From("equipments e"), filter, allowed, "e.name", "e.model").ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT e.id FROM equipments e WHERE (e.name ILIKE $1 OR e.model ILIKE $2) ORDER BY e.id ASC", query)
		assert.Equal(t, []interface{}{"%pump%", "%pump%"}, args)
	})
}
