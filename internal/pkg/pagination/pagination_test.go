package pagination_test

import (
	"testing"

	"nalanda-lms/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
)

func TestGetMeta(t *testing.T) {
	meta := pagination.GetMeta(&pagination.Params{Page: 2, Limit: 20}, 45)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, int64(45), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestGetMetaExactPages(t *testing.T) {
	meta := pagination.GetMeta(&pagination.Params{Page: 2, Limit: 20}, 40)

	assert.Equal(t, 2, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestGetMetaEmpty(t *testing.T) {
	meta := pagination.GetMeta(&pagination.Params{Page: 1, Limit: 20}, 0)

	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b"}
	resp := pagination.NewResponse(data, &pagination.Params{Page: 1, Limit: 20}, 2)

	assert.Equal(t, data, resp.Data)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}
