// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(query string) PaginationParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paramsForQuery("")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsClampsBadInput(t *testing.T) {
	params := paramsForQuery("page=0&limit=500&order=sideways")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsPassthrough(t *testing.T) {
	params := paramsForQuery("page=3&limit=50&sort=order_date&order=asc&search=tolkien")

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.Limit)
	assert.Equal(t, "order_date", params.Sort)
	assert.Equal(t, "asc", params.Order)
	assert.Equal(t, "tolkien", params.Search)
}

func TestCreatePaginationResult(t *testing.T) {
	params := PaginationParams{Page: 2, Limit: 20}
	result := CreatePaginationResult([]string{"a"}, 45, params)

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, int64(45), result.Total)
	assert.Equal(t, 3, result.TotalPages)
}
