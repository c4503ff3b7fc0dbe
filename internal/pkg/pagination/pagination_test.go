package pagination

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetParams(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(GetParams(c, StaffMaxLimit))
	})

	tests := []struct {
		query string
		page  int
		limit int
	}{
		{"", 1, DefaultLimit},
		{"?page=3&limit=10", 3, 10},
		{"?page=0&limit=0", 1, DefaultLimit},
		{"?page=abc&limit=-4", 1, DefaultLimit},
		{"?limit=500", 1, StaffMaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)

			var got Params
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
		})
	}
}

func TestGetParamsOffset(t *testing.T) {
	app := fiber.New()
	var got *Params
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetParams(c, 0)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?page=4&limit=100", nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, got.Limit)
	assert.Equal(t, 3*DefaultLimit, got.Offset)
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(&Params{Page: 2, Limit: 10, Offset: 10}, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = GetMeta(&Params{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)

	meta = GetMeta(&Params{Page: 5, Limit: 50}, 250)
	assert.Equal(t, 5, meta.TotalPages)
	assert.False(t, meta.HasNext)
}
