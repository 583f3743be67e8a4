package pagination

import (
	"net/http/httptest"
	"testing"

	"transporteuni-api/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 1, 20, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"limit capped", 1, 500, 1, MaxLimit, 0},
		{"negative page", -3, 5, 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.limit, 20)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(New(2, 10, DefaultLimit), 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)

	meta = GetMeta(New(1, 10, DefaultLimit), 0)
	assert.Zero(t, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.False(t, meta.HasPrevPage)
}

func TestGetParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantErr    string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", "", 1, DefaultLimit, 0},
		{"explicit", "?page=3&limit=20", "", 3, 20, 40},
		{"max limit", "?limit=100", "", 1, MaxLimit, 0},
		{"page zero", "?page=0", "page must be", 0, 0, 0},
		{"negative page", "?page=-2", "page must be", 0, 0, 0},
		{"huge page", "?page=9223372036854775807", "page must be", 0, 0, 0},
		{"page not a number", "?page=two", "page must be", 0, 0, 0},
		{"limit zero", "?limit=0", "limit must be", 0, 0, 0},
		{"limit too large", "?limit=500", "limit must be", 0, 0, 0},
		{"limit not a number", "?limit=abc", "limit must be", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var (
				got    *Params
				gotErr error
			)
			app.Get("/", func(c *fiber.Ctx) error {
				got, gotErr = GetParams(c)
				return nil
			})

			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)

			if tt.wantErr != "" {
				de, ok := domain.AsError(gotErr)
				require.True(t, ok, "expected a domain error, got %v", gotErr)
				assert.Equal(t, domain.KindValidation, de.Kind)
				assert.Equal(t, 400, de.Status)
				assert.Contains(t, de.Message, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestNew_BoundsOffset(t *testing.T) {
	p := New(MaxPage+1, MaxLimit, DefaultLimit)
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*MaxLimit, p.Offset)
}
