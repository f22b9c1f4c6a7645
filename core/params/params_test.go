package params

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestNewQueryParams(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantPage int
		wantSize int
	}{
		{name: "defaults", target: "/", wantPage: 1, wantSize: 10},
		{name: "explicit", target: "/?page=3&limit=25", wantPage: 3, wantSize: 25},
		{name: "page_size alias", target: "/?page_size=5", wantPage: 1, wantSize: 5},
		{name: "capped", target: "/?limit=1000", wantPage: 1, wantSize: 100},
		{name: "garbage", target: "/?page=-2&limit=abc", wantPage: 1, wantSize: 10},
		{name: "huge page", target: "/?page=100000000000000000&limit=100", wantPage: 21474836, wantSize: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewQueryParams(newContext(tt.target))
			assert.Equal(t, tt.wantPage, p.PageNumber)
			assert.Equal(t, tt.wantSize, p.PageSize)
		})
	}
}

func TestQueryParams_OffsetAndEncode(t *testing.T) {
	p := QueryParams{PageNumber: 3, PageSize: 20}
	p.Add("upcoming", "true")

	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, "limit=20&page=3&upcoming=true", p.Encode())
	assert.Equal(t, "true", p.Get("upcoming"))
}

func TestQueryParams_OffsetNeverOverflows(t *testing.T) {
	p := NewQueryParams(newContext("/?page=100000000000000000&limit=100"))
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.LessOrEqual(t, p.Offset(), math.MaxInt32)

	raw := QueryParams{PageNumber: math.MaxInt64 / 10, PageSize: 100}
	assert.GreaterOrEqual(t, raw.Offset(), 0)
	assert.LessOrEqual(t, raw.Offset(), math.MaxInt32)
}
