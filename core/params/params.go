package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"nuon-api/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
	Filters    map[string]string
}

// NewQueryParams reads page, limit (or page_size) and search from the request
// query. Out-of-range values fall back to defaults; limit is capped, and page
// is capped so the row offset fits in an int4.
func NewQueryParams(c echo.Context) *QueryParams {
	q := c.QueryParams()
	p := &QueryParams{
		PageNumber: constants.DefaultPageNumber,
		PageSize:   constants.DefaultPageSize,
		Search:     strings.TrimSpace(q.Get("search")),
		Filters:    map[string]string{},
	}

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.PageNumber = n
	}

	size := q.Get("limit")
	if size == "" {
		size = q.Get("page_size")
	}
	if n, err := strconv.Atoi(size); err == nil && n > 0 {
		p.PageSize = n
	}
	if p.PageSize > constants.MaxPageSize {
		p.PageSize = constants.MaxPageSize
	}
	if maxPage := maxOffset / p.PageSize; p.PageNumber > maxPage {
		p.PageNumber = maxPage
	}
	return p
}

const maxOffset = math.MaxInt32

func (p *QueryParams) Add(key, value string) {
	if p.Filters == nil {
		p.Filters = map[string]string{}
	}
	p.Filters[key] = value
}

func (p QueryParams) Get(key string) string {
	return p.Filters[key]
}

func (p QueryParams) Offset() int {
	if p.PageNumber < 1 || p.PageSize < 1 {
		return 0
	}
	return min(p.PageNumber-1, maxOffset/p.PageSize) * p.PageSize
}

// Encode renders the params as a stable query string, used as a cache key suffix.
func (p QueryParams) Encode() string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.PageNumber))
	v.Set("limit", strconv.Itoa(p.PageSize))
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	for k, val := range p.Filters {
		v.Set(k, val)
	}
	return v.Encode()
}
