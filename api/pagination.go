package api

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskman-api/domain"
	"taskman-api/storage"
)

// PaginationStrategy selects how list endpoints slice their results. The
// strategy is fixed at deployment time; only the page-number strategy lets
// clients override the size per request.
type PaginationStrategy string

const (
	PaginatePageNumber  PaginationStrategy = "page"
	PaginateLimitOffset PaginationStrategy = "limitoffset"
	PaginateCursor      PaginationStrategy = "cursor"
)

const (
	defaultPageSize    = 3
	defaultLimit       = 5
	maxLimit           = 50
	defaultCursorSize  = 6
	cursorQueryParam   = "cursor"
	pageQueryParam     = "page"
	pageSizeQueryParam = "page_size"
	limitQueryParam    = "limit"
	offsetQueryParam   = "offset"
)

// Paginator parses page parameters and wraps results in the envelope of the
// configured strategy.
type Paginator struct {
	Strategy   PaginationStrategy
	PageSize   int
	Limit      int
	MaxLimit   int
	CursorSize int
}

// NewPaginator builds a paginator for the named strategy.
func NewPaginator(strategy string) (*Paginator, error) {
	s := PaginationStrategy(strategy)
	switch s {
	case "", PaginatePageNumber:
		s = PaginatePageNumber
	case PaginateLimitOffset, PaginateCursor:
	default:
		return nil, fmt.Errorf("unknown pagination strategy %q", strategy)
	}
	return &Paginator{
		Strategy:   s,
		PageSize:   defaultPageSize,
		Limit:      defaultLimit,
		MaxLimit:   maxLimit,
		CursorSize: defaultCursorSize,
	}, nil
}

// Parse reads the strategy's query parameters into page bounds. In cursor
// mode one extra row is requested to detect whether a next page exists.
func (p *Paginator) Parse(c echo.Context) (storage.Page, error) {
	switch p.Strategy {
	case PaginateLimitOffset:
		limit, err := intParam(c, limitQueryParam, p.Limit)
		if err != nil {
			return storage.Page{}, err
		}
		if limit > p.MaxLimit {
			limit = p.MaxLimit
		}
		offset, err := intParam(c, offsetQueryParam, 0)
		if err != nil {
			return storage.Page{}, err
		}
		return storage.Page{Limit: limit, Offset: offset}, nil

	case PaginateCursor:
		after := uint(0)
		if raw := c.QueryParam(cursorQueryParam); raw != "" {
			id, err := decodeCursor(raw)
			if err != nil {
				return storage.Page{}, err
			}
			after = id
		}
		return storage.Page{Limit: p.CursorSize + 1, AfterID: &after}, nil

	default:
		size, err := intParam(c, pageSizeQueryParam, p.PageSize)
		if err != nil {
			return storage.Page{}, err
		}
		page, err := intParam(c, pageQueryParam, 1)
		if err != nil {
			return storage.Page{}, err
		}
		if page < 1 {
			return storage.Page{}, domain.NewValidationError(pageQueryParam, "invalid page")
		}
		return storage.Page{Limit: size, Offset: (page - 1) * size}, nil
	}
}

// listEnvelope is the page-number and limit-offset response shape.
type listEnvelope struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// cursorEnvelope is the cursor response shape. The total count is deliberately
// absent: computing it defeats the point of keyed pagination.
type cursorEnvelope struct {
	Next    *string `json:"next"`
	Results any     `json:"results"`
}

// wrapPage builds the strategy's envelope around one fetched page. idOf
// extracts primary keys for cursor continuation.
func wrapPage[T any](p *Paginator, c echo.Context, page storage.Page, items []T, total int64, idOf func(T) uint) any {
	if p.Strategy == PaginateCursor {
		var next *string
		if len(items) > p.CursorSize {
			items = items[:p.CursorSize]
			token := encodeCursor(idOf(items[len(items)-1]))
			next = &token
		}
		return cursorEnvelope{Next: next, Results: items}
	}

	env := listEnvelope{Count: total, Results: items}
	if page.Limit > 0 {
		if int64(page.Offset+len(items)) < total {
			env.Next = p.pageURL(c, page, page.Offset+page.Limit)
		}
		if page.Offset > 0 {
			prev := page.Offset - page.Limit
			if prev < 0 {
				prev = 0
			}
			env.Previous = p.pageURL(c, page, prev)
		}
	}
	return env
}

// pageURL rebuilds the request URL pointing at the given offset, expressed in
// the parameters of the active strategy.
func (p *Paginator) pageURL(c echo.Context, page storage.Page, offset int) *string {
	u := *c.Request().URL
	q := u.Query()
	if p.Strategy == PaginateLimitOffset {
		q.Set(limitQueryParam, strconv.Itoa(page.Limit))
		q.Set(offsetQueryParam, strconv.Itoa(offset))
	} else {
		q.Set(pageQueryParam, strconv.Itoa(offset/page.Limit+1))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func encodeCursor(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func decodeCursor(raw string) (uint, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return 0, domain.NewValidationError(cursorQueryParam, "invalid cursor")
	}
	id, err := strconv.ParseUint(string(decoded), 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(cursorQueryParam, "invalid cursor")
	}
	return uint(id), nil
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "invalid "+name)
	}
	if n == 0 && (name == pageSizeQueryParam || name == limitQueryParam) {
		return 0, domain.NewValidationError(name, "invalid "+name)
	}
	return n, nil
}
