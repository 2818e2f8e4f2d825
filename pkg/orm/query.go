package orm

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

// Pagination describes one page of a result set. Page is 1-based.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

const (
	defaultPerPage = 25
	maxPerPage     = 200
)

// PageFromRequest reads ?page= and ?per_page= with sane bounds.
func PageFromRequest(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// Paginate runs the query twice, once for the count and once for the page,
// and fills dest with the requested slice. The caller applies its own
// filters and ordering before handing the query over.
func Paginate(q *gorm.DB, page, perPage int, dest interface{}) (Pagination, error) {
	p := Pagination{Page: page, PerPage: perPage}

	if err := q.Session(&gorm.Session{}).Count(&p.Total).Error; err != nil {
		return p, err
	}

	p.TotalPages = int((p.Total + int64(perPage) - 1) / int64(perPage))

	offset := (page - 1) * perPage
	if err := q.Offset(offset).Limit(perPage).Find(dest).Error; err != nil {
		return p, err
	}

	return p, nil
}

// ScopeStore restricts a query to one tenant.
func ScopeStore(storeID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("store_id = ?", storeID)
	}
}
