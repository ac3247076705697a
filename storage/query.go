package storage

import (
	"strings"

	"gorm.io/gorm"
)

// paginate applies the page bounds. Cursor pages override the requested
// ordering: the opaque token encodes a primary key, so rows are walked in id
// order. idCol is qualified by callers whose queries join other tables.
func paginate(q *gorm.DB, page Page, ordering Ordering, idCol string) *gorm.DB {
	if page.AfterID != nil {
		q = q.Order(idCol + " ASC")
		if *page.AfterID > 0 {
			q = q.Where(idCol+" > ?", *page.AfterID)
		}
	} else {
		q = q.Order(string(ordering))
		if page.Offset > 0 {
			q = q.Offset(page.Offset)
		}
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	return q
}

func lowered(s string) string {
	return strings.ToLower(s)
}
