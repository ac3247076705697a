package storage

// Page bounds one slice of a listing. Limit/Offset drive the page-number and
// limit-offset strategies; a non-nil AfterID switches the query to cursor
// mode, ordered by primary key.
type Page struct {
	Limit   int
	Offset  int
	AfterID *uint
}

// Ordering selects the created_at sort direction for listings.
type Ordering string

const (
	OrderNewestFirst Ordering = "created_at DESC"
	OrderOldestFirst Ordering = "created_at ASC"
)
