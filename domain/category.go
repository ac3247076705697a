package domain

import "time"

// Category is a label attachable to many tasks. Categories are never removed
// from the store: delete marks the row and stamps the deletion time, and the
// default listings skip marked rows.
type Category struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:50;uniqueIndex;not null" json:"name"`
	IsDeleted bool       `gorm:"default:false" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Category) TableName() string { return "categories" }
