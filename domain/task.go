package domain

import "time"

// Task is a top-level unit of work with a deadline and a status.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:50;uniqueIndex:idx_tasks_title_deadline" json:"title"`
	Description string     `json:"description"`
	Categories  []Category `gorm:"many2many:task_categories" json:"categories,omitempty"`
	Status      Status     `gorm:"size:15;default:N" json:"status"`
	Deadline    Date       `gorm:"uniqueIndex:idx_tasks_title_deadline" json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	OwnerID     *uint      `gorm:"index" json:"owner,omitempty"`
	Owner       *User      `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// SubTask is a unit of work scoped to exactly one parent task. Deleting the
// parent removes its subtasks in the same transaction.
type SubTask struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:50;uniqueIndex" json:"title"`
	Description string    `json:"description"`
	TaskID      uint      `gorm:"not null;index" json:"task"`
	Task        *Task     `gorm:"foreignKey:TaskID" json:"-"`
	Status      Status    `gorm:"size:15;default:N" json:"status"`
	Deadline    Date      `json:"deadline"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     *uint     `gorm:"index" json:"owner,omitempty"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"-"`
}

func (SubTask) TableName() string { return "subtasks" }

// OwnedBy reports whether the task belongs to the given user.
func (t *Task) OwnedBy(u *User) bool {
	return u != nil && t.OwnerID != nil && *t.OwnerID == u.ID
}

// OwnedBy reports whether the subtask belongs to the given user.
func (s *SubTask) OwnedBy(u *User) bool {
	return u != nil && s.OwnerID != nil && *s.OwnerID == u.ID
}
