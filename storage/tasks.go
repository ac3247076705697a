package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskman-api/domain"
)

// TaskFilter narrows task listings. Zero-valued fields are ignored.
type TaskFilter struct {
	Status   *domain.Status
	Deadline *domain.Date
	Search   string
	Weekday  *int
	Ordering Ordering
}

// TaskStore handles task persistence.
type TaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts the task and attaches the given categories. Title collisions
// on the same deadline date surface as a validation error backed by the
// composite unique constraint.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task, categoryIDs []uint) error {
	cats, err := s.categoriesByID(ctx, categoryIDs)
	if err != nil {
		return err
	}
	task.Categories = cats
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError("title", "task with this title already exists for this deadline")
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// List returns one page of tasks matching the filter plus the total match
// count before paging.
func (s *TaskStore) List(ctx context.Context, filter TaskFilter, page Page) ([]domain.Task, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Task{})

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Deadline != nil {
		q = q.Where("deadline = ?", filter.Deadline.Time)
	}
	if filter.Search != "" {
		pattern := "%" + lowered(filter.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Weekday != nil {
		q = q.Where(weekdayExpr(s.db)+" = ?", *filter.Weekday)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = OrderNewestFirst
	}
	tasks := []domain.Task{}
	if err := paginate(q.Preload("Categories"), page, ordering, "id").Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListByOwner returns the caller's own tasks, newest first, ignoring other
// filters but still bounded by the page.
func (s *TaskStore) ListByOwner(ctx context.Context, ownerID uint, page Page) ([]domain.Task, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Task{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	tasks := []domain.Task{}
	if err := paginate(q.Preload("Categories"), page, OrderNewestFirst, "id").Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Get fetches one task with its categories and owner.
func (s *TaskStore) Get(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("Owner").
		First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Resource: "task"}
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Update persists changed task fields. A non-nil categoryIDs replaces the
// category set; nil leaves it untouched.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task, categoryIDs []uint) error {
	var cats []domain.Category
	if categoryIDs != nil {
		var err error
		cats, err = s.categoriesByID(ctx, categoryIDs)
		if err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories", "CreatedAt").Save(task).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewValidationError("title", "task with this title already exists for this deadline")
			}
			return fmt.Errorf("update task: %w", err)
		}
		if categoryIDs != nil {
			if err := tx.Model(task).Association("Categories").Replace(cats); err != nil {
				return fmt.Errorf("update task categories: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the task, its join rows and all of its subtasks in one
// transaction.
func (s *TaskStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task domain.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Resource: "task"}
			}
			return fmt.Errorf("get task: %w", err)
		}
		if err := tx.Where("task_id = ?", id).Delete(&domain.SubTask{}).Error; err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		if err := tx.Model(&task).Association("Categories").Clear(); err != nil {
			return fmt.Errorf("clear task categories: %w", err)
		}
		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// Statistics aggregates the task counts reported by the admin endpoint.
// Statuses with no tasks are omitted from the by-status map.
func (s *TaskStore) Statistics(ctx context.Context) (*domain.TaskStatistics, error) {
	stats := &domain.TaskStatistics{ByStatus: map[string]int64{}}

	q := s.db.WithContext(ctx).Model(&domain.Task{})
	if err := q.Count(&stats.TotalTasks).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	var rows []struct {
		Status domain.Status
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&domain.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.Status.Label()] = row.Count
	}

	err = s.db.WithContext(ctx).Model(&domain.Task{}).
		Where("deadline < ? AND status <> ?", domain.Today().Time, domain.StatusDone).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}
	return stats, nil
}

func (s *TaskStore) categoriesByID(ctx context.Context, ids []uint) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cats []domain.Category
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	if len(cats) != len(ids) {
		return nil, domain.NewValidationError("categories", "unknown category id")
	}
	return cats, nil
}
