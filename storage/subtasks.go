package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskman-api/domain"
)

// SubTaskFilter narrows subtask listings. TaskTitle matches the parent task
// title partially and case-insensitively.
type SubTaskFilter struct {
	Status    *domain.Status
	Deadline  *domain.Date
	Search    string
	TaskTitle string
	Ordering  Ordering
}

// SubTaskStore handles subtask persistence.
type SubTaskStore struct {
	db *gorm.DB
}

func NewSubTaskStore(db *gorm.DB) *SubTaskStore {
	return &SubTaskStore{db: db}
}

// Create inserts the subtask after checking the parent task exists.
func (s *SubTaskStore) Create(ctx context.Context, subtask *domain.SubTask) error {
	if err := s.requireTask(ctx, subtask.TaskID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(subtask).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError("title", "subtask with this title already exists")
		}
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

// List returns one page of subtasks matching the filter plus the total match
// count before paging.
func (s *SubTaskStore) List(ctx context.Context, filter SubTaskFilter, page Page) ([]domain.SubTask, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.SubTask{})

	if filter.Status != nil {
		q = q.Where("subtasks.status = ?", *filter.Status)
	}
	if filter.Deadline != nil {
		q = q.Where("subtasks.deadline = ?", filter.Deadline.Time)
	}
	if filter.Search != "" {
		pattern := "%" + lowered(filter.Search) + "%"
		q = q.Where("LOWER(subtasks.title) LIKE ? OR LOWER(subtasks.description) LIKE ?", pattern, pattern)
	}
	if filter.TaskTitle != "" {
		q = q.Joins("JOIN tasks ON tasks.id = subtasks.task_id").
			Where("LOWER(tasks.title) LIKE ?", "%"+lowered(filter.TaskTitle)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subtasks: %w", err)
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = OrderNewestFirst
	}
	subtasks := []domain.SubTask{}
	if err := paginate(q, page, subtaskOrdering(ordering), "subtasks.id").Find(&subtasks).Error; err != nil {
		return nil, 0, fmt.Errorf("list subtasks: %w", err)
	}
	return subtasks, total, nil
}

// ListByOwner returns the caller's own subtasks, newest first.
func (s *SubTaskStore) ListByOwner(ctx context.Context, ownerID uint, page Page) ([]domain.SubTask, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.SubTask{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subtasks: %w", err)
	}
	subtasks := []domain.SubTask{}
	if err := paginate(q, page, OrderNewestFirst, "subtasks.id").Find(&subtasks).Error; err != nil {
		return nil, 0, fmt.Errorf("list subtasks: %w", err)
	}
	return subtasks, total, nil
}

// Get fetches one subtask.
func (s *SubTaskStore) Get(ctx context.Context, id uint) (*domain.SubTask, error) {
	var subtask domain.SubTask
	err := s.db.WithContext(ctx).First(&subtask, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Resource: "subtask"}
	}
	if err != nil {
		return nil, fmt.Errorf("get subtask: %w", err)
	}
	return &subtask, nil
}

// Update persists changed subtask fields.
func (s *SubTaskStore) Update(ctx context.Context, subtask *domain.SubTask) error {
	if err := s.requireTask(ctx, subtask.TaskID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Omit("CreatedAt").Save(subtask).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError("title", "subtask with this title already exists")
		}
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

// Delete removes the subtask.
func (s *SubTaskStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.SubTask{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete subtask: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Resource: "subtask"}
	}
	return nil
}

func (s *SubTaskStore) requireTask(ctx context.Context, taskID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if count == 0 {
		return domain.NewValidationError("task", "unknown task id")
	}
	return nil
}

// subtaskOrdering qualifies the sort column, the task-title filter join makes
// bare created_at ambiguous on some dialects.
func subtaskOrdering(o Ordering) Ordering {
	switch o {
	case OrderOldestFirst:
		return "subtasks.created_at ASC"
	default:
		return "subtasks.created_at DESC"
	}
}
