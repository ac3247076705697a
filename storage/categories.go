package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskman-api/domain"
)

// CategoryStore handles category persistence. Categories are soft-deleted:
// List skips deleted rows, ListAll returns everything, Delete only flips the
// marker. Callers pick the semantics explicitly at each call site.
type CategoryStore struct {
	db *gorm.DB
}

func NewCategoryStore(db *gorm.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// Create inserts a category. Name collisions surface as a validation error
// backed by the unique constraint.
func (s *CategoryStore) Create(ctx context.Context, category *domain.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError("name", "category with this name already exists")
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// List returns non-deleted categories.
func (s *CategoryStore) List(ctx context.Context, page Page) ([]domain.Category, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx).Model(&domain.Category{}).Where("is_deleted = ?", false), page)
}

// ListAll returns every category including soft-deleted rows.
func (s *CategoryStore) ListAll(ctx context.Context, page Page) ([]domain.Category, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx).Model(&domain.Category{}), page)
}

func (s *CategoryStore) list(ctx context.Context, q *gorm.DB, page Page) ([]domain.Category, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	cats := []domain.Category{}
	if err := paginate(q, page, "name ASC", "id").Find(&cats).Error; err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return cats, total, nil
}

// Get fetches one category regardless of its deletion marker.
func (s *CategoryStore) Get(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Resource: "category"}
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

// Rename changes the category name. A different category already holding the
// new name fails validation; the unique constraint backstops the pre-check
// against concurrent renames.
func (s *CategoryStore) Rename(ctx context.Context, category *domain.Category, name string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Category{}).
		Where("name = ? AND id <> ?", name, category.ID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return domain.NewValidationError("name", "category with this name already exists")
	}
	category.Name = name
	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewValidationError("name", "category with this name already exists")
		}
		return fmt.Errorf("rename category: %w", err)
	}
	return nil
}

// SoftDelete marks the category deleted and stamps the deletion time. The row
// stays in place and tasks keep referencing it.
func (s *CategoryStore) SoftDelete(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now})
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Resource: "category"}
	}
	return nil
}

// CountTasks returns the number of tasks carrying the category.
func (s *CategoryStore) CountTasks(ctx context.Context, id uint) (int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.WithContext(ctx).Table("task_categories").
		Where("category_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count category tasks: %w", err)
	}
	return count, nil
}
