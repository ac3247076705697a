package storage

import (
	"context"
	"errors"
	"testing"

	"taskman-api/domain"
)

func TestCategorySoftDelete(t *testing.T) {
	db := newTestDB(t)
	store := NewCategoryStore(db)
	ctx := context.Background()

	keep := domain.Category{Name: "keep"}
	drop := domain.Category{Name: "drop"}
	for _, c := range []*domain.Category{&keep, &drop} {
		if err := store.Create(ctx, c); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	if err := store.SoftDelete(ctx, drop.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	active, total, err := store.List(ctx, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(active) != 1 || active[0].Name != "keep" {
		t.Fatalf("default listing should skip deleted rows, got %v", active)
	}

	all, total, err := store.ListAll(ctx, Page{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("all listing should include deleted rows, got %v", all)
	}

	got, err := store.Get(ctx, drop.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if !got.IsDeleted || got.DeletedAt == nil {
		t.Fatalf("expected deletion marker and timestamp, got %+v", got)
	}

	// Repeating the delete behaves like a missing row.
	err = store.SoftDelete(ctx, drop.ID)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCategoryRename(t *testing.T) {
	db := newTestDB(t)
	store := NewCategoryStore(db)
	ctx := context.Background()

	a := domain.Category{Name: "alpha"}
	b := domain.Category{Name: "beta"}
	for _, c := range []*domain.Category{&a, &b} {
		if err := store.Create(ctx, c); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	err := store.Rename(ctx, &a, "beta")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("renaming onto another category should fail, got %v", err)
	}

	if err := store.Rename(ctx, &a, "alpha"); err != nil {
		t.Fatalf("renaming to own name should pass: %v", err)
	}
	if err := store.Rename(ctx, &a, "gamma"); err != nil {
		t.Fatalf("renaming to a free name should pass: %v", err)
	}
}

func TestCategoryCreateDuplicate(t *testing.T) {
	store := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Create(ctx, &domain.Category{Name: "work"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Create(ctx, &domain.Category{Name: "work"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error on duplicate name, got %v", err)
	}
}

func TestCategoryCountTasks(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoryStore(db)
	tasks := NewTaskStore(db)
	ctx := context.Background()

	cat := domain.Category{Name: "work"}
	if err := categories.Create(ctx, &cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	mustCreateTask(t, tasks, &domain.Task{Title: "one", Status: domain.StatusNew, Deadline: date(1)}, []uint{cat.ID})
	mustCreateTask(t, tasks, &domain.Task{Title: "two", Status: domain.StatusNew, Deadline: date(1)}, []uint{cat.ID})
	mustCreateTask(t, tasks, &domain.Task{Title: "unrelated", Status: domain.StatusNew, Deadline: date(1)}, nil)

	count, err := categories.CountTasks(ctx, cat.ID)
	if err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	_, err = categories.CountTasks(ctx, 999)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}
}
