package storage

import (
	"context"
	"errors"
	"testing"

	"taskman-api/domain"
)

func TestSubTaskTitleUnique(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	subtasks := NewSubTaskStore(db)
	ctx := context.Background()

	parent := domain.Task{Title: "parent", Status: domain.StatusNew, Deadline: date(1)}
	mustCreateTask(t, tasks, &parent, nil)

	first := domain.SubTask{Title: "step", TaskID: parent.ID, Status: domain.StatusNew, Deadline: date(1)}
	if err := subtasks.Create(ctx, &first); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	dup := domain.SubTask{Title: "step", TaskID: parent.ID, Status: domain.StatusNew, Deadline: date(2)}
	err := subtasks.Create(ctx, &dup)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error on duplicate title, got %v", err)
	}
}

func TestSubTaskCreateRequiresTask(t *testing.T) {
	subtasks := NewSubTaskStore(newTestDB(t))
	err := subtasks.Create(context.Background(), &domain.SubTask{Title: "orphan", TaskID: 99, Status: domain.StatusNew, Deadline: date(1)})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for missing parent, got %v", err)
	}
}

func TestSubTaskTaskTitleFilter(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	subtasks := NewSubTaskStore(db)
	ctx := context.Background()

	groceries := domain.Task{Title: "Buy Groceries", Status: domain.StatusNew, Deadline: date(1)}
	laundry := domain.Task{Title: "Do Laundry", Status: domain.StatusNew, Deadline: date(1)}
	mustCreateTask(t, tasks, &groceries, nil)
	mustCreateTask(t, tasks, &laundry, nil)

	for _, st := range []domain.SubTask{
		{Title: "milk", TaskID: groceries.ID, Status: domain.StatusNew, Deadline: date(1)},
		{Title: "bread", TaskID: groceries.ID, Status: domain.StatusNew, Deadline: date(1)},
		{Title: "whites", TaskID: laundry.ID, Status: domain.StatusNew, Deadline: date(1)},
	} {
		st := st
		if err := subtasks.Create(ctx, &st); err != nil {
			t.Fatalf("create subtask %q: %v", st.Title, err)
		}
	}

	got, total, err := subtasks.List(ctx, SubTaskFilter{TaskTitle: "groc"}, Page{})
	if err != nil {
		t.Fatalf("list by task title: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("partial case-insensitive match should find 2, got total=%d len=%d", total, len(got))
	}
}

func TestSubTaskStatusFilterWithJoin(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskStore(db)
	subtasks := NewSubTaskStore(db)
	ctx := context.Background()

	parent := domain.Task{Title: "parent", Status: domain.StatusNew, Deadline: date(1)}
	mustCreateTask(t, tasks, &parent, nil)

	done := domain.SubTask{Title: "done-one", TaskID: parent.ID, Status: domain.StatusDone, Deadline: date(1)}
	open := domain.SubTask{Title: "open-one", TaskID: parent.ID, Status: domain.StatusNew, Deadline: date(1)}
	for _, st := range []*domain.SubTask{&done, &open} {
		if err := subtasks.Create(ctx, st); err != nil {
			t.Fatalf("create subtask: %v", err)
		}
	}

	status := domain.StatusDone
	got, _, err := subtasks.List(ctx, SubTaskFilter{Status: &status, TaskTitle: "parent"}, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "done-one" {
		t.Fatalf("combined filters mismatch: %v", got)
	}
}

func TestSubTaskDeleteMissing(t *testing.T) {
	subtasks := NewSubTaskStore(newTestDB(t))
	err := subtasks.Delete(context.Background(), 7)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}
