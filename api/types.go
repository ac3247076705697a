package api

import (
	"context"

	"taskman-api/domain"
	"taskman-api/storage"
)

// TaskStore abstracts task persistence for handlers.
type TaskStore interface {
	Create(ctx context.Context, task *domain.Task, categoryIDs []uint) error
	List(ctx context.Context, filter storage.TaskFilter, page storage.Page) ([]domain.Task, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, page storage.Page) ([]domain.Task, int64, error)
	Get(ctx context.Context, id uint) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task, categoryIDs []uint) error
	Delete(ctx context.Context, id uint) error
	Statistics(ctx context.Context) (*domain.TaskStatistics, error)
}

// SubTaskStore abstracts subtask persistence for handlers.
type SubTaskStore interface {
	Create(ctx context.Context, subtask *domain.SubTask) error
	List(ctx context.Context, filter storage.SubTaskFilter, page storage.Page) ([]domain.SubTask, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, page storage.Page) ([]domain.SubTask, int64, error)
	Get(ctx context.Context, id uint) (*domain.SubTask, error)
	Update(ctx context.Context, subtask *domain.SubTask) error
	Delete(ctx context.Context, id uint) error
}

// CategoryStore abstracts category persistence for handlers.
type CategoryStore interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context, page storage.Page) ([]domain.Category, int64, error)
	ListAll(ctx context.Context, page storage.Page) ([]domain.Category, int64, error)
	Get(ctx context.Context, id uint) (*domain.Category, error)
	Rename(ctx context.Context, category *domain.Category, name string) error
	SoftDelete(ctx context.Context, id uint) error
	CountTasks(ctx context.Context, id uint) (int64, error)
}

// UserStore abstracts user persistence for handlers.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	ByID(ctx context.Context, id uint) (*domain.User, error)
	ByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Authenticator extracts the authenticated subject from an Authorization
// header value.
type Authenticator interface {
	UserIDFromAuthHeader(header string) (string, error)
}

// Blacklist records revoked refresh-token ids until their natural expiry.
type Blacklist interface {
	Add(ctx context.Context, jti string, ttlSeconds int64) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// Dispatcher hands off owner notifications without blocking the request.
type Dispatcher interface {
	Dispatch(to, subject, body string)
}
