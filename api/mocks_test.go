package api

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskman-api/domain"
	"taskman-api/storage"
)

type fakeTasks struct {
	mu     sync.Mutex
	nextID uint
	tasks  map[uint]*domain.Task

	lastFilter storage.TaskFilter
	lastPage   storage.Page
	stats      *domain.TaskStatistics
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[uint]*domain.Task{}}
}

func (f *fakeTasks) Create(_ context.Context, task *domain.Task, _ []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTasks) List(_ context.Context, filter storage.TaskFilter, page storage.Page) ([]domain.Task, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	f.lastPage = page
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTasks) ListByOwner(_ context.Context, ownerID uint, page storage.Page) ([]domain.Task, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPage = page
	out := []domain.Task{}
	for _, t := range f.tasks {
		if t.OwnerID != nil && *t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTasks) Get(_ context.Context, id uint) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "task"}
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Update(_ context.Context, task *domain.Task, _ []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return &domain.NotFoundError{Resource: "task"}
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return &domain.NotFoundError{Resource: "task"}
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) Statistics(context.Context) (*domain.TaskStatistics, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &domain.TaskStatistics{ByStatus: map[string]int64{}}, nil
}

type fakeSubTasks struct {
	mu       sync.Mutex
	nextID   uint
	subtasks map[uint]*domain.SubTask

	lastFilter storage.SubTaskFilter
}

func newFakeSubTasks() *fakeSubTasks {
	return &fakeSubTasks{subtasks: map[uint]*domain.SubTask{}}
}

func (f *fakeSubTasks) Create(_ context.Context, st *domain.SubTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	st.ID = f.nextID
	cp := *st
	f.subtasks[st.ID] = &cp
	return nil
}

func (f *fakeSubTasks) List(_ context.Context, filter storage.SubTaskFilter, _ storage.Page) ([]domain.SubTask, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := make([]domain.SubTask, 0, len(f.subtasks))
	for _, st := range f.subtasks {
		out = append(out, *st)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSubTasks) ListByOwner(_ context.Context, ownerID uint, _ storage.Page) ([]domain.SubTask, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.SubTask{}
	for _, st := range f.subtasks {
		if st.OwnerID != nil && *st.OwnerID == ownerID {
			out = append(out, *st)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSubTasks) Get(_ context.Context, id uint) (*domain.SubTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.subtasks[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "subtask"}
	}
	cp := *st
	return &cp, nil
}

func (f *fakeSubTasks) Update(_ context.Context, st *domain.SubTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *st
	f.subtasks[st.ID] = &cp
	return nil
}

func (f *fakeSubTasks) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subtasks[id]; !ok {
		return &domain.NotFoundError{Resource: "subtask"}
	}
	delete(f.subtasks, id)
	return nil
}

type fakeCategories struct {
	mu         sync.Mutex
	nextID     uint
	categories map[uint]*domain.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{categories: map[uint]*domain.Category{}}
}

func (f *fakeCategories) Create(_ context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return domain.NewValidationError("name", "category with this name already exists")
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategories) List(_ context.Context, _ storage.Page) ([]domain.Category, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Category{}
	for _, c := range f.categories {
		if !c.IsDeleted {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCategories) ListAll(_ context.Context, _ storage.Page) ([]domain.Category, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Category{}
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCategories) Get(_ context.Context, id uint) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "category"}
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) Rename(_ context.Context, c *domain.Category, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.categories {
		if existing.Name == name && id != c.ID {
			return domain.NewValidationError("name", "category with this name already exists")
		}
	}
	c.Name = name
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategories) SoftDelete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || c.IsDeleted {
		return &domain.NotFoundError{Resource: "category"}
	}
	c.IsDeleted = true
	return nil
}

func (f *fakeCategories) CountTasks(_ context.Context, id uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return 0, &domain.NotFoundError{Resource: "category"}
	}
	return 0, nil
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint]*domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return domain.NewValidationError("username", "user with this username already exists")
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) ByID(_ context.Context, id uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user"}
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user"}
}

type recordedNotification struct {
	to      string
	subject string
	body    string
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (f *fakeDispatcher) Dispatch(to, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recordedNotification{to: to, subject: subject, body: body})
}

func (f *fakeDispatcher) all() []recordedNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedNotification, len(f.sent))
	copy(out, f.sent)
	return out
}

const testSecret = "test-secret"

type testEnv struct {
	e          *echo.Echo
	tasks      *fakeTasks
	subtasks   *fakeSubTasks
	categories *fakeCategories
	users      *fakeUsers
	notify     *fakeDispatcher
	tokens     *TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	pager, err := NewPaginator("")
	if err != nil {
		t.Fatalf("paginator: %v", err)
	}

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	env := &testEnv{
		e:          echo.New(),
		tasks:      newFakeTasks(),
		subtasks:   newFakeSubTasks(),
		categories: newFakeCategories(),
		users:      newFakeUsers(),
		notify:     &fakeDispatcher{},
		tokens:     NewTokenIssuer([]byte(testSecret), "test", 0, 0),
	}
	Register(env.e, Deps{
		Tasks:      env.tasks,
		SubTasks:   env.subtasks,
		Categories: env.categories,
		Users:      env.users,
		Auth:       NewLocalAuth([]byte(testSecret), "test"),
		Tokens:     env.tokens,
		Blacklist:  NewRedisBlacklist(rc),
		Notify:     env.notify,
		Pager:      pager,
		Logger:     log.New(),
	})
	return env
}

func (env *testEnv) addUser(t *testing.T, username string, admin bool) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsAdmin: admin}
	if err := env.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (env *testEnv) bearer(t *testing.T, u *domain.User) string {
	t.Helper()
	pair, err := env.tokens.IssuePair(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + pair.Access
}

func (env *testEnv) do(method, path, auth string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
