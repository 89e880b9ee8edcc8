package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/server/config"
	"github.com/dklimov/taskvault/internal/server/models"
	"github.com/dklimov/taskvault/internal/server/repositories/tasks"
)

// fakeTasksRepo is an in-memory tasks.Repository. It keeps real rows so that
// ownership and toggle behavior can be exercised end to end.
type fakeTasksRepo struct {
	rows map[string]*models.Task

	failAll error
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{rows: make(map[string]*models.Task)}
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	task.CreatedAt = time.Now()
	cp := *task
	f.rows[task.ID] = &cp
	return task, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	task, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *task
	return &cp, nil
}

func (f *fakeTasksRepo) SelectByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Task, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []*models.Task
	for _, task := range f.rows {
		if task.UserID == userID {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTasksRepo) CountByUser(ctx context.Context, userID string) (tasks.Counts, error) {
	if f.failAll != nil {
		return tasks.Counts{}, f.failAll
	}
	var c tasks.Counts
	for _, task := range f.rows {
		if task.UserID == userID {
			c.Total++
			if task.Completed {
				c.Completed++
			}
		}
	}
	return c, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, id string, title string, description *string) (*models.Task, error) {
	task, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	task.Title = title
	task.Description = description
	cp := *task
	return &cp, nil
}

func (f *fakeTasksRepo) SetCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time) (*models.Task, error) {
	task, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	task.Completed = completed
	task.CompletedAt = completedAt
	cp := *task
	return &cp, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func newTaskService(t *testing.T, repo *fakeTasksRepo) *TaskService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	rm := &fakeRepoManager{t: repo}
	return NewTaskService(db, rm, &config.Config{})
}

func seedTask(repo *fakeTasksRepo, id, userID, title string) {
	repo.rows[id] = &models.Task{ID: id, UserID: userID, Title: title, CreatedAt: time.Now()}
}

// --- Create ---

func TestTaskCreate_TrimsTitle(t *testing.T) {
	repo := newFakeTasksRepo()
	s := newTaskService(t, repo)

	task, err := s.Create(context.Background(), "u1", "  Buy groceries  ", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if task.Title != "Buy groceries" {
		t.Fatalf("title not trimmed: %q", task.Title)
	}
	if task.UserID != "u1" || task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.ID == "" {
		t.Fatal("task id not assigned")
	}
}

func TestTaskCreate_TitleBoundaries(t *testing.T) {
	repo := newFakeTasksRepo()
	s := newTaskService(t, repo)
	ctx := context.Background()

	// exactly 200 characters is accepted
	if _, err := s.Create(ctx, "u1", strings.Repeat("a", 200), nil); err != nil {
		t.Fatalf("200-char title rejected: %v", err)
	}
	// 201 characters is rejected
	if _, err := s.Create(ctx, "u1", strings.Repeat("a", 201), nil); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("201-char title: want ErrorValidation, got %v", err)
	}
	// empty and whitespace-only titles are rejected
	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := s.Create(ctx, "u1", title, nil); !errors.Is(err, common.ErrorValidation) {
			t.Fatalf("title %q: want ErrorValidation, got %v", title, err)
		}
	}
}

func TestTaskCreate_DescriptionBoundaries(t *testing.T) {
	repo := newFakeTasksRepo()
	s := newTaskService(t, repo)
	ctx := context.Background()

	ok := strings.Repeat("d", 1000)
	if _, err := s.Create(ctx, "u1", "t", &ok); err != nil {
		t.Fatalf("1000-char description rejected: %v", err)
	}

	long := strings.Repeat("d", 1001)
	if _, err := s.Create(ctx, "u1", "t", &long); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("1001-char description: want ErrorValidation, got %v", err)
	}
}

// --- ownership guard ---

func TestTaskGet_OwnForeignMissing(t *testing.T) {
	repo := newFakeTasksRepo()
	seedTask(repo, "t1", "userA", "A1")
	s := newTaskService(t, repo)
	ctx := context.Background()

	if _, err := s.Get(ctx, "userA", "t1"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := s.Get(ctx, "userB", "t1"); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("foreign read: want ErrorForbidden, got %v", err)
	}
	if _, err := s.Get(ctx, "userA", "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("missing read: want ErrorNotFound, got %v", err)
	}
}

func TestTaskMutations_ForbiddenLeaveRowUntouched(t *testing.T) {
	repo := newFakeTasksRepo()
	seedTask(repo, "t1", "userA", "A1")
	s := newTaskService(t, repo)
	ctx := context.Background()

	newTitle := "hijacked"
	if _, err := s.Update(ctx, "userB", "t1", TaskUpdate{Title: &newTitle}); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("update: want ErrorForbidden, got %v", err)
	}
	if _, err := s.Toggle(ctx, "userB", "t1"); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("toggle: want ErrorForbidden, got %v", err)
	}
	if err := s.Delete(ctx, "userB", "t1"); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("delete: want ErrorForbidden, got %v", err)
	}

	row := repo.rows["t1"]
	if row == nil || row.Title != "A1" || row.Completed {
		t.Fatalf("row mutated by forbidden caller: %+v", row)
	}
}

func TestTaskMutations_MissingIsNotFoundNeverForbidden(t *testing.T) {
	repo := newFakeTasksRepo()
	s := newTaskService(t, repo)
	ctx := context.Background()

	title := "x"
	if _, err := s.Update(ctx, "userA", "ghost", TaskUpdate{Title: &title}); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("update: want ErrorNotFound, got %v", err)
	}
	if _, err := s.Toggle(ctx, "userA", "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("toggle: want ErrorNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "userA", "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("delete: want ErrorNotFound, got %v", err)
	}
}

// --- Update ---

func TestTaskUpdate_PartialFields(t *testing.T) {
	repo := newFakeTasksRepo()
	seedTask(repo, "t1", "u1", "original")
	desc := "original description"
	repo.rows["t1"].Description = &desc
	s := newTaskService(t, repo)

	newTitle := " renamed "
	task, err := s.Update(context.Background(), "u1", "t1", TaskUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if task.Title != "renamed" {
		t.Fatalf("title not applied/trimmed: %q", task.Title)
	}
	if task.Description == nil || *task.Description != desc {
		t.Fatalf("description should be unchanged, got %v", task.Description)
	}
}

func TestTaskUpdate_RevalidatesFields(t *testing.T) {
	repo := newFakeTasksRepo()
	seedTask(repo, "t1", "u1", "fine")
	s := newTaskService(t, repo)
	ctx := context.Background()

	empty := "   "
	if _, err := s.Update(ctx, "u1", "t1", TaskUpdate{Title: &empty}); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("empty title: want ErrorValidation, got %v", err)
	}

	long := strings.Repeat("d", 1001)
	if _, err := s.Update(ctx, "u1", "t1", TaskUpdate{Description: &long}); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("long description: want ErrorValidation, got %v", err)
	}

	if repo.rows["t1"].Title != "fine" {
		t.Fatalf("row mutated by failed validation: %+v", repo.rows["t1"])
	}
}

// --- Toggle ---

func TestTaskToggle_Involution(t *testing.T) {
	repo := newFakeTasksRepo()
	seedTask(repo, "t1", "u1", "A1")
	s := newTaskService(t, repo)
	ctx := context.Background()

	pinned := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	origNow := nowFn
	nowFn = func() time.Time { return pinned }
	defer func() { nowFn = origNow }()

	first, err := s.Toggle(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("first toggle error: %v", err)
	}
	if !first.Completed || first.CompletedAt == nil || !first.CompletedAt.Equal(pinned) {
		t.Fatalf("first toggle: %+v", first)
	}

	second, err := s.Toggle(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("second toggle error: %v", err)
	}
	if second.Completed || second.CompletedAt != nil {
		t.Fatalf("second toggle should restore original state: %+v", second)
	}
}

// --- List ---

func TestTaskList_CountsOnlyOwnTasks(t *testing.T) {
	repo := newFakeTasksRepo()
	seedTask(repo, "a1", "userA", "A1")
	seedTask(repo, "a2", "userA", "A2")
	now := time.Now()
	repo.rows["a2"].Completed = true
	repo.rows["a2"].CompletedAt = &now
	seedTask(repo, "b1", "userB", "B1")
	s := newTaskService(t, repo)

	list, err := s.List(context.Background(), "userA", 0, -5)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if list.Total != 2 || list.Completed != 1 || list.Pending != 1 {
		t.Fatalf("unexpected counts: %+v", list)
	}
	if list.Total != list.Completed+list.Pending {
		t.Fatalf("total != completed + pending: %+v", list)
	}
	for _, task := range list.Tasks {
		if task.UserID != "userA" {
			t.Fatalf("foreign task leaked into list: %+v", task)
		}
	}
}

func TestTaskList_RepoFailureIsInternal(t *testing.T) {
	repo := newFakeTasksRepo()
	repo.failAll = errors.New("db is down")
	s := newTaskService(t, repo)

	if _, err := s.List(context.Background(), "u1", 10, 0); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}
