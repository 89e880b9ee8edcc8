package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/server/config"
	"github.com/dklimov/taskvault/internal/server/models"
	"github.com/dklimov/taskvault/internal/server/repositories/repomanager"
	"github.com/dklimov/taskvault/internal/server/repositories/tasks"
	"github.com/google/uuid"
)

const (
	titleMaxLength       = 200
	descriptionMaxLength = 1000

	listLimitDefault = 100
	listLimitMax     = 100
)

// TaskUpdate carries the mutable fields of an update request. A nil field
// means "leave unchanged".
type TaskUpdate struct {
	Title       *string
	Description *string
}

// TaskList is one page of a user's tasks plus counts over the full owned set.
type TaskList struct {
	Tasks     []*models.Task
	Total     int64
	Completed int64
	Pending   int64
}

// TaskService implements the task operations under the isolation invariant:
// every read and write is authorized against the caller's user ID before it
// touches a row.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// nowFn is a seam for tests that pin the toggle timestamp.
var nowFn = time.Now

// NewTaskService constructs a TaskService using repositories and server config.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("%w: title cannot be empty", common.ErrorValidation)
	}
	if utf8.RuneCountInString(trimmed) > titleMaxLength {
		return "", fmt.Errorf("%w: title must be %d characters or less", common.ErrorValidation, titleMaxLength)
	}
	return trimmed, nil
}

func validateDescription(description *string) error {
	if description == nil {
		return nil
	}
	if utf8.RuneCountInString(*description) > descriptionMaxLength {
		return fmt.Errorf("%w: description must be %d characters or less", common.ErrorValidation, descriptionMaxLength)
	}
	return nil
}

// authorize is the ownership choke point for single-task operations. It looks
// the task up by ID alone in one query and then decides: no row is
// common.ErrorNotFound, a row owned by someone else is common.ErrorForbidden,
// and the caller's own row is returned. Not-found and forbidden are kept
// distinct on purpose; collapsing them would hide the difference from honest
// debugging as well as from attackers, and the contract chooses debuggability.
func (s *TaskService) authorize(ctx context.Context, repo tasks.Repository, userID, taskID string) (*models.Task, error) {
	task, err := repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if task.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return task, nil
}

// Create validates and inserts a task owned by userID.
func (s *TaskService) Create(ctx context.Context, userID, title string, description *string) (*models.Task, error) {
	trimmed, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       trimmed,
		Description: description,
	}

	repo := s.repomanager.Tasks(s.db)
	task, err = repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// List returns one page of the caller's tasks, newest first, along with
// total/completed/pending counts over everything the caller owns.
func (s *TaskService) List(ctx context.Context, userID string, limit, offset int) (*TaskList, error) {
	if limit <= 0 {
		limit = listLimitDefault
	}
	if limit > listLimitMax {
		limit = listLimitMax
	}
	if offset < 0 {
		offset = 0
	}

	repo := s.repomanager.Tasks(s.db)

	page, err := repo.SelectByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, common.ErrorInternal
	}
	counts, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TaskList{
		Tasks:     page,
		Total:     counts.Total,
		Completed: counts.Completed,
		Pending:   counts.Total - counts.Completed,
	}, nil
}

// Get returns the caller's task or ErrorNotFound/ErrorForbidden.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)
	return s.authorize(ctx, repo, userID, taskID)
}

// Update authorizes and applies the provided fields; omitted fields keep
// their stored values. Provided fields are validated exactly as in Create.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, upd TaskUpdate) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)

	task, err := s.authorize(ctx, repo, userID, taskID)
	if err != nil {
		return nil, err
	}

	title := task.Title
	if upd.Title != nil {
		title, err = validateTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
	}

	description := task.Description
	if upd.Description != nil {
		if err := validateDescription(upd.Description); err != nil {
			return nil, err
		}
		description = upd.Description
	}

	updated, err := repo.Update(ctx, taskID, title, description)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return updated, nil
}

// Delete authorizes and removes the task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	repo := s.repomanager.Tasks(s.db)

	if _, err := s.authorize(ctx, repo, userID, taskID); err != nil {
		return err
	}

	if err := repo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Deleted concurrently after the ownership check.
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Toggle flips the completed flag. The timestamp follows the flag in the same
// UPDATE statement: set on false→true, cleared on true→false. Two racing
// toggles serialize on the row; the last writer wins.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)

	task, err := s.authorize(ctx, repo, userID, taskID)
	if err != nil {
		return nil, err
	}

	completed := !task.Completed
	var completedAt *time.Time
	if completed {
		now := nowFn()
		completedAt = &now
	}

	updated, err := repo.SetCompleted(ctx, taskID, completed, completedAt)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return updated, nil
}
