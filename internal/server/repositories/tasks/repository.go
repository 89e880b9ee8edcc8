package tasks

import (
	"context"
	"time"

	"github.com/dklimov/taskvault/internal/server/models"
)

// Counts aggregates a user's tasks over the full owned set, not a page.
type Counts struct {
	Total     int64
	Completed int64
}

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// GetByID looks a task up by id alone, without owner scoping. The caller
	// decides between not-found, forbidden, and allowed from the result.
	GetByID(ctx context.Context, id string) (*models.Task, error)

	SelectByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Task, error)
	CountByUser(ctx context.Context, userID string) (Counts, error)

	Update(ctx context.Context, id string, title string, description *string) (*models.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}
