package repomanager

import (
	"context"
	"database/sql"

	"github.com/dklimov/taskvault/internal/dbx"
	"github.com/dklimov/taskvault/internal/server/repositories/tasks"
	"github.com/dklimov/taskvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
