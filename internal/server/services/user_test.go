package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/dbx"
	"github.com/dklimov/taskvault/internal/server/auth"
	"github.com/dklimov/taskvault/internal/server/config"
	"github.com/dklimov/taskvault/internal/server/models"
	"github.com/dklimov/taskvault/internal/server/repositories/repomanager"
	tasksrepo "github.com/dklimov/taskvault/internal/server/repositories/tasks"
	usersrepo "github.com/dklimov/taskvault/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	created []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.CreatedAt = time.Now()
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository      { return m.t }

// --- tests ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, db, rm)

	res, err := s.Register(context.Background(), "a@x.com", "p1234567")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.User.Email != "a@x.com" || res.User.ID == "" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if res.User.PasswordHash == "p1234567" || res.User.PasswordHash == "" {
		t.Fatalf("password stored improperly hashed: %q", res.User.PasswordHash)
	}

	// the issued token must verify back to the created user's ID
	userID, err := auth.GetUserIDFromToken(res.Token, []byte("k"))
	if err != nil {
		t.Fatalf("token verify error: %v", err)
	}
	if userID != res.User.ID {
		t.Fatalf("token subject %q != user id %q", userID, res.User.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "a@x.com", "p1234567")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, db, rm)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"no at sign", "ax.com", "p1234567"},
		{"no dot in domain", "a@xcom", "p1234567"},
		{"empty local part", "@x.com", "p1234567"},
		{"trailing at", "a@", "p1234567"},
		{"short password", "a@x.com", "p123456"},
		{"long password", "a@x.com", string(make([]byte, 101))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.email, tt.password)
			if !errors.Is(err, common.ErrorValidation) {
				t.Fatalf("want ErrorValidation, got %v", err)
			}
		})
	}
	if len(rm.u.created) != 0 {
		t.Fatalf("no user should be stored on validation failure, got %d", len(rm.u.created))
	}
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("p1234567")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getOut: &models.User{ID: "u1", Email: "a@x.com", PasswordHash: hash},
	}}
	s := newUserService(t, db, rm)

	res, err := s.Login(context.Background(), "a@x.com", "p1234567")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	userID, err := auth.GetUserIDFromToken(res.Token, []byte("k"))
	if err != nil {
		t.Fatalf("token verify error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("token subject %q, want u1", userID)
	}
}

func TestLogin_UnknownEmailAndWrongPassword_SameError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("p1234567")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	// unknown email
	rm := &fakeRepoManager{u: &fakeUsersRepo{getErr: common.ErrorNotFound}}
	s := newUserService(t, db, rm)
	_, errUnknown := s.Login(context.Background(), "ghost@x.com", "p1234567")

	// wrong password
	rm = &fakeRepoManager{u: &fakeUsersRepo{
		getOut: &models.User{ID: "u1", Email: "a@x.com", PasswordHash: hash},
	}}
	s = newUserService(t, db, rm)
	_, errWrong := s.Login(context.Background(), "a@x.com", "not-the-password")

	if !errors.Is(errUnknown, common.ErrorUnauthorized) {
		t.Fatalf("unknown email: want ErrorUnauthorized, got %v", errUnknown)
	}
	if !errors.Is(errWrong, common.ErrorUnauthorized) {
		t.Fatalf("wrong password: want ErrorUnauthorized, got %v", errWrong)
	}
}

func TestLogin_RepoFailureIsInternal(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getErr: errors.New("db is down")}}
	s := newUserService(t, db, rm)

	_, err := s.Login(context.Background(), "a@x.com", "p1234567")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestSignout_ValidAndInvalidToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newUserService(t, db, rm)

	tok, err := auth.GenerateToken("u1", []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, err := s.Signout(context.Background(), tok)
	if err != nil {
		t.Fatalf("Signout error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("got %q, want u1", userID)
	}

	if _, err := s.Signout(context.Background(), "garbage"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
