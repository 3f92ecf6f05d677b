package tasks

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleTask() *models.Task {
	return &models.Task{
		Name:           "T1",
		Result:         "",
		FinishTime:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FinishCriteria: "done",
		Resources:      "",
		StartDate:      time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		UserID:         7,
	}
}

func TestCreate_ReturnsGeneratedID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	task := sampleTask()

	q := `(?s)^INSERT\s+INTO\s+tasks\s*\(name,\s*result,\s*finish_time,\s*finish_criteria,\s*resources,\s*start_date,\s*user_id\)`

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(11))
	mock.ExpectQuery(q).
		WithArgs(task.Name, task.Result, task.FinishTime, task.FinishCriteria,
			task.Resources, task.StartDate, task.UserID).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), task)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 11 {
		t.Fatalf("expected generated id 11, got %d", got.ID)
	}
}

func TestListByOwner_ScopesByUserID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+id\s*$`

	finish := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "result", "finish_time", "finish_criteria", "resources", "start_date", "user_id"}).
		AddRow(int64(1), "T1", "", finish, "done", "", start, int64(7)).
		AddRow(int64(2), "T2", "ok", finish, "reviewed", "docs", start, int64(7))
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "T1" || got[1].Name != "T2" {
		t.Fatalf("unexpected tasks: %+v", got)
	}
	if got[0].UserID != 7 || got[1].UserID != 7 {
		t.Fatalf("tasks must carry the owner id")
	}
}

func TestGetByID_NotFoundWhenNotOwned(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	mock.ExpectQuery(q).WithArgs(int64(8), int64(1)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 8, 1)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	finish := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "result", "finish_time", "finish_criteria", "resources", "start_date", "user_id"}).
		AddRow(int64(1), "T1", "", finish, "done", "", start, int64(7))
	mock.ExpectQuery(q).WithArgs(int64(7), int64(1)).WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != 1 || got.Name != "T1" || got.UserID != 7 {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestUpdate_WritesAllColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	task := sampleTask()
	task.ID = 1

	q := `(?s)^UPDATE\s+tasks\s+SET\s+name\s*=\s*\$3,.*WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs(task.UserID, task.ID,
			task.Name, task.Result, task.FinishTime, task.FinishCriteria,
			task.Resources, task.StartDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), task); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_NotFoundWhenNoRowMatches(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	task := sampleTask()
	task.ID = 1
	task.UserID = 8 // not the owner

	q := `(?s)^UPDATE\s+tasks\s+SET`

	mock.ExpectExec(q).
		WithArgs(task.UserID, task.ID,
			task.Name, task.Result, task.FinishTime, task.FinishCriteria,
			task.Resources, task.StartDate).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), task)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).WithArgs(int64(7), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 7, 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+tasks`

	mock.ExpectExec(q).WithArgs(int64(7), int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 7, 99)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByOwner_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+tasks`

	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnError(errors.New("db down"))

	_, err := repo.ListByOwner(context.Background(), 7)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
