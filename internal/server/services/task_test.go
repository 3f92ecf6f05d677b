package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTasksRepo keeps tasks in memory keyed by id and enforces the same
// owner scoping the SQL implementation does.
type fakeTasksRepo struct {
	nextID int64
	items  map[int64]*models.Task
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{nextID: 1, items: make(map[int64]*models.Task)}
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = f.nextID
	f.nextID++
	copied := *task
	f.items[task.ID] = &copied
	return task, nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	var result []*models.Task
	for id := int64(1); id < f.nextID; id++ {
		if t, ok := f.items[id]; ok && t.UserID == ownerID {
			copied := *t
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeTasksRepo) GetByID(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	t, ok := f.items[id]
	if !ok || t.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) error {
	t, ok := f.items[task.ID]
	if !ok || t.UserID != task.UserID {
		return common.ErrorNotFound
	}
	copied := *task
	f.items[task.ID] = &copied
	return nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, ownerID, id int64) error {
	t, ok := f.items[id]
	if !ok || t.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeSubtasksRepo keeps subtasks in memory keyed by id, scoped by task id.
type fakeSubtasksRepo struct {
	nextID int64
	items  map[int64]*models.Subtask
}

func newFakeSubtasksRepo() *fakeSubtasksRepo {
	return &fakeSubtasksRepo{nextID: 1, items: make(map[int64]*models.Subtask)}
}

func (f *fakeSubtasksRepo) Create(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error) {
	subtask.ID = f.nextID
	f.nextID++
	copied := *subtask
	f.items[subtask.ID] = &copied
	return subtask, nil
}

func (f *fakeSubtasksRepo) ListByTask(ctx context.Context, taskID int64) ([]*models.Subtask, error) {
	var result []*models.Subtask
	for id := int64(1); id < f.nextID; id++ {
		if s, ok := f.items[id]; ok && s.TaskID == taskID {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeSubtasksRepo) GetByID(ctx context.Context, taskID, id int64) (*models.Subtask, error) {
	s, ok := f.items[id]
	if !ok || s.TaskID != taskID {
		return nil, common.ErrorNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSubtasksRepo) Update(ctx context.Context, subtask *models.Subtask) error {
	s, ok := f.items[subtask.ID]
	if !ok || s.TaskID != subtask.TaskID {
		return common.ErrorNotFound
	}
	copied := *subtask
	f.items[subtask.ID] = &copied
	return nil
}

func (f *fakeSubtasksRepo) Delete(ctx context.Context, taskID, id int64) error {
	s, ok := f.items[id]
	if !ok || s.TaskID != taskID {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

type taskFixture struct {
	svc      *TaskService
	tasks    *fakeTasksRepo
	subtasks *fakeSubtasksRepo
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	// transactional operations only begin/commit against the db; the fakes
	// carry the data
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	tasks := newFakeTasksRepo()
	subtasks := newFakeSubtasksRepo()
	rm := &fakeRepoManager{t: tasks, s: subtasks}
	return &taskFixture{svc: NewTaskService(db, rm), tasks: tasks, subtasks: subtasks}
}

func (f *taskFixture) seedTask(t *testing.T, ownerID int64, name string) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), &models.Task{
		Name:           name,
		Result:         "done means done",
		FinishTime:     time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		FinishCriteria: "all checks green",
		Resources:      "none",
		StartDate:      time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		UserID:         ownerID,
	})
	require.NoError(t, err)
	return task
}

func (f *taskFixture) seedSubtask(t *testing.T, taskID int64, name string) *models.Subtask {
	t.Helper()
	sub, err := f.subtasks.Create(context.Background(), &models.Subtask{Name: name, TaskID: taskID})
	require.NoError(t, err)
	return sub
}

func TestCreateTask_SetsOwnerAndDefaultsStartDate(t *testing.T) {
	fx := newTaskFixture(t)

	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	orig := nowUTC
	nowUTC = func() time.Time { return fixed }
	t.Cleanup(func() { nowUTC = orig })

	view, err := fx.svc.CreateTask(context.Background(), 7, &models.Task{Name: "ship it"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), view.Task.UserID)
	assert.Equal(t, fixed, view.Task.StartDate)
	assert.NotNil(t, view.Subtasks)
	assert.Empty(t, view.Subtasks)
}

func TestCreateTask_KeepsExplicitStartDate(t *testing.T) {
	fx := newTaskFixture(t)

	explicit := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	view, err := fx.svc.CreateTask(context.Background(), 7, &models.Task{Name: "planned", StartDate: explicit})
	require.NoError(t, err)

	assert.Equal(t, explicit, view.Task.StartDate)
}

func TestListTasks_OnlyOwnersTasksWithSubtasks(t *testing.T) {
	fx := newTaskFixture(t)

	mine := fx.seedTask(t, 1, "mine")
	fx.seedTask(t, 2, "theirs")
	fx.seedSubtask(t, mine.ID, "step one")
	fx.seedSubtask(t, mine.ID, "step two")

	views, err := fx.svc.ListTasks(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, "mine", views[0].Task.Name)
	require.Len(t, views[0].Subtasks, 2)
}

func TestListTasks_EmptyIsSliceNotNil(t *testing.T) {
	fx := newTaskFixture(t)

	views, err := fx.svc.ListTasks(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestGetTask_ForeignTaskIndistinguishableFromMissing(t *testing.T) {
	fx := newTaskFixture(t)

	theirs := fx.seedTask(t, 2, "theirs")

	_, errForeign := fx.svc.GetTask(context.Background(), 1, theirs.ID)
	_, errMissing := fx.svc.GetTask(context.Background(), 1, 9999)

	require.ErrorIs(t, errForeign, common.ErrorNotFound)
	require.ErrorIs(t, errMissing, common.ErrorNotFound)
	assert.Equal(t, errForeign.Error(), errMissing.Error())
}

func TestUpdateTask_MergesOnlyProvidedFields(t *testing.T) {
	fx := newTaskFixture(t)

	task := fx.seedTask(t, 1, "before")

	newName := "after"
	emptyResult := ""
	view, err := fx.svc.UpdateTask(context.Background(), 1, task.ID, &models.TaskPatch{
		Name:   &newName,
		Result: &emptyResult,
	})
	require.NoError(t, err)

	assert.Equal(t, "after", view.Task.Name)
	assert.Equal(t, "", view.Task.Result, "explicitly provided empty string must clear the field")
	assert.Equal(t, "all checks green", view.Task.FinishCriteria, "omitted field must survive the update")

	stored, err := fx.tasks.GetByID(context.Background(), 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Name)
	assert.Equal(t, "", stored.Result)
}

func TestUpdateTask_ForeignTaskNotFound(t *testing.T) {
	fx := newTaskFixture(t)

	theirs := fx.seedTask(t, 2, "theirs")

	newName := "hijacked"
	_, err := fx.svc.UpdateTask(context.Background(), 1, theirs.ID, &models.TaskPatch{Name: &newName})
	require.ErrorIs(t, err, common.ErrorNotFound)

	stored, err := fx.tasks.GetByID(context.Background(), 2, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "theirs", stored.Name)
}

func TestDeleteTask_ReturnsLastStateWithSubtasks(t *testing.T) {
	fx := newTaskFixture(t)

	task := fx.seedTask(t, 1, "doomed")
	fx.seedSubtask(t, task.ID, "collateral")

	view, err := fx.svc.DeleteTask(context.Background(), 1, task.ID)
	require.NoError(t, err)

	assert.Equal(t, "doomed", view.Task.Name)
	require.Len(t, view.Subtasks, 1)
	assert.Equal(t, "collateral", view.Subtasks[0].Name)

	_, err = fx.svc.GetTask(context.Background(), 1, task.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteTask_ForeignTaskNotFound(t *testing.T) {
	fx := newTaskFixture(t)

	theirs := fx.seedTask(t, 2, "theirs")

	_, err := fx.svc.DeleteTask(context.Background(), 1, theirs.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = fx.tasks.GetByID(context.Background(), 2, theirs.ID)
	assert.NoError(t, err, "foreign delete attempt must not remove the row")
}

func TestCreateSubtask_BindsToParentAndDefaultsIncomplete(t *testing.T) {
	fx := newTaskFixture(t)

	task := fx.seedTask(t, 1, "parent")

	sub, err := fx.svc.CreateSubtask(context.Background(), 1, task.ID, &models.Subtask{Name: "child"})
	require.NoError(t, err)

	assert.Equal(t, task.ID, sub.TaskID)
	assert.Equal(t, 0, sub.IsCompleted)
	assert.Nil(t, sub.DueDate)
}

func TestCreateSubtask_ForeignParentNotFound(t *testing.T) {
	fx := newTaskFixture(t)

	theirs := fx.seedTask(t, 2, "theirs")

	_, err := fx.svc.CreateSubtask(context.Background(), 1, theirs.ID, &models.Subtask{Name: "child"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListSubtasks_ParentCheckedFirst(t *testing.T) {
	fx := newTaskFixture(t)

	mine := fx.seedTask(t, 1, "mine")
	theirs := fx.seedTask(t, 2, "theirs")
	fx.seedSubtask(t, mine.ID, "a")
	fx.seedSubtask(t, theirs.ID, "b")

	subs, err := fx.svc.ListSubtasks(context.Background(), 1, mine.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "a", subs[0].Name)

	_, err = fx.svc.ListSubtasks(context.Background(), 1, theirs.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateSubtask_MergesAndClearsDueDate(t *testing.T) {
	fx := newTaskFixture(t)

	task := fx.seedTask(t, 1, "parent")
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	sub, err := fx.subtasks.Create(context.Background(), &models.Subtask{Name: "child", DueDate: &due, TaskID: task.ID})
	require.NoError(t, err)

	done := 1
	updated, err := fx.svc.UpdateSubtask(context.Background(), 1, task.ID, sub.ID, &models.SubtaskPatch{IsCompleted: &done})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.IsCompleted)
	assert.Equal(t, "child", updated.Name, "omitted name must survive")
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due), "omitted due date must survive")

	// explicit null clears the due date
	cleared, err := fx.svc.UpdateSubtask(context.Background(), 1, task.ID, sub.ID, &models.SubtaskPatch{
		DueDate: models.OptionalTime{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)

	stored, err := fx.subtasks.GetByID(context.Background(), task.ID, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DueDate)
}

func TestUpdateSubtask_TwoStageNotFound(t *testing.T) {
	fx := newTaskFixture(t)

	mine := fx.seedTask(t, 1, "mine")
	theirs := fx.seedTask(t, 2, "theirs")
	foreignSub := fx.seedSubtask(t, theirs.ID, "foreign")

	done := 1

	// parent task not owned by the caller
	_, err := fx.svc.UpdateSubtask(context.Background(), 1, theirs.ID, foreignSub.ID, &models.SubtaskPatch{IsCompleted: &done})
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// owned parent, but the subtask belongs to a different task
	_, err = fx.svc.UpdateSubtask(context.Background(), 1, mine.ID, foreignSub.ID, &models.SubtaskPatch{IsCompleted: &done})
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, ErrSubtaskNotFound)

	// owned parent, nonexistent subtask
	_, err = fx.svc.UpdateSubtask(context.Background(), 1, mine.ID, 9999, &models.SubtaskPatch{IsCompleted: &done})
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
}

func TestDeleteSubtask_ReturnsLastState(t *testing.T) {
	fx := newTaskFixture(t)

	task := fx.seedTask(t, 1, "parent")
	sub := fx.seedSubtask(t, task.ID, "child")

	deleted, err := fx.svc.DeleteSubtask(context.Background(), 1, task.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "child", deleted.Name)

	_, err = fx.subtasks.GetByID(context.Background(), task.ID, sub.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteSubtask_TwoStageNotFound(t *testing.T) {
	fx := newTaskFixture(t)

	mine := fx.seedTask(t, 1, "mine")
	theirs := fx.seedTask(t, 2, "theirs")
	foreignSub := fx.seedSubtask(t, theirs.ID, "foreign")

	_, err := fx.svc.DeleteSubtask(context.Background(), 1, theirs.ID, foreignSub.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = fx.svc.DeleteSubtask(context.Background(), 1, mine.ID, foreignSub.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, ErrSubtaskNotFound)

	_, err = fx.subtasks.GetByID(context.Background(), theirs.ID, foreignSub.ID)
	assert.NoError(t, err, "failed two-stage check must not remove the row")
}
