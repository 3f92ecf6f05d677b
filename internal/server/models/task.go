package models

import "time"

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID             int64
	Name           string
	Result         string
	FinishTime     time.Time
	FinishCriteria string
	Resources      string
	StartDate      time.Time
	UserID         int64
}

// TaskPatch describes a partial update. A nil field leaves the stored value
// unchanged; a non-nil field overwrites it, including with an empty string or
// zero time.
type TaskPatch struct {
	Name           *string
	Result         *string
	FinishTime     *time.Time
	FinishCriteria *string
	Resources      *string
	StartDate      *time.Time
}

// Apply merges the patch into the task.
func (p *TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Result != nil {
		t.Result = *p.Result
	}
	if p.FinishTime != nil {
		t.FinishTime = *p.FinishTime
	}
	if p.FinishCriteria != nil {
		t.FinishCriteria = *p.FinishCriteria
	}
	if p.Resources != nil {
		t.Resources = *p.Resources
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
}
