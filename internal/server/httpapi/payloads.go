package httpapi

import (
	"time"

	"github.com/dmitrijs2005/taskvault/internal/server/models"
	"github.com/dmitrijs2005/taskvault/internal/server/services"
)

// Response shapes. Password hashes never appear here.

type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SubtaskResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	IsCompleted int        `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
	TaskID      int64      `json:"task_id"`
}

type TaskResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Result         string            `json:"result"`
	FinishTime     time.Time         `json:"finish_time"`
	FinishCriteria string            `json:"finish_criteria"`
	Resources      string            `json:"resources"`
	StartDate      time.Time         `json:"start_date"`
	Subtasks       []SubtaskResponse `json:"subtasks"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}

func toSubtaskResponse(s *models.Subtask) SubtaskResponse {
	return SubtaskResponse{
		ID:          s.ID,
		Name:        s.Name,
		IsCompleted: s.IsCompleted,
		DueDate:     s.DueDate,
		TaskID:      s.TaskID,
	}
}

func toTaskResponse(v *services.TaskView) TaskResponse {
	subs := make([]SubtaskResponse, 0, len(v.Subtasks))
	for _, s := range v.Subtasks {
		subs = append(subs, toSubtaskResponse(s))
	}
	return TaskResponse{
		ID:             v.Task.ID,
		Name:           v.Task.Name,
		Result:         v.Task.Result,
		FinishTime:     v.Task.FinishTime,
		FinishCriteria: v.Task.FinishCriteria,
		Resources:      v.Task.Resources,
		StartDate:      v.Task.StartDate,
		Subtasks:       subs,
	}
}

// Request shapes. Pointer fields distinguish an omitted field from an
// explicitly provided zero value.

type RegisterIn struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type CreateTaskIn struct {
	Name           *string    `json:"name"`
	Result         *string    `json:"result"`
	FinishTime     *time.Time `json:"finish_time"`
	FinishCriteria *string    `json:"finish_criteria"`
	Resources      *string    `json:"resources"`
	StartDate      *time.Time `json:"start_date,omitempty"`
}

type UpdateTaskIn struct {
	Name           *string    `json:"name,omitempty"`
	Result         *string    `json:"result,omitempty"`
	FinishTime     *time.Time `json:"finish_time,omitempty"`
	FinishCriteria *string    `json:"finish_criteria,omitempty"`
	Resources      *string    `json:"resources,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
}

func (in *UpdateTaskIn) toPatch() *models.TaskPatch {
	return &models.TaskPatch{
		Name:           in.Name,
		Result:         in.Result,
		FinishTime:     in.FinishTime,
		FinishCriteria: in.FinishCriteria,
		Resources:      in.Resources,
		StartDate:      in.StartDate,
	}
}

type CreateSubtaskIn struct {
	Name        *string    `json:"name"`
	IsCompleted *int       `json:"is_completed,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateSubtaskIn uses models.OptionalTime for due_date so an explicit null
// clears the stored value instead of reading as "not provided".
type UpdateSubtaskIn struct {
	Name        *string             `json:"name,omitempty"`
	IsCompleted *int                `json:"is_completed,omitempty"`
	DueDate     models.OptionalTime `json:"due_date"`
}

func (in *UpdateSubtaskIn) toPatch() *models.SubtaskPatch {
	return &models.SubtaskPatch{
		Name:        in.Name,
		IsCompleted: in.IsCompleted,
		DueDate:     in.DueDate,
	}
}
