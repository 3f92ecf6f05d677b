package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeChallenge(w)
		return
	}

	var in CreateTaskIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == nil || in.Result == nil || in.FinishTime == nil || in.FinishCriteria == nil || in.Resources == nil {
		writeError(w, http.StatusBadRequest, "name, result, finish_time, finish_criteria and resources are required")
		return
	}

	task := &models.Task{
		Name:           *in.Name,
		Result:         *in.Result,
		FinishTime:     *in.FinishTime,
		FinishCriteria: *in.FinishCriteria,
		Resources:      *in.Resources,
	}
	if in.StartDate != nil {
		task.StartDate = *in.StartDate
	}

	view, err := s.tasks.CreateTask(r.Context(), user.ID, task)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(view))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeChallenge(w)
		return
	}

	views, err := s.tasks.ListTasks(r.Context(), user.ID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	result := make([]TaskResponse, 0, len(views))
	for _, v := range views {
		result = append(result, toTaskResponse(v))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeChallenge(w)
		return
	}

	taskID, err := pathID(r, "task_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	view, err := s.tasks.GetTask(r.Context(), user.ID, taskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(view))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeChallenge(w)
		return
	}

	taskID, err := pathID(r, "task_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var in UpdateTaskIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.tasks.UpdateTask(r.Context(), user.ID, taskID, in.toPatch())
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(view))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeChallenge(w)
		return
	}

	taskID, err := pathID(r, "task_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	view, err := s.tasks.DeleteTask(r.Context(), user.ID, taskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(view))
}
