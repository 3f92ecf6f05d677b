package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/taskvault/internal/server/models"
)

func validCompletionFlag(v *int) bool {
	return v == nil || *v == 0 || *v == 1
}

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
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

	var in CreateSubtaskIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == nil || *in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validCompletionFlag(in.IsCompleted) {
		writeError(w, http.StatusBadRequest, "is_completed must be 0 or 1")
		return
	}

	subtask := &models.Subtask{Name: *in.Name, DueDate: in.DueDate}
	if in.IsCompleted != nil {
		subtask.IsCompleted = *in.IsCompleted
	}

	created, err := s.tasks.CreateSubtask(r.Context(), user.ID, taskID, subtask)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubtaskResponse(created))
}

func (s *Server) handleListSubtasks(w http.ResponseWriter, r *http.Request) {
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

	subs, err := s.tasks.ListSubtasks(r.Context(), user.ID, taskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	result := make([]SubtaskResponse, 0, len(subs))
	for _, sub := range subs {
		result = append(result, toSubtaskResponse(sub))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
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
	subtaskID, err := pathID(r, "subtask_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subtask id")
		return
	}

	var in UpdateSubtaskIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validCompletionFlag(in.IsCompleted) {
		writeError(w, http.StatusBadRequest, "is_completed must be 0 or 1")
		return
	}

	updated, err := s.tasks.UpdateSubtask(r.Context(), user.ID, taskID, subtaskID, in.toPatch())
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubtaskResponse(updated))
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
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
	subtaskID, err := pathID(r, "subtask_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subtask id")
		return
	}

	deleted, err := s.tasks.DeleteSubtask(r.Context(), user.ID, taskID, subtaskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubtaskResponse(deleted))
}
