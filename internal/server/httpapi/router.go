package httpapi

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Router assembles the endpoint table with the logging, auth, admin, and
// CORS layers applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.withRequestLogging)

	// identity
	r.HandleFunc("/users/", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login/", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/me", s.withAuth(http.HandlerFunc(s.handleMe))).Methods(http.MethodGet)

	// administrative
	r.Handle("/users/", s.withAdmin(http.HandlerFunc(s.handleListUsers))).Methods(http.MethodGet)
	r.Handle("/users/{user_id:[0-9]+}", s.withAdmin(http.HandlerFunc(s.handleDeleteUser))).Methods(http.MethodDelete)

	// tasks
	r.Handle("/tasks/", s.withAuth(http.HandlerFunc(s.handleCreateTask))).Methods(http.MethodPost)
	r.Handle("/tasks/", s.withAuth(http.HandlerFunc(s.handleListTasks))).Methods(http.MethodGet)
	r.Handle("/tasks/{task_id:[0-9]+}", s.withAuth(http.HandlerFunc(s.handleGetTask))).Methods(http.MethodGet)
	r.Handle("/tasks/{task_id:[0-9]+}", s.withAuth(http.HandlerFunc(s.handleUpdateTask))).Methods(http.MethodPut)
	r.Handle("/tasks/{task_id:[0-9]+}", s.withAuth(http.HandlerFunc(s.handleDeleteTask))).Methods(http.MethodDelete)

	// subtasks
	r.Handle("/tasks/{task_id:[0-9]+}/subtasks/", s.withAuth(http.HandlerFunc(s.handleCreateSubtask))).Methods(http.MethodPost)
	r.Handle("/tasks/{task_id:[0-9]+}/subtasks/", s.withAuth(http.HandlerFunc(s.handleListSubtasks))).Methods(http.MethodGet)
	r.Handle("/tasks/{task_id:[0-9]+}/subtasks/{subtask_id:[0-9]+}", s.withAuth(http.HandlerFunc(s.handleUpdateSubtask))).Methods(http.MethodPut)
	r.Handle("/tasks/{task_id:[0-9]+}/subtasks/{subtask_id:[0-9]+}", s.withAuth(http.HandlerFunc(s.handleDeleteSubtask))).Methods(http.MethodDelete)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Admin-Token"}),
		handlers.AllowCredentials(),
	)

	return cors(r)
}
