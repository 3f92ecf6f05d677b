// Package httpapi exposes the task management service over HTTP/JSON.
// It hosts the router, the auth and admin middleware, and the request
// handlers for the user, task, and subtask endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskvault/internal/logging"
	"github.com/dmitrijs2005/taskvault/internal/server/config"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
	"github.com/dmitrijs2005/taskvault/internal/server/services"
)

// UserProvider is the slice of user service behavior the HTTP layer needs.
type UserProvider interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) (*models.User, error)
}

// TaskProvider is the slice of task service behavior the HTTP layer needs.
type TaskProvider interface {
	CreateTask(ctx context.Context, ownerID int64, task *models.Task) (*services.TaskView, error)
	ListTasks(ctx context.Context, ownerID int64) ([]*services.TaskView, error)
	GetTask(ctx context.Context, ownerID, taskID int64) (*services.TaskView, error)
	UpdateTask(ctx context.Context, ownerID, taskID int64, patch *models.TaskPatch) (*services.TaskView, error)
	DeleteTask(ctx context.Context, ownerID, taskID int64) (*services.TaskView, error)
	CreateSubtask(ctx context.Context, ownerID, taskID int64, subtask *models.Subtask) (*models.Subtask, error)
	ListSubtasks(ctx context.Context, ownerID, taskID int64) ([]*models.Subtask, error)
	UpdateSubtask(ctx context.Context, ownerID, taskID, subtaskID int64, patch *models.SubtaskPatch) (*models.Subtask, error)
	DeleteSubtask(ctx context.Context, ownerID, taskID, subtaskID int64) (*models.Subtask, error)
}

type Server struct {
	address     string
	logger      logging.Logger
	users       UserProvider
	tasks       TaskProvider
	jwtSecret   []byte
	adminToken  []byte
	corsOrigins []string
}

func NewServer(cfg *config.Config, l logging.Logger, us UserProvider, ts TaskProvider) (*Server, error) {
	return &Server{
		address:     cfg.EndpointAddr,
		logger:      l.With("module", "http_server"),
		users:       us,
		tasks:       ts,
		jwtSecret:   []byte(cfg.SecretKey),
		adminToken:  []byte(cfg.AdminToken),
		corsOrigins: cfg.CORSAllowedOrigins,
	}, nil
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
