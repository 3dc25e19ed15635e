package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"taskdeck/middleware"
	"taskdeck/models"
	"taskdeck/utils"
)

// TaskStore is the repository surface the task handlers need. ByID carries
// no ownership filter; Update and Delete are only called after the handler
// has confirmed the caller owns the task.
type TaskStore interface {
	Create(ctx context.Context, ownerID int, title string, description *string) (models.Task, error)
	ByID(ctx context.Context, id int) (models.Task, error)
	ForOwner(ctx context.Context, ownerID int) ([]models.Task, error)
	All(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, id int, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, id int) error
}

type TaskHandler struct {
	tasks TaskStore
	log   *logrus.Logger
}

func NewTaskHandler(tasks TaskStore, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Create inserts a task owned by the authenticated caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateTaskTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		h.log.WithError(err).Error("creating task")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// List returns the authenticated caller's tasks. Order is unspecified.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	tasks, err := h.tasks.ForOwner(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("listing tasks")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// ListAll returns every task across all owners without any authorization
// check. Known policy gap, flagged in DESIGN.md rather than silently
// restricted.
func (h *TaskHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.All(r.Context())
	if err != nil {
		h.log.WithError(err).Error("listing all tasks")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Update applies a partial update after the ownership check: fetch by id,
// 404 if absent, 403 if the caller is not the owner. Nothing is written
// before the authorization decision.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Title != nil {
		if err := utils.ValidateTaskTitle(*patch.Title); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	task, err := h.tasks.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.log.WithError(err).Error("fetching task")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if task.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, "Not authorized to update this task")
		return
	}

	updated, err := h.tasks.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.log.WithError(err).Error("updating task")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a task after the same ownership check as Update. A second
// delete on the same id returns 404.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.log.WithError(err).Error("fetching task")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if task.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, "Not authorized to delete this task")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.log.WithError(err).Error("deleting task")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Task deleted successfully"})
}

func taskID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}
