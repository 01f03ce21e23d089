package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/services/task"
)

type taskHandlers struct {
	tasks  *task.Service
	logger zerolog.Logger
}

func (h *taskHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req newTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	current, _ := auth.CurrentUser(r.Context())
	t, err := h.tasks.Create(r.Context(), task.NewTask{Title: req.Title}, current)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(t))
}

func (h *taskHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	current, _ := auth.CurrentUser(r.Context())
	t, err := h.tasks.Update(r.Context(), chi.URLParam(r, "id"), task.Changes{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
	}, current)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *taskHandlers) listMine(w http.ResponseWriter, r *http.Request) {
	current, _ := auth.CurrentUser(r.Context())
	tasks, err := h.tasks.ListByUser(r.Context(), current.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}
