package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/server/models"
	"github.com/dklimov/taskvault/internal/server/services"
	"github.com/gorilla/mux"
)

type taskCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type taskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type taskListResponse struct {
	Tasks     []taskResponse `json:"tasks"`
	Total     int64          `json:"total"`
	Completed int64          `json:"completed"`
	Pending   int64          `json:"pending"`
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// callerID resolves the authenticated user from the request context. The auth
// middleware guarantees it is present; the guard is against miswired routes.
func (s *HTTPServer) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrInvalidToken)
		return "", false
	}
	return userID, true
}

// CreateTaskHandler inserts a task owned by the caller and returns 201.
func (s *HTTPServer) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {

	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	var req taskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body"})
		return
	}

	task, err := s.tasks.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

// ListTasksHandler returns one page of the caller's tasks plus counts over
// the full owned set.
func (s *HTTPServer) ListTasksHandler(w http.ResponseWriter, r *http.Request) {

	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "limit must be an integer"})
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "offset must be an integer"})
		return
	}

	list, err := s.tasks.List(r.Context(), userID, limit, offset)
	if err != nil {
		s.logger.Error(r.Context(), "list tasks failed", "error", err.Error())
		writeError(w, err)
		return
	}

	resp := taskListResponse{
		Tasks:     make([]taskResponse, 0, len(list.Tasks)),
		Total:     list.Total,
		Completed: list.Completed,
		Pending:   list.Pending,
	}
	for _, task := range list.Tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(task))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) GetTaskHandler(w http.ResponseWriter, r *http.Request) {

	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	task, err := s.tasks.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *HTTPServer) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {

	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid request body"})
		return
	}

	task, err := s.tasks.Update(r.Context(), userID, mux.Vars(r)["id"], services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *HTTPServer) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {

	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	taskID := mux.Vars(r)["id"]
	if err := s.tasks.Delete(r.Context(), userID, taskID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

func (s *HTTPServer) ToggleTaskHandler(w http.ResponseWriter, r *http.Request) {

	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	task, err := s.tasks.Toggle(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
