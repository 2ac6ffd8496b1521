package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type lessonItemService interface {
	ListNotes(ctx context.Context, lessonID string) ([]models.Note, error)
	GetNote(ctx context.Context, lessonID, id string) (*models.Note, error)
	CreateNote(ctx context.Context, lessonID string, req dto.CreateNoteRequest) (*models.Note, error)
	UpdateNote(ctx context.Context, lessonID, id string, req dto.UpdateNoteRequest) (*models.Note, error)
	DeleteNote(ctx context.Context, lessonID, id string) error

	ListResources(ctx context.Context, lessonID string) ([]models.Resource, error)
	GetResource(ctx context.Context, lessonID, id string) (*models.Resource, error)
	CreateResource(ctx context.Context, lessonID string, req dto.CreateResourceRequest) (*models.Resource, error)
	UpdateResource(ctx context.Context, lessonID, id string, req dto.UpdateResourceRequest) (*models.Resource, error)
	DeleteResource(ctx context.Context, lessonID, id string) error

	ListTodos(ctx context.Context, lessonID string) ([]dto.TodoItem, error)
	GetTodo(ctx context.Context, lessonID, id string) (*dto.TodoItem, error)
	CreateTodo(ctx context.Context, lessonID string, req dto.CreateTodoRequest) (*dto.TodoItem, error)
	UpdateTodo(ctx context.Context, lessonID, id string, req dto.UpdateTodoRequest) (*dto.TodoItem, error)
	ToggleTodo(ctx context.Context, lessonID, id string) (*dto.TodoItem, error)
	DeleteTodo(ctx context.Context, lessonID, id string) error
}

// LessonItemHandler exposes the notes, resources and todos nested under a lesson.
type LessonItemHandler struct {
	service lessonItemService
}

// NewLessonItemHandler builds a lesson item handler.
func NewLessonItemHandler(service lessonItemService) *LessonItemHandler {
	return &LessonItemHandler{service: service}
}

func respond(c *gin.Context, status int, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, data, nil)
}

func respondDeleted(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListNotes godoc
// @Summary List lesson notes
// @Tags Lesson Notes
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/notes [get]
func (h *LessonItemHandler) ListNotes(c *gin.Context) {
	notes, err := h.service.ListNotes(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, notes, err)
}

// GetNote godoc
// @Summary Get lesson note
// @Tags Lesson Notes
// @Produce json
// @Param id path string true "Lesson ID"
// @Param note_id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/notes/{note_id} [get]
func (h *LessonItemHandler) GetNote(c *gin.Context) {
	note, err := h.service.GetNote(c.Request.Context(), c.Param("id"), c.Param("note_id"))
	respond(c, http.StatusOK, note, err)
}

// CreateNote godoc
// @Summary Add lesson note
// @Tags Lesson Notes
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.CreateNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Router /lessons/{id}/notes [post]
func (h *LessonItemHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.service.CreateNote(c.Request.Context(), c.Param("id"), req)
	respond(c, http.StatusCreated, note, err)
}

// UpdateNote godoc
// @Summary Update lesson note
// @Tags Lesson Notes
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param note_id path string true "Note ID"
// @Param payload body dto.UpdateNoteRequest true "Note payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/notes/{note_id} [put]
func (h *LessonItemHandler) UpdateNote(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.service.UpdateNote(c.Request.Context(), c.Param("id"), c.Param("note_id"), req)
	respond(c, http.StatusOK, note, err)
}

// DeleteNote godoc
// @Summary Delete lesson note
// @Tags Lesson Notes
// @Param id path string true "Lesson ID"
// @Param note_id path string true "Note ID"
// @Success 204
// @Router /lessons/{id}/notes/{note_id} [delete]
func (h *LessonItemHandler) DeleteNote(c *gin.Context) {
	respondDeleted(c, h.service.DeleteNote(c.Request.Context(), c.Param("id"), c.Param("note_id")))
}

// ListResources godoc
// @Summary List lesson resources
// @Tags Lesson Resources
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/resources [get]
func (h *LessonItemHandler) ListResources(c *gin.Context) {
	resources, err := h.service.ListResources(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, resources, err)
}

// GetResource godoc
// @Summary Get lesson resource
// @Tags Lesson Resources
// @Produce json
// @Param id path string true "Lesson ID"
// @Param resource_id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/resources/{resource_id} [get]
func (h *LessonItemHandler) GetResource(c *gin.Context) {
	resource, err := h.service.GetResource(c.Request.Context(), c.Param("id"), c.Param("resource_id"))
	respond(c, http.StatusOK, resource, err)
}

// CreateResource godoc
// @Summary Add lesson resource
// @Tags Lesson Resources
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.CreateResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Router /lessons/{id}/resources [post]
func (h *LessonItemHandler) CreateResource(c *gin.Context) {
	var req dto.CreateResourceRequest
	if !bindJSON(c, &req) {
		return
	}
	resource, err := h.service.CreateResource(c.Request.Context(), c.Param("id"), req)
	respond(c, http.StatusCreated, resource, err)
}

// UpdateResource godoc
// @Summary Update lesson resource
// @Tags Lesson Resources
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param resource_id path string true "Resource ID"
// @Param payload body dto.UpdateResourceRequest true "Resource payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/resources/{resource_id} [put]
func (h *LessonItemHandler) UpdateResource(c *gin.Context) {
	var req dto.UpdateResourceRequest
	if !bindJSON(c, &req) {
		return
	}
	resource, err := h.service.UpdateResource(c.Request.Context(), c.Param("id"), c.Param("resource_id"), req)
	respond(c, http.StatusOK, resource, err)
}

// DeleteResource godoc
// @Summary Delete lesson resource
// @Tags Lesson Resources
// @Param id path string true "Lesson ID"
// @Param resource_id path string true "Resource ID"
// @Success 204
// @Router /lessons/{id}/resources/{resource_id} [delete]
func (h *LessonItemHandler) DeleteResource(c *gin.Context) {
	respondDeleted(c, h.service.DeleteResource(c.Request.Context(), c.Param("id"), c.Param("resource_id")))
}

// ListTodos godoc
// @Summary List lesson todos
// @Description Open todos first, then by priority and creation time.
// @Tags Lesson Todos
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/todos [get]
func (h *LessonItemHandler) ListTodos(c *gin.Context) {
	todos, err := h.service.ListTodos(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, todos, err)
}

// GetTodo godoc
// @Summary Get lesson todo
// @Tags Lesson Todos
// @Produce json
// @Param id path string true "Lesson ID"
// @Param todo_id path string true "Todo ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/todos/{todo_id} [get]
func (h *LessonItemHandler) GetTodo(c *gin.Context) {
	todo, err := h.service.GetTodo(c.Request.Context(), c.Param("id"), c.Param("todo_id"))
	respond(c, http.StatusOK, todo, err)
}

// CreateTodo godoc
// @Summary Add lesson todo
// @Tags Lesson Todos
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.CreateTodoRequest true "Todo payload"
// @Success 201 {object} response.Envelope
// @Router /lessons/{id}/todos [post]
func (h *LessonItemHandler) CreateTodo(c *gin.Context) {
	var req dto.CreateTodoRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.service.CreateTodo(c.Request.Context(), c.Param("id"), req)
	respond(c, http.StatusCreated, todo, err)
}

// UpdateTodo godoc
// @Summary Update lesson todo
// @Tags Lesson Todos
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param todo_id path string true "Todo ID"
// @Param payload body dto.UpdateTodoRequest true "Todo payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/todos/{todo_id} [put]
func (h *LessonItemHandler) UpdateTodo(c *gin.Context) {
	var req dto.UpdateTodoRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.service.UpdateTodo(c.Request.Context(), c.Param("id"), c.Param("todo_id"), req)
	respond(c, http.StatusOK, todo, err)
}

// ToggleTodo godoc
// @Summary Flip todo completion
// @Tags Lesson Todos
// @Produce json
// @Param id path string true "Lesson ID"
// @Param todo_id path string true "Todo ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/todos/{todo_id}/toggle [patch]
func (h *LessonItemHandler) ToggleTodo(c *gin.Context) {
	todo, err := h.service.ToggleTodo(c.Request.Context(), c.Param("id"), c.Param("todo_id"))
	respond(c, http.StatusOK, todo, err)
}

// DeleteTodo godoc
// @Summary Delete lesson todo
// @Tags Lesson Todos
// @Param id path string true "Lesson ID"
// @Param todo_id path string true "Todo ID"
// @Success 204
// @Router /lessons/{id}/todos/{todo_id} [delete]
func (h *LessonItemHandler) DeleteTodo(c *gin.Context) {
	respondDeleted(c, h.service.DeleteTodo(c.Request.Context(), c.Param("id"), c.Param("todo_id")))
}
