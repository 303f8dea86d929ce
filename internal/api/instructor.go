package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/models"
)

// catalogService is the subset of learn.Service used for course authoring
type catalogService interface {
	CreateCourse(ctx context.Context, instructorID string, draft learn.CourseDraft) (*models.Course, error)
	ListInstructorCourses(ctx context.Context, instructorID string) ([]*models.Course, error)
	CreateModule(ctx context.Context, courseID string, draft learn.ModuleDraft) (*models.Module, error)
	CreateInteraction(ctx context.Context, courseID, moduleID string, draft learn.InteractionDraft) (*learn.PublicInteraction, error)
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CreateModuleRequest represents a request to add a module to a course
type CreateModuleRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title" binding:"required"`
	Position int    `json:"position"`
	VideoURL string `json:"video_url"`
}

// CreateInteractionRequest represents a request to place a quiz on a module
type CreateInteractionRequest struct {
	ID            string   `json:"id"`
	Timestamp     *int     `json:"timestamp" binding:"required"`
	Question      string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectOption string   `json:"correct_option" binding:"required"`
	Feedback      string   `json:"feedback"`
}

// InstructorHandler handles course authoring requests
type InstructorHandler struct {
	service catalogService
}

// NewInstructorHandler creates a new instructor handler instance
func NewInstructorHandler(service catalogService) *InstructorHandler {
	return &InstructorHandler{service: service}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

// ListCourses handles GET /api/instructor/courses
func (h *InstructorHandler) ListCourses(c *gin.Context) {
	instructorID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	courses, err := h.service.ListInstructorCourses(ctx, instructorID)
	if err != nil {
		respondError(c, err, "list_failed")
		return
	}
	if courses == nil {
		courses = []*models.Course{}
	}

	c.JSON(http.StatusOK, courses)
}

// CreateCourse handles POST /api/instructor/courses
func (h *InstructorHandler) CreateCourse(c *gin.Context) {
	instructorID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	course, err := h.service.CreateCourse(ctx, instructorID, learn.CourseDraft{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "create_failed")
		return
	}

	c.JSON(http.StatusCreated, course)
}

// CreateModule handles POST /api/instructor/courses/:course_id/modules
func (h *InstructorHandler) CreateModule(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	var req CreateModuleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	module, err := h.service.CreateModule(ctx, c.Param("course_id"), learn.ModuleDraft{
		ID:       req.ID,
		Title:    req.Title,
		Position: req.Position,
		VideoURL: req.VideoURL,
	})
	if err != nil {
		respondError(c, err, "create_failed")
		return
	}

	c.JSON(http.StatusCreated, module)
}

// CreateInteraction handles POST /api/instructor/courses/:course_id/modules/:module_id/interactions
func (h *InstructorHandler) CreateInteraction(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	var req CreateInteractionRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	point, err := h.service.CreateInteraction(ctx, c.Param("course_id"), c.Param("module_id"), learn.InteractionDraft{
		ID:            req.ID,
		Timestamp:     *req.Timestamp,
		Question:      req.Question,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		Feedback:      req.Feedback,
	})
	if err != nil {
		respondError(c, err, "create_failed")
		return
	}

	c.JSON(http.StatusCreated, point)
}

// SetupInstructorRoutes registers course authoring routes
func SetupInstructorRoutes(apiGroup *gin.RouterGroup, service catalogService) {
	handler := NewInstructorHandler(service)

	courses := apiGroup.Group("/instructor/courses")
	courses.GET("", handler.ListCourses)
	courses.POST("", handler.CreateCourse)
	courses.POST("/:course_id/modules", handler.CreateModule)
	courses.POST("/:course_id/modules/:module_id/interactions", handler.CreateInteraction)
}
