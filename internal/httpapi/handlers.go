package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/revise/internal/mastery"
	"github.com/abhisek/revise/internal/spacedrep"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// ReviewHandlerConfig wires a ReviewHandler.
type ReviewHandlerConfig struct {
	Scheduler          *spacedrep.Scheduler
	Repository         mastery.Repository
	RepositoryTimeout  time.Duration
	DefaultLimit       int
	DefaultHorizonDays int
	Logger             *zap.Logger
}

// ReviewHandler serves the review endpoints of one student's course.
type ReviewHandler struct {
	sched          *spacedrep.Scheduler
	repo           mastery.Repository
	timeout        time.Duration
	defaultLimit   int
	defaultHorizon int
	log            *zap.Logger
}

func NewReviewHandler(cfg ReviewHandlerConfig) *ReviewHandler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewHandler{
		sched:          cfg.Scheduler,
		repo:           cfg.Repository,
		timeout:        cfg.RepositoryTimeout,
		defaultLimit:   cfg.DefaultLimit,
		defaultHorizon: cfg.DefaultHorizonDays,
		log:            log.Named("reviews"),
	}
}

type recommendationsResponse struct {
	StudentID       string                         `json:"student_id"`
	CourseID        string                         `json:"course_id"`
	Recommendations []spacedrep.RecommendationItem `json:"recommendations"`
}

type statsResponse struct {
	StudentID string                `json:"student_id"`
	CourseID  string                `json:"course_id"`
	Stats     spacedrep.ReviewStats `json:"stats"`
}

type upcomingResponse struct {
	StudentID   string                          `json:"student_id"`
	CourseID    string                          `json:"course_id"`
	HorizonDays int                             `json:"horizon_days"`
	Upcoming    []spacedrep.UpcomingReviewEntry `json:"upcoming"`
}

type scheduleResponse struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	*spacedrep.Schedule
}

// GET /api/students/:studentID/courses/:courseID/reviews/recommendations?limit=
func (h *ReviewHandler) Recommendations(c *gin.Context) {
	limit, ok := h.intQuery(c, "limit", h.defaultLimit)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	studentID, courseID := c.Param("studentID"), c.Param("courseID")
	items, err := h.sched.Recommendations(ctx, h.repo, studentID, courseID, limit)
	if err != nil {
		RespondSchedulerError(c, err)
		return
	}
	RespondOK(c, recommendationsResponse{
		StudentID:       studentID,
		CourseID:        courseID,
		Recommendations: items,
	})
}

// GET /api/students/:studentID/courses/:courseID/reviews/stats
func (h *ReviewHandler) Stats(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	studentID, courseID := c.Param("studentID"), c.Param("courseID")
	stats, err := h.sched.Stats(ctx, h.repo, studentID, courseID)
	if err != nil {
		RespondSchedulerError(c, err)
		return
	}
	RespondOK(c, statsResponse{StudentID: studentID, CourseID: courseID, Stats: stats})
}

// GET /api/students/:studentID/courses/:courseID/reviews/upcoming?horizon_days=
func (h *ReviewHandler) Upcoming(c *gin.Context) {
	horizon, ok := h.intQuery(c, "horizon_days", h.defaultHorizon)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	studentID, courseID := c.Param("studentID"), c.Param("courseID")
	entries, err := h.sched.Upcoming(ctx, h.repo, studentID, courseID, horizon)
	if err != nil {
		RespondSchedulerError(c, err)
		return
	}
	RespondOK(c, upcomingResponse{
		StudentID:   studentID,
		CourseID:    courseID,
		HorizonDays: horizon,
		Upcoming:    entries,
	})
}

// GET /api/students/:studentID/courses/:courseID/reviews/schedule?limit=&horizon_days=
func (h *ReviewHandler) Schedule(c *gin.Context) {
	limit, ok := h.intQuery(c, "limit", h.defaultLimit)
	if !ok {
		return
	}
	horizon, ok := h.intQuery(c, "horizon_days", h.defaultHorizon)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	studentID, courseID := c.Param("studentID"), c.Param("courseID")
	sched, err := h.sched.Schedule(ctx, h.repo, studentID, courseID, spacedrep.Options{
		Limit:       limit,
		HorizonDays: horizon,
	})
	if err != nil {
		RespondSchedulerError(c, err)
		return
	}
	RespondOK(c, scheduleResponse{StudentID: studentID, CourseID: courseID, Schedule: sched})
}

func (h *ReviewHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// intQuery parses an optional integer query parameter. Range checks are left
// to the scheduler so the error message names the same field everywhere.
func (h *ReviewHandler) intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("invalid %s (%q): not an integer", name, raw))
		return 0, false
	}
	return n, true
}
