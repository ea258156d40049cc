// Package fakeremote is an in-memory implementation of the task service REST API.
// It backs the gateway tests and the todo-mock development server.
package fakeremote

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todo/internal/service"
)

// Route names for failure injection.
const (
	RouteList   = "list"
	RouteGet    = "get"
	RouteCreate = "create"
	RouteUpdate = "update"
	RouteDelete = "delete"
)

// Server holds tasks in insertion order.
type Server struct {
	mu        sync.RWMutex
	tasks     []service.Task
	now       func() time.Time
	failures  map[string]int  // route -> forced status
	emptyBody map[string]bool // route -> answer 2xx without body
	lastQuery url.Values

	router *gin.Engine
}

// New creates a server. now defaults to time.Now; mw runs before every
// route, e.g. gin.Logger() for the development server.
func New(now func() time.Time, mw ...gin.HandlerFunc) *Server {
	if now == nil {
		now = time.Now
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(mw...)

	s := &Server{
		now:       now,
		failures:  make(map[string]int),
		emptyBody: make(map[string]bool),
		router:    router,
	}

	router.GET("/tasks", s.intercept(RouteList), s.handleList)
	router.GET("/tasks/:id", s.intercept(RouteGet), s.handleGet)
	router.POST("/tasks", s.intercept(RouteCreate), s.handleCreate)
	router.PUT("/tasks/:id", s.intercept(RouteUpdate), s.handleUpdate)
	router.DELETE("/tasks/:id", s.intercept(RouteDelete), s.handleDelete)

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Seed stores tasks as given, keeping their ids and dates.
func (s *Server) Seed(tasks ...service.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, tasks...)
}

// Tasks returns a copy of the stored tasks in insertion order.
func (s *Server) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// SetFailure forces route to answer with status. A zero status clears it.
func (s *Server) SetFailure(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// SetEmptyBody makes route answer its normal success status with no body.
func (s *Server) SetEmptyBody(route string, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyBody[route] = empty
}

// LastListQuery returns the query of the most recent list request.
func (s *Server) LastListQuery() url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuery
}

func (s *Server) intercept(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.RLock()
		status, failing := s.failures[route]
		s.mu.RUnlock()
		if failing {
			c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": status, "message": "injected failure"}})
			return
		}
		c.Next()
	}
}

func (s *Server) isEmpty(route string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emptyBody[route]
}

func (s *Server) handleList(c *gin.Context) {
	s.mu.Lock()
	s.lastQuery = c.Request.URL.Query()
	s.mu.Unlock()

	var completed *bool
	if raw, ok := c.GetQuery("completed"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid completed value")
			return
		}
		completed = &v
	}

	var key string
	desc := false
	if raw := c.Query("sort_by"); raw != "" {
		switch raw[0] {
		case '-':
			desc = true
			key = raw[1:]
		case '+', ' ': // an unescaped '+' arrives as a space
			key = raw[1:]
		default:
			key = raw
		}
		if key != "dueDate" && key != "createdDate" {
			badRequest(c, "invalid sort_by value")
			return
		}
	}

	s.mu.RLock()
	result := make([]service.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if completed == nil || t.Completed == *completed {
			result = append(result, t)
		}
	}
	s.mu.RUnlock()

	if key != "" {
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i].DueDate, result[j].DueDate
			if key == "createdDate" {
				a, b = result[i].CreatedDate, result[j].CreatedDate
			}
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}

	if s.isEmpty(RouteList) {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGet(c *gin.Context) {
	id := c.Param("id")
	s.mu.RLock()
	i := s.indexOf(id)
	var task service.Task
	if i >= 0 {
		task = s.tasks[i]
	}
	s.mu.RUnlock()

	if i < 0 {
		notFound(c)
		return
	}
	if s.isEmpty(RouteGet) {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleCreate(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	task := service.Task{
		ID:          uuid.NewString(),
		Description: draft.Description,
		CreatedDate: s.now().UTC(),
		DueDate:     draft.DueDate,
		Completed:   draft.Completed,
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	if s.isEmpty(RouteCreate) {
		c.Status(http.StatusCreated)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdate(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	id := c.Param("id")
	s.mu.Lock()
	i := s.indexOf(id)
	var task service.Task
	if i >= 0 {
		s.tasks[i].Description = draft.Description
		s.tasks[i].DueDate = draft.DueDate
		s.tasks[i].Completed = draft.Completed
		task = s.tasks[i]
	}
	s.mu.Unlock()

	if i < 0 {
		notFound(c)
		return
	}
	if s.isEmpty(RouteUpdate) {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleDelete answers 204 whether or not the task existed.
func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func bindDraft(c *gin.Context) (service.Draft, bool) {
	var d service.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "invalid task payload")
		return d, false
	}
	if strings.TrimSpace(d.Description) == "" {
		badRequest(c, "taskDescription is required")
		return d, false
	}
	return d, true
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": http.StatusBadRequest, "message": msg}})
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{"code": http.StatusNotFound, "message": "task not found"}})
}
