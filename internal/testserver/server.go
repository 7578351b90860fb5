// Package testserver is an in-memory implementation of the task REST API.
// It backs the client's tests and the devserver command; it is not meant
// to run in production.
package testserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/taskclient/internal/model"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 30 * time.Minute

var errEmailTaken = errors.New("email already registered")

// Request is a recorded inbound call.
type Request struct {
	Method string
	// URI is the path plus raw query, e.g. /tasks/?skip=0&limit=100.
	URI  string
	Body string
}

type account struct {
	user model.User
	hash []byte
}

// Server is the fake backend.
type Server struct {
	mu         sync.Mutex
	secret     []byte
	now        func() time.Time
	accounts   map[string]*account
	tasks      map[int]*model.Task
	nextUserID int
	nextTaskID int
	requests   []Request
	engine     *gin.Engine
}

// New builds a server. Request logs go to logOut when it is non-nil.
func New(logOut io.Writer) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		secret:     []byte("taskclient-dev-secret"),
		now:        time.Now,
		accounts:   make(map[string]*account),
		tasks:      make(map[int]*model.Task),
		nextUserID: 1,
		nextTaskID: 1,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if logOut != nil {
		r.Use(gin.LoggerWithWriter(logOut))
	}
	r.Use(s.record)

	r.POST("/token", s.handleToken)
	r.POST("/users/", s.handleRegister)

	authed := r.Group("/", s.requireUser)
	authed.GET("/users/me/", s.handleMe)
	authed.GET("/tasks/", s.handleListTasks)
	authed.POST("/tasks/", s.handleCreateTask)
	authed.GET("/tasks/:id", s.handleGetTask)
	authed.PUT("/tasks/:id", s.handleUpdateTask)
	authed.DELETE("/tasks/:id", s.handleDeleteTask)

	s.engine = r
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// ResetRequests drops the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// CreateUser seeds an account directly.
func (s *Server) CreateUser(name, email, password string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(name, email, password)
}

// RemoveUser deletes the account for email. Tokens already issued to it
// stop validating.
func (s *Server) RemoveUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, email)
}

// IssueToken mints a token for email that expires after ttl.
func (s *Server) IssueToken(email string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Tasks returns the stored tasks ordered by id.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTasksLocked(func(model.Task) bool { return true })
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(strings.NewReader(string(body)))
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		URI:    c.Request.URL.RequestURI(),
		Body:   string(body),
	})
	s.mu.Unlock()
	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (s *Server) createUserLocked(name, email, password string) (model.User, error) {
	if _, exists := s.accounts[email]; exists {
		return model.User{}, errEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}
	u := model.User{
		ID:        s.nextUserID,
		Name:      name,
		Email:     email,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	s.nextUserID++
	s.accounts[email] = &account{user: u, hash: hash}
	return u, nil
}

func (s *Server) handleToken(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		c.Header("WWW-Authenticate", "Bearer")
		detail(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := s.IssueToken(email, TokenTTL)
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleRegister(c *gin.Context) {
	var reg model.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	var missing []gin.H
	for field, v := range map[string]string{"name": reg.Name, "email": reg.Email, "password": reg.Password} {
		if v == "" {
			missing = append(missing, gin.H{"loc": []string{"body", field}, "msg": field + " field required", "type": "value_error.missing"})
		}
	}
	if reg.Email != "" && !strings.Contains(reg.Email, "@") {
		missing = append(missing, gin.H{"loc": []string{"body", "email"}, "msg": "value is not a valid email address", "type": "value_error.email"})
	}
	if len(missing) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": missing})
		return
	}

	s.mu.Lock()
	u, err := s.createUserLocked(reg.Name, reg.Email, reg.Password)
	s.mu.Unlock()
	if errors.Is(err, errEmailTaken) {
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) requireUser(c *gin.Context) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		c.Header("WWW-Authenticate", "Bearer")
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw[7:]), claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[claims.Subject]
	s.mu.Unlock()
	if !ok {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	if !acct.user.IsActive {
		detail(c, http.StatusBadRequest, "Inactive user")
		return
	}

	c.Set("user", acct.user)
	c.Next()
}

func currentUser(c *gin.Context) model.User {
	return c.MustGet("user").(model.User)
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) sortedTasksLocked(keep func(model.Task) bool) []model.Task {
	out := []model.Task{}
	for _, t := range s.tasks {
		if keep(*t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) handleListTasks(c *gin.Context) {
	user := currentUser(c)
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	priority := c.Query("priority")

	var completed *bool
	if v, ok := c.GetQuery("completed"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			detail(c, http.StatusUnprocessableEntity, "completed must be a boolean")
			return
		}
		completed = &b
	}

	s.mu.Lock()
	tasks := s.sortedTasksLocked(func(t model.Task) bool {
		if t.UserID != user.ID {
			return false
		}
		if priority != "" && string(t.Priority) != priority {
			return false
		}
		return completed == nil || t.Completed == *completed
	})
	s.mu.Unlock()

	if skip > len(tasks) {
		skip = len(tasks)
	}
	tasks = tasks[skip:]
	if limit >= 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user := currentUser(c)

	var draft model.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(draft.Title) == "" {
		detail(c, http.StatusUnprocessableEntity, "Title is required")
		return
	}
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	if !draft.Priority.Valid() {
		detail(c, http.StatusUnprocessableEntity, "Priority must be low, medium or high")
		return
	}

	now := s.now().UTC()
	s.mu.Lock()
	task := &model.Task{
		ID:          s.nextTaskID,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      user.ID,
	}
	s.nextTaskID++
	s.tasks[task.ID] = task
	out := *task
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

// ownedTaskLocked resolves :id to a task owned by the current user.
func (s *Server) ownedTaskLocked(c *gin.Context) (*model.Task, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, false
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != currentUser(c).ID {
		return nil, false
	}
	return t, true
}

func (s *Server) handleGetTask(c *gin.Context) {
	s.mu.Lock()
	t, ok := s.ownedTaskLocked(c)
	var out model.Task
	if ok {
		out = *t
	}
	s.mu.Unlock()

	if !ok {
		detail(c, http.StatusNotFound, "Task not found")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.ownedTaskLocked(c)
	if !ok {
		detail(c, http.StatusNotFound, "Task not found")
		return
	}

	updated := *t
	for key, raw := range fields {
		var err error
		switch key {
		case "title":
			err = json.Unmarshal(raw, &updated.Title)
		case "description":
			updated.Description = nil
			err = json.Unmarshal(raw, &updated.Description)
		case "priority":
			err = json.Unmarshal(raw, &updated.Priority)
			if err == nil && !updated.Priority.Valid() {
				err = errors.New("invalid priority")
			}
		case "due_date":
			updated.DueDate = nil
			err = json.Unmarshal(raw, &updated.DueDate)
		case "completed":
			err = json.Unmarshal(raw, &updated.Completed)
		}
		if err != nil {
			detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid value for %s", key))
			return
		}
	}

	updated.UpdatedAt = s.now().UTC()
	*t = updated
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	s.mu.Lock()
	t, ok := s.ownedTaskLocked(c)
	if ok {
		delete(s.tasks, t.ID)
	}
	s.mu.Unlock()

	if !ok {
		detail(c, http.StatusNotFound, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
