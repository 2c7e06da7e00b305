// ABOUTME: REST API handlers for accounts, children, tasks, rewards, and claims
// ABOUTME: JSON over ServeMux patterns with JWT middleware and parent-scoped authz

package gateway

import (
	"crypto/rand"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/famcoin/famcoin-gateway/internal/auth"
	"github.com/famcoin/famcoin-gateway/internal/metrics"
	"github.com/famcoin/famcoin-gateway/internal/store"
)

// api holds the REST layer's collaborators.
type api struct {
	store    store.Store
	verifier *auth.JWTVerifier
	tokenTTL time.Duration
	logger   *slog.Logger
}

func newAPI(s store.Store, verifier *auth.JWTVerifier, tokenTTL time.Duration, logger *slog.Logger) *api {
	return &api{
		store:    s,
		verifier: verifier,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "api"),
	}
}

// registerRoutes attaches all REST routes to the mux. Auth endpoints are
// public; everything else requires a valid token, and mutating family
// resources additionally requires the parent role.
func (a *api) registerRoutes(mux *http.ServeMux) {
	authed := auth.HTTPAuthMiddleware(a.verifier)
	parent := func(h http.HandlerFunc) http.Handler {
		return authed(auth.RequireParentHTTP()(h))
	}
	anyRole := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}

	mux.HandleFunc("POST /api/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.HandleFunc("POST /api/auth/child-login", a.handleChildLogin)
	mux.Handle("GET /api/auth/me", anyRole(a.handleMe))

	mux.Handle("POST /api/children", parent(a.handleCreateChild))
	mux.Handle("GET /api/children", parent(a.handleListChildren))
	mux.Handle("GET /api/children/{id}", anyRole(a.handleGetChild))
	mux.Handle("PUT /api/children/{id}", parent(a.handleUpdateChild))
	mux.Handle("DELETE /api/children/{id}", parent(a.handleDeleteChild))

	mux.Handle("POST /api/categories", parent(a.handleCreateCategory))
	mux.Handle("GET /api/categories", parent(a.handleListCategories))
	mux.Handle("DELETE /api/categories/{id}", parent(a.handleDeleteCategory))

	mux.Handle("POST /api/tasks", parent(a.handleCreateTask))
	mux.Handle("GET /api/tasks", anyRole(a.handleListTasks))
	mux.Handle("GET /api/tasks/{id}", anyRole(a.handleGetTask))
	mux.Handle("PUT /api/tasks/{id}", parent(a.handleUpdateTask))
	mux.Handle("DELETE /api/tasks/{id}", parent(a.handleDeleteTask))
	mux.Handle("POST /api/tasks/{id}/submit", anyRole(a.handleSubmitTask))
	mux.Handle("POST /api/tasks/{id}/approve", parent(a.handleApproveTask))
	mux.Handle("POST /api/tasks/{id}/reject", parent(a.handleRejectTask))

	mux.Handle("POST /api/rewards", parent(a.handleCreateReward))
	mux.Handle("GET /api/rewards", anyRole(a.handleListRewards))
	mux.Handle("PUT /api/rewards/{id}", parent(a.handleUpdateReward))
	mux.Handle("DELETE /api/rewards/{id}", parent(a.handleDeleteReward))
	mux.Handle("POST /api/rewards/{id}/claim", anyRole(a.handleClaimReward))

	mux.Handle("GET /api/claims", anyRole(a.handleListClaims))
	mux.Handle("POST /api/claims/{id}/resolve", parent(a.handleResolveClaim))

	mux.Handle("GET /api/challenges", anyRole(a.handleListChallenges))
	mux.Handle("POST /api/challenges", parent(a.handleCreateChallenge))

	// Static dataset, no auth
	mux.HandleFunc("GET /api/holidays", a.handleHolidays)
}

// --- helpers ---

func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("encoding response failed", "error", err)
	}
}

func (a *api) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}

// serverError logs the underlying fault and returns a generic message.
func (a *api) serverError(w http.ResponseWriter, action string, err error) {
	a.logger.Error(action+" failed", "error", err)
	a.writeError(w, http.StatusInternalServerError, "Server error")
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// pairingCodeAlphabet omits easily-confused characters (0/O, 1/I/L)
const pairingCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generatePairingCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = pairingCodeAlphabet[int(b)%len(pairingCodeAlphabet)]
	}
	return string(buf), nil
}

// --- auth ---

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type childLoginRequest struct {
	Code string `json:"code"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *store.User  `json:"user,omitempty"`
	Child *store.Child `json:"child,omitempty"`
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		a.writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.serverError(w, "hashing password", err)
		return
	}

	user := &store.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Name:         req.Name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			a.writeError(w, http.StatusConflict, "email already registered")
			return
		}
		a.serverError(w, "creating user", err)
		return
	}

	token, err := a.verifier.GenerateParent(user.ID, a.tokenTTL)
	if err != nil {
		a.serverError(w, "generating token", err)
		return
	}

	a.logger.Info("user registered", "user_id", user.ID)
	a.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}

	user, err := a.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		a.serverError(w, "loading user", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := a.verifier.GenerateParent(user.ID, a.tokenTTL)
	if err != nil {
		a.serverError(w, "generating token", err)
		return
	}

	a.writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (a *api) handleChildLogin(w http.ResponseWriter, r *http.Request) {
	var req childLoginRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		a.writeError(w, http.StatusBadRequest, "code required")
		return
	}

	child, err := a.store.GetChildByCode(r.Context(), strings.ToUpper(req.Code))
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusUnauthorized, "unknown pairing code")
		return
	}
	if err != nil {
		a.serverError(w, "loading child", err)
		return
	}

	token, err := a.verifier.GenerateChild(child.ID, child.ParentID, a.tokenTTL)
	if err != nil {
		a.serverError(w, "generating token", err)
		return
	}

	a.logger.Info("child logged in", "child_id", child.ID)
	a.writeJSON(w, http.StatusOK, authResponse{Token: token, Child: child})
}

func (a *api) handleMe(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	if p.IsChild() {
		child, err := a.store.GetChild(r.Context(), p.ChildID)
		if errors.Is(err, store.ErrNotFound) {
			a.writeError(w, http.StatusNotFound, "child not found")
			return
		}
		if err != nil {
			a.serverError(w, "loading child", err)
			return
		}
		a.writeJSON(w, http.StatusOK, child)
		return
	}

	user, err := a.store.GetUser(r.Context(), p.ParentID)
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		a.serverError(w, "loading user", err)
		return
	}
	a.writeJSON(w, http.StatusOK, user)
}

// --- children ---

type childRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	AvatarURL string `json:"avatarUrl"`
}

func (a *api) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req childRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		a.writeError(w, http.StatusBadRequest, "name required")
		return
	}

	now := time.Now().UTC()
	child := &store.Child{
		ID:        uuid.New().String(),
		ParentID:  p.ParentID,
		Name:      req.Name,
		Age:       req.Age,
		Gender:    req.Gender,
		AvatarURL: req.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Pairing codes are random; retry the rare collision
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generatePairingCode()
		if err != nil {
			a.serverError(w, "generating pairing code", err)
			return
		}
		child.Code = code

		err = a.store.CreateChild(r.Context(), child)
		if errors.Is(err, store.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			a.serverError(w, "creating child", err)
			return
		}

		a.logger.Info("child created", "child_id", child.ID, "parent_id", p.ParentID)
		a.writeJSON(w, http.StatusCreated, child)
		return
	}

	a.serverError(w, "creating child", errors.New("pairing code collisions exhausted retries"))
}

func (a *api) handleListChildren(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	children, err := a.store.ListChildren(r.Context(), p.ParentID)
	if err != nil {
		a.serverError(w, "listing children", err)
		return
	}
	if children == nil {
		children = []*store.Child{}
	}
	a.writeJSON(w, http.StatusOK, children)
}

// loadOwnedChild fetches a child and verifies the principal may see it:
// the owning parent, or the child itself.
func (a *api) loadOwnedChild(w http.ResponseWriter, r *http.Request, id string) *store.Child {
	p := auth.MustFromContext(r.Context())

	child, err := a.store.GetChild(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "child not found")
		return nil
	}
	if err != nil {
		a.serverError(w, "loading child", err)
		return nil
	}

	if p.IsChild() {
		if p.ChildID != child.ID {
			a.writeError(w, http.StatusNotFound, "child not found")
			return nil
		}
		return child
	}
	if child.ParentID != p.ParentID {
		a.writeError(w, http.StatusNotFound, "child not found")
		return nil
	}
	return child
}

func (a *api) handleGetChild(w http.ResponseWriter, r *http.Request) {
	if child := a.loadOwnedChild(w, r, r.PathValue("id")); child != nil {
		a.writeJSON(w, http.StatusOK, child)
	}
}

func (a *api) handleUpdateChild(w http.ResponseWriter, r *http.Request) {
	child := a.loadOwnedChild(w, r, r.PathValue("id"))
	if child == nil {
		return
	}

	var req childRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Name != "" {
		child.Name = req.Name
	}
	if req.Age != 0 {
		child.Age = req.Age
	}
	if req.Gender != "" {
		child.Gender = req.Gender
	}
	if req.AvatarURL != "" {
		child.AvatarURL = req.AvatarURL
	}

	if err := a.store.UpdateChild(r.Context(), child); err != nil {
		a.serverError(w, "updating child", err)
		return
	}
	a.writeJSON(w, http.StatusOK, child)
}

func (a *api) handleDeleteChild(w http.ResponseWriter, r *http.Request) {
	child := a.loadOwnedChild(w, r, r.PathValue("id"))
	if child == nil {
		return
	}

	if err := a.store.DeleteChild(r.Context(), child.ID); err != nil {
		a.serverError(w, "deleting child", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- categories ---

type categoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (a *api) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req categoryRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		a.writeError(w, http.StatusBadRequest, "name required")
		return
	}

	category := &store.Category{
		ID:        uuid.New().String(),
		ParentID:  p.ParentID,
		Name:      req.Name,
		Icon:      req.Icon,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.CreateCategory(r.Context(), category); err != nil {
		a.serverError(w, "creating category", err)
		return
	}
	a.writeJSON(w, http.StatusCreated, category)
}

func (a *api) handleListCategories(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	categories, err := a.store.ListCategories(r.Context(), p.ParentID)
	if err != nil {
		a.serverError(w, "listing categories", err)
		return
	}
	if categories == nil {
		categories = []*store.Category{}
	}
	a.writeJSON(w, http.StatusOK, categories)
}

func (a *api) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	category, err := a.store.GetCategory(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && category.ParentID != p.ParentID) {
		a.writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		a.serverError(w, "loading category", err)
		return
	}

	if err := a.store.DeleteCategory(r.Context(), category.ID); err != nil {
		a.serverError(w, "deleting category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- tasks ---

type taskRequest struct {
	ChildID          string     `json:"childId"`
	CategoryID       string     `json:"categoryId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Frequency        string     `json:"frequency"`
	Difficulty       string     `json:"difficulty"`
	CoinValue        int64      `json:"coinValue"`
	RequiresApproval *bool      `json:"requiresApproval"`
	DueTime          *time.Time `json:"dueTime"`
}

func (a *api) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req taskRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Title == "" || req.ChildID == "" {
		a.writeError(w, http.StatusBadRequest, "title and childId required")
		return
	}

	child := a.loadOwnedChild(w, r, req.ChildID)
	if child == nil {
		return
	}

	now := time.Now().UTC()
	task := &store.Task{
		ID:               uuid.New().String(),
		ParentID:         p.ParentID,
		ChildID:          child.ID,
		CategoryID:       req.CategoryID,
		Title:            req.Title,
		Description:      req.Description,
		Frequency:        req.Frequency,
		Difficulty:       req.Difficulty,
		CoinValue:        req.CoinValue,
		RequiresApproval: true,
		Status:           store.TaskStatusPending,
		DueTime:          req.DueTime,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.Frequency == "" {
		task.Frequency = store.TaskFrequencyOnce
	}
	if req.Difficulty == "" {
		task.Difficulty = "easy"
	}
	if req.RequiresApproval != nil {
		task.RequiresApproval = *req.RequiresApproval
	}

	if err := a.store.CreateTask(r.Context(), task); err != nil {
		a.serverError(w, "creating task", err)
		return
	}
	a.writeJSON(w, http.StatusCreated, task)
}

func (a *api) handleListTasks(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var tasks []*store.Task
	var err error
	if p.IsChild() {
		tasks, err = a.store.ListTasksByChild(r.Context(), p.ChildID)
	} else if childID := r.URL.Query().Get("childId"); childID != "" {
		tasks, err = a.store.ListTasksByChild(r.Context(), childID)
		if err == nil {
			tasks = filterTasksByParent(tasks, p.ParentID)
		}
	} else {
		tasks, err = a.store.ListTasksByParent(r.Context(), p.ParentID)
	}
	if err != nil {
		a.serverError(w, "listing tasks", err)
		return
	}
	if tasks == nil {
		tasks = []*store.Task{}
	}
	a.writeJSON(w, http.StatusOK, tasks)
}

func filterTasksByParent(tasks []*store.Task, parentID string) []*store.Task {
	filtered := tasks[:0]
	for _, task := range tasks {
		if task.ParentID == parentID {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// loadVisibleTask fetches a task the principal may act on: the owning parent,
// or the assigned child.
func (a *api) loadVisibleTask(w http.ResponseWriter, r *http.Request) *store.Task {
	p := auth.MustFromContext(r.Context())

	task, err := a.store.GetTask(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "task not found")
		return nil
	}
	if err != nil {
		a.serverError(w, "loading task", err)
		return nil
	}

	if p.IsChild() {
		if task.ChildID != p.ChildID {
			a.writeError(w, http.StatusNotFound, "task not found")
			return nil
		}
	} else if task.ParentID != p.ParentID {
		a.writeError(w, http.StatusNotFound, "task not found")
		return nil
	}
	return task
}

func (a *api) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if task := a.loadVisibleTask(w, r); task != nil {
		a.writeJSON(w, http.StatusOK, task)
	}
}

func (a *api) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	task := a.loadVisibleTask(w, r)
	if task == nil {
		return
	}

	var req taskRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.CategoryID != "" {
		task.CategoryID = req.CategoryID
	}
	if req.Frequency != "" {
		task.Frequency = req.Frequency
	}
	if req.Difficulty != "" {
		task.Difficulty = req.Difficulty
	}
	if req.CoinValue != 0 {
		task.CoinValue = req.CoinValue
	}
	if req.RequiresApproval != nil {
		task.RequiresApproval = *req.RequiresApproval
	}
	if req.DueTime != nil {
		task.DueTime = req.DueTime
	}

	if err := a.store.UpdateTask(r.Context(), task); err != nil {
		a.serverError(w, "updating task", err)
		return
	}
	a.writeJSON(w, http.StatusOK, task)
}

func (a *api) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	task := a.loadVisibleTask(w, r)
	if task == nil {
		return
	}

	if err := a.store.DeleteTask(r.Context(), task.ID); err != nil {
		a.serverError(w, "deleting task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitTask records a child reporting a task done. Tasks that don't
// require approval are credited immediately.
func (a *api) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	task := a.loadVisibleTask(w, r)
	if task == nil {
		return
	}

	if task.Status == store.TaskStatusApproved {
		a.writeError(w, http.StatusConflict, "task already approved")
		return
	}

	if !task.RequiresApproval {
		a.completeTask(w, r, task)
		return
	}

	task.Status = store.TaskStatusSubmitted
	if err := a.store.UpdateTask(r.Context(), task); err != nil {
		a.serverError(w, "updating task", err)
		return
	}
	a.writeJSON(w, http.StatusOK, task)
}

func (a *api) handleApproveTask(w http.ResponseWriter, r *http.Request) {
	task := a.loadVisibleTask(w, r)
	if task == nil {
		return
	}

	if task.Status == store.TaskStatusApproved {
		a.writeError(w, http.StatusConflict, "task already approved")
		return
	}

	a.completeTask(w, r, task)
}

// completeTask marks a task approved and credits its coin value exactly once.
func (a *api) completeTask(w http.ResponseWriter, r *http.Request, task *store.Task) {
	task.Status = store.TaskStatusApproved
	if err := a.store.UpdateTask(r.Context(), task); err != nil {
		a.serverError(w, "updating task", err)
		return
	}

	child, err := a.store.AdjustChildCoins(r.Context(), task.ChildID, task.CoinValue)
	if err != nil {
		a.serverError(w, "awarding coins", err)
		return
	}
	metrics.TasksApproved.Inc()

	a.logger.Info("task approved",
		"task_id", task.ID,
		"child_id", task.ChildID,
		"coins_awarded", task.CoinValue,
		"balance", child.Coins)
	a.writeJSON(w, http.StatusOK, map[string]any{"task": task, "child": child})
}

func (a *api) handleRejectTask(w http.ResponseWriter, r *http.Request) {
	task := a.loadVisibleTask(w, r)
	if task == nil {
		return
	}

	if task.Status == store.TaskStatusApproved {
		a.writeError(w, http.StatusConflict, "task already approved")
		return
	}

	task.Status = store.TaskStatusRejected
	if err := a.store.UpdateTask(r.Context(), task); err != nil {
		a.serverError(w, "updating task", err)
		return
	}
	a.writeJSON(w, http.StatusOK, task)
}

// --- rewards ---

type rewardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	Type        string `json:"type"`
	Active      *bool  `json:"active"`
}

func (a *api) handleCreateReward(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req rewardRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		a.writeError(w, http.StatusBadRequest, "title required")
		return
	}
	if req.Cost <= 0 {
		a.writeError(w, http.StatusBadRequest, "cost must be positive")
		return
	}

	now := time.Now().UTC()
	reward := &store.Reward{
		ID:          uuid.New().String(),
		ParentID:    p.ParentID,
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
		Type:        req.Type,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if reward.Type == "" {
		reward.Type = store.RewardTypeCustom
	}
	if req.Active != nil {
		reward.Active = *req.Active
	}

	if err := a.store.CreateReward(r.Context(), reward); err != nil {
		a.serverError(w, "creating reward", err)
		return
	}
	a.writeJSON(w, http.StatusCreated, reward)
}

func (a *api) handleListRewards(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	// Children see only their parent's active rewards
	rewards, err := a.store.ListRewards(r.Context(), p.ParentID, p.IsChild())
	if err != nil {
		a.serverError(w, "listing rewards", err)
		return
	}
	if rewards == nil {
		rewards = []*store.Reward{}
	}
	a.writeJSON(w, http.StatusOK, rewards)
}

func (a *api) loadOwnedReward(w http.ResponseWriter, r *http.Request) *store.Reward {
	p := auth.MustFromContext(r.Context())

	reward, err := a.store.GetReward(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "reward not found")
		return nil
	}
	if err != nil {
		a.serverError(w, "loading reward", err)
		return nil
	}
	if reward.ParentID != p.ParentID {
		a.writeError(w, http.StatusNotFound, "reward not found")
		return nil
	}
	return reward
}

func (a *api) handleUpdateReward(w http.ResponseWriter, r *http.Request) {
	reward := a.loadOwnedReward(w, r)
	if reward == nil {
		return
	}

	var req rewardRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Title != "" {
		reward.Title = req.Title
	}
	if req.Description != "" {
		reward.Description = req.Description
	}
	if req.Cost > 0 {
		reward.Cost = req.Cost
	}
	if req.Type != "" {
		reward.Type = req.Type
	}
	if req.Active != nil {
		reward.Active = *req.Active
	}

	if err := a.store.UpdateReward(r.Context(), reward); err != nil {
		a.serverError(w, "updating reward", err)
		return
	}
	a.writeJSON(w, http.StatusOK, reward)
}

func (a *api) handleDeleteReward(w http.ResponseWriter, r *http.Request) {
	reward := a.loadOwnedReward(w, r)
	if reward == nil {
		return
	}

	if err := a.store.DeleteReward(r.Context(), reward.ID); err != nil {
		a.serverError(w, "deleting reward", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClaimReward redeems a reward for the calling child: coins are
// deducted atomically, then the claim is recorded with the cost at claim time.
func (a *api) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())
	if !p.IsChild() {
		a.writeError(w, http.StatusForbidden, "child role required")
		return
	}

	reward, err := a.store.GetReward(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "reward not found")
		return
	}
	if err != nil {
		a.serverError(w, "loading reward", err)
		return
	}
	if reward.ParentID != p.ParentID || !reward.Active {
		a.writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	child, err := a.store.AdjustChildCoins(r.Context(), p.ChildID, -reward.Cost)
	if errors.Is(err, store.ErrInsufficientCoins) {
		a.writeError(w, http.StatusBadRequest, "insufficient coins")
		return
	}
	if err != nil {
		a.serverError(w, "deducting coins", err)
		return
	}

	now := time.Now().UTC()
	claim := &store.RewardClaim{
		ID:        uuid.New().String(),
		RewardID:  reward.ID,
		ChildID:   p.ChildID,
		Cost:      reward.Cost,
		Status:    store.ClaimStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateRewardClaim(r.Context(), claim); err != nil {
		// Roll the deduction back so the child isn't charged for nothing
		if _, refundErr := a.store.AdjustChildCoins(r.Context(), p.ChildID, reward.Cost); refundErr != nil {
			a.logger.Error("refund after failed claim also failed",
				"error", refundErr, "child_id", p.ChildID, "cost", reward.Cost)
		}
		a.serverError(w, "creating claim", err)
		return
	}
	metrics.RewardsClaimed.Inc()

	a.logger.Info("reward claimed",
		"claim_id", claim.ID,
		"reward_id", reward.ID,
		"child_id", p.ChildID,
		"balance", child.Coins)
	a.writeJSON(w, http.StatusCreated, map[string]any{"claim": claim, "child": child})
}

// --- challenges ---

type challengeRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	DaysRemaining int      `json:"daysRemaining"`
	Image         string   `json:"image"`
}

func (a *api) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	challenge := &store.Challenge{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Categories:    req.Categories,
		DaysRemaining: req.DaysRemaining,
		Image:         req.Image,
		CreatedAt:     time.Now().UTC(),
	}
	if challenge.Categories == nil {
		challenge.Categories = []string{}
	}

	if err := a.store.CreateChallenge(r.Context(), challenge); err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			a.writeError(w, http.StatusConflict, "Challenge with this title already exists")
			return
		}
		a.serverError(w, "creating challenge", err)
		return
	}
	a.writeJSON(w, http.StatusCreated, challenge)
}

func (a *api) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := a.store.ListChallenges(r.Context())
	if err != nil {
		a.serverError(w, "listing challenges", err)
		return
	}
	if challenges == nil {
		challenges = []*store.Challenge{}
	}
	a.writeJSON(w, http.StatusOK, challenges)
}

// --- holidays ---

//go:embed holidays.json
var holidaysJSON []byte

// handleHolidays serves the bundled holiday calendar.
func (a *api) handleHolidays(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(holidaysJSON); err != nil {
		a.logger.Error("writing holidays failed", "error", err)
	}
}

// --- claims ---

func (a *api) handleListClaims(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var claims []*store.RewardClaim
	var err error
	if p.IsChild() {
		claims, err = a.store.ListRewardClaimsByChild(r.Context(), p.ChildID)
	} else {
		claims, err = a.store.ListRewardClaimsByParent(r.Context(), p.ParentID)
	}
	if err != nil {
		a.serverError(w, "listing claims", err)
		return
	}
	if claims == nil {
		claims = []*store.RewardClaim{}
	}
	a.writeJSON(w, http.StatusOK, claims)
}

type resolveClaimRequest struct {
	Status string `json:"status"` // fulfilled or declined
}

// handleResolveClaim lets the parent fulfil or decline a pending claim.
// Declining refunds the coins deducted at claim time.
func (a *api) handleResolveClaim(w http.ResponseWriter, r *http.Request) {
	p := auth.MustFromContext(r.Context())

	var req resolveClaimRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Status != store.ClaimStatusFulfilled && req.Status != store.ClaimStatusDeclined {
		a.writeError(w, http.StatusBadRequest, "status must be fulfilled or declined")
		return
	}

	claim, err := a.store.GetRewardClaim(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "claim not found")
		return
	}
	if err != nil {
		a.serverError(w, "loading claim", err)
		return
	}

	// Ownership runs through the claimed reward
	reward, err := a.store.GetReward(r.Context(), claim.RewardID)
	if err != nil || reward.ParentID != p.ParentID {
		a.writeError(w, http.StatusNotFound, "claim not found")
		return
	}

	if claim.Status != store.ClaimStatusPending {
		a.writeError(w, http.StatusConflict, "claim already resolved")
		return
	}

	updated, err := a.store.UpdateRewardClaimStatus(r.Context(), claim.ID, req.Status)
	if err != nil {
		a.serverError(w, "updating claim", err)
		return
	}

	if req.Status == store.ClaimStatusDeclined {
		if _, err := a.store.AdjustChildCoins(r.Context(), claim.ChildID, claim.Cost); err != nil {
			a.serverError(w, "refunding coins", err)
			return
		}
	}

	a.writeJSON(w, http.StatusOK, updated)
}
