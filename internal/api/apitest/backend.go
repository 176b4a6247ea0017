// Package apitest provides an in-process GSMS backend for tests.
//
// The backend speaks the real envelope format, issues signed JWTs on login
// and enforces bearer authentication, so a client, session and navigator
// can be exercised end to end.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gsms/gsms/internal/api"
)

var signingKey = []byte("apitest-signing-key")

// User is an account known to the backend.
type User struct {
	ID          int64
	Username    string
	Password    string
	Nickname    string
	Permissions []string
	Roles       []int64
}

// Backend is a fake GSMS server. The zero value is not usable; call
// NewBackend.
type Backend struct {
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	mu          sync.Mutex
	users       map[string]User
	projects    map[int64]api.Project
	tasks       map[int64]api.TaskInfo
	iterations  map[int64]api.Iteration
	workHours   map[int64]api.WorkHour
	roles       []api.RoleInfo
	permissions []api.PermissionInfo
	menus       []api.MenuInfo
	revoked     bool
	nextID      int64
	hits        map[string]int
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{
		TokenTTL:   time.Hour,
		users:      make(map[string]User),
		projects:   make(map[int64]api.Project),
		tasks:      make(map[int64]api.TaskInfo),
		iterations: make(map[int64]api.Iteration),
		workHours:  make(map[int64]api.WorkHour),
		nextID:     1000,
		hits:       make(map[string]int),
	}
}

// AddUser registers an account.
func (b *Backend) AddUser(u User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[u.Username] = u
}

// AddProject stores p.
func (b *Backend) AddProject(p api.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects[p.ID] = p
}

// AddTask stores t.
func (b *Backend) AddTask(t api.TaskInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks[t.ID] = t
}

// AddIteration stores it.
func (b *Backend) AddIteration(it api.Iteration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.iterations[it.ID] = it
}

// AddWorkHour stores w.
func (b *Backend) AddWorkHour(w api.WorkHour) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.workHours[w.ID] = w
}

// SetRoles replaces the role catalogue.
func (b *Backend) SetRoles(roles ...api.RoleInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roles = roles
}

// SetPermissions replaces the permission catalogue.
func (b *Backend) SetPermissions(perms ...api.PermissionInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.permissions = perms
}

// SetMenus replaces the menu tree returned for every user.
func (b *Backend) SetMenus(menus ...api.MenuInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menus = menus
}

// RevokeTokens makes every authenticated request fail with 401.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = true
}

// Project returns the stored project with id.
func (b *Backend) Project(id int64) (api.Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	return p, ok
}

// Hits returns how often the chi route pattern was served.
func (b *Backend) Hits(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[pattern]
}

// Start serves the backend until the test ends. The returned URL is the
// API base URL.
func (b *Backend) Start(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

// SignToken issues a token in the format the backend hands out on login.
func SignToken(t testing.TB, userID int64, username string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"userId": userID, "username": username, "iat": time.Now().Unix()}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// Handler returns the HTTP handler mounted under /api.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.count)
	r.Route("/api", func(r chi.Router) {
		r.Post("/users/login", b.login)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)

			r.Get("/users/info", b.userInfo)
			r.Get("/users", b.listUsers)
			r.Get("/users/{id}/permissions", b.userPermissions)
			r.Get("/users/{id}/roles", b.userRoles)

			r.Get("/projects", b.listProjects)
			r.Post("/projects", b.createProject)
			r.Get("/projects/{id}", b.getProject)
			r.Delete("/projects/{id}", b.deleteProject)

			r.Get("/tasks/search", b.searchTasks)
			r.Get("/tasks/{id}", b.getTask)
			r.Get("/tasks/{id}/subtasks", b.subtasks)

			r.Post("/iterations/query", b.queryIterations)
			r.Get("/iterations/{id}", b.getIteration)

			r.Post("/work-hours/query", b.queryWorkHours)
			r.Get("/work-hours/{id}", b.getWorkHour)

			r.Get("/roles", b.listRoles)
			r.Get("/permissions", b.listPermissions)
			r.Get("/permissions/all", b.allPermissions)

			r.Get("/menus/user/tree", b.menuTree)
			r.Get("/menus/tree", b.menuTree)

			r.Get("/statistics/dashboard", b.dashboard)
		})
	})
	return r
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
			b.mu.Lock()
			b.hits[strings.TrimPrefix(pattern, "/api")]++
			b.mu.Unlock()
		}
	})
}

type claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		c := &claims{}
		_, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (interface{}, error) { return signingKey, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		b.mu.Lock()
		revoked := b.revoked
		b.mu.Unlock()
		if err != nil || revoked {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), c)))
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, 400, "invalid request body")
		return
	}
	b.mu.Lock()
	u, ok := b.users[req.Username]
	ttl := b.TokenTTL
	b.mu.Unlock()
	if !ok || u.Password != req.Password {
		fail(w, 500, "用户名或密码错误")
		return
	}

	c := claims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(signingKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ok200(w, api.LoginResponse{Token: token, UserInfo: userInfo(u)})
}

func userInfo(u User) *api.UserInfo {
	return &api.UserInfo{ID: u.ID, Username: u.Username, Nickname: u.Nickname, Status: api.FlexInt(1)}
}

func (b *Backend) userByID(id int64) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (b *Backend) userInfo(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userByID(claimsFrom(r.Context()).UserID)
	if !ok {
		fail(w, 404, "用户不存在")
		return
	}
	ok200(w, userInfo(u))
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := make([]api.UserInfo, 0, len(b.users))
	for _, u := range b.users {
		list = append(list, *userInfo(u))
	}
	b.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	page(w, r, list)
}

func (b *Backend) userPermissions(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userByID(idParam(r))
	if !ok {
		fail(w, 404, "用户不存在")
		return
	}
	ok200(w, append([]string{}, u.Permissions...))
}

func (b *Backend) userRoles(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userByID(idParam(r))
	if !ok {
		fail(w, 404, "用户不存在")
		return
	}
	ok200(w, append([]int64{}, u.Roles...))
}

func (b *Backend) listProjects(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	b.mu.Lock()
	list := make([]api.Project, 0, len(b.projects))
	for _, p := range b.projects {
		if name == "" || strings.Contains(p.Name, name) {
			list = append(list, p)
		}
	}
	b.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	page(w, r, list)
}

func (b *Backend) getProject(w http.ResponseWriter, r *http.Request) {
	p, ok := b.Project(idParam(r))
	if !ok {
		fail(w, 404, "项目不存在")
		return
	}
	ok200(w, p)
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	var req api.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, 400, "invalid request body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.projects {
		if p.Code == req.Code {
			fail(w, 500, "项目编码已存在")
			return
		}
	}
	b.nextID++
	b.projects[b.nextID] = api.Project{
		ID:          b.nextID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		ManagerID:   req.ManagerID,
		Status:      req.Status,
	}
	ok200(w, nil)
}

func (b *Backend) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.projects[id]; !ok {
		fail(w, 404, "项目不存在")
		return
	}
	delete(b.projects, id)
	ok200(w, nil)
}

func (b *Backend) searchTasks(w http.ResponseWriter, r *http.Request) {
	projectID, _ := strconv.ParseInt(r.URL.Query().Get("projectId"), 10, 64)
	b.mu.Lock()
	list := make([]api.TaskInfo, 0, len(b.tasks))
	for _, t := range b.tasks {
		if projectID == 0 || t.ProjectID == projectID {
			list = append(list, t)
		}
	}
	b.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	page(w, r, list)
}

func (b *Backend) getTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	t, ok := b.tasks[idParam(r)]
	b.mu.Unlock()
	if !ok {
		fail(w, 404, "任务不存在")
		return
	}
	ok200(w, t)
}

func (b *Backend) subtasks(w http.ResponseWriter, r *http.Request) {
	parent := idParam(r)
	b.mu.Lock()
	list := []api.TaskInfo{}
	for _, t := range b.tasks {
		if t.ParentID == parent {
			list = append(list, t)
		}
	}
	b.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	ok200(w, list)
}

func (b *Backend) queryIterations(w http.ResponseWriter, r *http.Request) {
	var q api.IterationQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		fail(w, 400, "invalid request body")
		return
	}
	b.mu.Lock()
	list := []api.Iteration{}
	for _, it := range b.iterations {
		if q.ProjectID == 0 || it.ProjectID == q.ProjectID {
			list = append(list, it)
		}
	}
	b.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	pageOf(w, list, q.PageNum, q.PageSize)
}

func (b *Backend) getIteration(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	it, ok := b.iterations[idParam(r)]
	b.mu.Unlock()
	if !ok {
		fail(w, 404, "迭代不存在")
		return
	}
	ok200(w, it)
}

func (b *Backend) queryWorkHours(w http.ResponseWriter, r *http.Request) {
	var q api.WorkHourQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		fail(w, 400, "invalid request body")
		return
	}
	b.mu.Lock()
	list := []api.WorkHour{}
	for _, wh := range b.workHours {
		if (q.UserID == 0 || wh.UserID == q.UserID) && (q.ProjectID == 0 || wh.ProjectID == q.ProjectID) {
			list = append(list, wh)
		}
	}
	b.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	pageOf(w, list, q.PageNum, q.PageSize)
}

func (b *Backend) getWorkHour(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	wh, ok := b.workHours[idParam(r)]
	b.mu.Unlock()
	if !ok {
		fail(w, 404, "工时记录不存在")
		return
	}
	ok200(w, wh)
}

func (b *Backend) listRoles(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := append([]api.RoleInfo{}, b.roles...)
	b.mu.Unlock()
	page(w, r, list)
}

func (b *Backend) listPermissions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := append([]api.PermissionInfo{}, b.permissions...)
	b.mu.Unlock()
	page(w, r, list)
}

func (b *Backend) allPermissions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := append([]api.PermissionInfo{}, b.permissions...)
	b.mu.Unlock()
	ok200(w, list)
}

func (b *Backend) menuTree(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	list := append([]api.MenuInfo{}, b.menus...)
	b.mu.Unlock()
	ok200(w, list)
}

func (b *Backend) dashboard(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r.Context()).UserID
	d := api.Dashboard{Projects: []api.DashboardProject{}, PendingTasks: []api.DashboardTask{}}

	b.mu.Lock()
	for _, p := range b.projects {
		d.Projects = append(d.Projects, api.DashboardProject{ID: p.ID, Name: p.Name, Code: p.Code, Status: api.FlexInt(int(p.Status))})
	}
	for _, t := range b.tasks {
		if t.AssigneeID == userID {
			d.PendingTasks = append(d.PendingTasks, api.DashboardTask{ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority, ProjectID: t.ProjectID})
		}
	}
	for _, wh := range b.workHours {
		if wh.UserID == userID {
			d.TotalHours += wh.Hours
		}
	}
	b.mu.Unlock()

	sort.Slice(d.Projects, func(i, j int) bool { return d.Projects[i].ID < d.Projects[j].ID })
	sort.Slice(d.PendingTasks, func(i, j int) bool { return d.PendingTasks[i].ID < d.PendingTasks[j].ID })
	d.ProjectCount = len(d.Projects)
	d.PendingTaskCount = len(d.PendingTasks)
	ok200(w, d)
}
