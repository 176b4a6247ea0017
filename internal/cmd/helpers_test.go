package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/api/apitest"
	"github.com/gsms/gsms/internal/app"
	"github.com/gsms/gsms/internal/auth"
	"github.com/gsms/gsms/internal/authz"
	"github.com/gsms/gsms/internal/config"
	"github.com/gsms/gsms/internal/log"
)

const testConfigPath = "/home/u/.gsms/config.yaml"

type harness struct {
	t       *testing.T
	backend *apitest.Backend
	storage *auth.MemoryStorage
	fs      afero.Fs
	env     map[string]string

	prompted  int
	confirmed bool
}

// newHarness starts a backend with an administrator (alice) and a member
// without system permissions (bob).
func newHarness(t *testing.T) *harness {
	t.Helper()
	b := apitest.NewBackend()
	b.AddUser(apitest.User{
		ID:          7,
		Username:    "alice",
		Password:    "secret",
		Nickname:    "Alice",
		Permissions: []string{authz.PermUserView, authz.PermRoleView, authz.PermPermissionView, "PROJECT_VIEW"},
		Roles:       []int64{1},
	})
	b.AddUser(apitest.User{ID: 8, Username: "bob", Password: "hunter2", Permissions: []string{"TASK_VIEW"}, Roles: []int64{2}})

	b.AddProject(api.Project{ID: 1, Name: "Apollo", Code: "APO", Status: api.ProjectInProgress, ManagerID: 7})
	b.AddProject(api.Project{ID: 2, Name: "Gemini", Code: "GEM", Status: api.ProjectNotStarted})
	b.AddTask(api.TaskInfo{ID: 10, Title: "Design", ProjectID: 1, ProjectName: "Apollo", AssigneeID: 7, Status: "TODO", Priority: api.FlexInt(2)})
	b.AddTask(api.TaskInfo{ID: 11, Title: "Review design", ProjectID: 1, ParentID: 10, Status: "DONE", Priority: api.FlexInt(1)})
	b.AddIteration(api.Iteration{ID: 3, ProjectID: 1, Name: "Sprint 1", Status: api.FlexInt(1)})
	b.AddWorkHour(api.WorkHour{ID: 5, UserID: 7, ProjectID: 1, WorkDate: "2024-03-01", Hours: 7.5, Content: "design review", UserName: "alice"})
	b.SetRoles(api.RoleInfo{ID: 1, Name: "Administrator", Code: "ADMIN", RoleType: "SYSTEM"})
	b.SetPermissions(
		api.PermissionInfo{ID: 1, Name: "View users", Code: authz.PermUserView, Description: "Open the user list"},
		api.PermissionInfo{ID: 2, Name: "View roles", Code: authz.PermRoleView},
	)
	b.SetMenus(api.MenuInfo{
		ID: 1, Name: "System", Path: "/system", Type: api.MenuDirectory, Visible: 1,
		Children: []api.MenuInfo{
			{ID: 2, Name: "Users", Path: "/users", Type: api.MenuPage, Visible: 1, ParentID: 1},
			{ID: 3, Name: "Add user", Type: api.MenuButton, Visible: 1, ParentID: 2},
		},
	})

	url := b.Start(t)
	return &harness{
		t:       t,
		backend: b,
		storage: auth.NewMemoryStorage(),
		fs:      afero.NewMemMapFs(),
		env: map[string]string{
			config.EnvAPIURL:       url,
			config.EnvSessionStore: config.BackendMemory,
			config.EnvAPIRetries:   "1",
		},
	}
}

func (h *harness) cli() *CLI {
	loader := &config.Loader{
		FS: h.fs,
		LookupEnv: func(key string) (string, bool) {
			v, ok := h.env[key]
			return v, ok
		},
	}
	return New(
		WithLoader(loader),
		WithAppOptions(app.WithStorage(h.storage), app.WithLogger(log.Discard())),
		WithPrompter(func(u, p string) (string, string, error) {
			if u == "" || p == "" {
				h.prompted++
			}
			if u == "" {
				u = "alice"
			}
			if p == "" {
				p = "secret"
			}
			return u, p, nil
		}),
		WithConfirmer(func(string, bool) (bool, error) { return h.confirmed, nil }),
	)
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", testConfigPath, "--no-color"}, args...)
	err := h.cli().Execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (h *harness) login(username, password string) {
	h.t.Helper()
	if _, _, err := h.run("auth", "login", "-u", username, "-p", password); err != nil {
		h.t.Fatalf("login as %s: %v", username, err)
	}
}
