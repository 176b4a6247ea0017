package authz

import "strings"

// Module names a functional area that permission codes belong to.
type Module string

const (
	ModuleProject    Module = "project"
	ModuleTask       Module = "task"
	ModuleWorkHour   Module = "workhour"
	ModuleIteration  Module = "iteration"
	ModuleUser       Module = "user"
	ModuleRole       Module = "role"
	ModulePermission Module = "permission"
	ModuleOther      Module = "other"
)

// modulePrefixes is checked in order; the first matching prefix wins.
var modulePrefixes = []struct {
	prefix string
	module Module
}{
	{"PROJECT_", ModuleProject},
	{"TASK_", ModuleTask},
	{"WORKHOUR_", ModuleWorkHour},
	{"ITERATION_", ModuleIteration},
	{"USER_", ModuleUser},
	{"ROLE_", ModuleRole},
	{"PERMISSION_", ModulePermission},
}

var actionLabels = map[string]string{
	"VIEW":     "view",
	"VIEW_ALL": "view all",
	"CREATE":   "create",
	"EDIT":     "edit",
	"UPDATE":   "update",
	"DELETE":   "delete",
	"ASSIGN":   "assign",
	"EXPORT":   "export",
	"IMPORT":   "import",
	"APPROVE":  "approve",
	"SUBMIT":   "submit",
}

// Permission codes the console's screens are gated on.
const (
	PermUserView       = "USER_VIEW"
	PermRoleView       = "ROLE_VIEW"
	PermPermissionView = "PERMISSION_VIEW"
)

// ModuleOf returns the module a permission code belongs to, or ModuleOther.
//
//	ModuleOf("PROJECT_VIEW_ALL") == ModuleProject
func ModuleOf(code string) Module {
	for _, p := range modulePrefixes {
		if strings.HasPrefix(code, p.prefix) {
			return p.module
		}
	}
	return ModuleOther
}

// ActionOf returns a readable label for the action part of a code.
//
// The module prefix is stripped and the remainder looked up, so
// "PROJECT_VIEW_ALL" yields "view all". Unknown actions fall back to the last
// underscore-separated word, then to the raw remainder.
func ActionOf(code string) string {
	action := code
	for _, p := range modulePrefixes {
		if strings.HasPrefix(code, p.prefix) {
			action = strings.TrimPrefix(code, p.prefix)
			break
		}
	}
	if label, ok := actionLabels[action]; ok {
		return label
	}

	if i := strings.LastIndex(action, "_"); i >= 0 {
		last := action[i+1:]
		if label, ok := actionLabels[last]; ok {
			return label
		}
		return last
	}
	return action
}

// Describe returns "<module>: <action>" for display.
func Describe(code string) string {
	return string(ModuleOf(code)) + ": " + ActionOf(code)
}
