package ux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRenderText(t *testing.T) {
	s := NewStyles(true)

	tests := []struct {
		name  string
		table Table
		want  string
	}{
		{
			name:  "empty placeholder",
			table: Table{Headers: []string{"ID"}, Empty: "No projects found"},
			want:  "No projects found",
		},
		{
			name:  "headers only",
			table: Table{Headers: []string{"ID", "CODE"}},
			want:  "ID  CODE",
		},
		{
			name: "short rows padded",
			table: Table{
				Headers: []string{"CODE", "NAME", "MODULE"},
				Rows:    [][]string{{"USER_VIEW", "View users"}, {"ROLE_VIEW", "View roles", "system"}},
			},
			want: "CODE       NAME        MODULE\n" +
				"USER_VIEW  View users\n" +
				"ROLE_VIEW  View roles  system",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.RenderText(s))
		})
	}
}

func TestKeyValuesRenderText(t *testing.T) {
	kv := KeyValues{
		Title: "Session",
		Pairs: [][2]string{
			{"User", "alice"},
			{"Authenticated", "yes"},
		},
	}

	want := "Session\n" +
		"User:          alice\n" +
		"Authenticated: yes"
	assert.Equal(t, want, kv.RenderText(NewStyles(true)))
}

func TestNewStylesColorDiffers(t *testing.T) {
	plain := NewStyles(true)
	colored := NewStyles(false)

	assert.Equal(t, "x", plain.Error.Render("x"))
	assert.NotEqual(t, plain.Error.GetForeground(), colored.Error.GetForeground())
}
