package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutPaths(t *testing.T) {
	root := filepath.Join("/tmp", "blog")
	l := New(root)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"controller", l.ControllerFile("posts"), "app/controllers/posts_controller.rb"},
		{"model", l.ModelFile("posts"), "app/models/posts.rb"},
		{"migration", l.MigrationFile(1700000000, "categories"), "db/migrations/1700000000_create_categories.rb"},
		{"view", l.ViewFile("posts", "index"), "app/views/posts_index.haml"},
		{"registry", l.RegistryPath(), "helpers/paths_config.toml"},
		{"router", l.RouterPath(), "config.ru"},
		{"env", l.EnvPath(), ".env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), tt.got)
			assert.Equal(t, filepath.FromSlash(tt.want), l.Rel(tt.got))
		})
	}
}

func TestLayoutCustomLocations(t *testing.T) {
	l := Layout{Root: "/srv/app", Registry: "config/paths.toml", Router: "boot.ru"}
	assert.Equal(t, filepath.Join("/srv/app", "config", "paths.toml"), l.RegistryPath())
	assert.Equal(t, filepath.Join("/srv/app", "boot.ru"), l.RouterPath())
}
