// Package project resolves paths inside a generated application. Every
// path is derived from an explicit root; nothing changes the working
// directory.
package project

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// Conventional directories of a generated application, relative to the root.
const (
	ControllersDir = "app/controllers"
	ModelsDir      = "app/models"
	ViewsDir       = "app/views"
	ServicesDir    = "app/services"
	MigrationsDir  = "db/migrations"
	HelpersDir     = "helpers"
	PluginsDir     = "plugins"
	BinDir         = "bin"
	BundleDir      = ".bundle"
	PublicDir      = "public"

	DefaultRegistry = "helpers/paths_config.toml"
	DefaultRouter   = "config.ru"
	EnvFile         = ".env"
)

// Layout maps artifacts to files under Root.
type Layout struct {
	Root     string
	Registry string // relative to Root
	Router   string // relative to Root
}

// New returns a Layout with the default registry and router locations.
func New(root string) Layout {
	return Layout{Root: root, Registry: DefaultRegistry, Router: DefaultRouter}
}

// Path joins rel onto the root.
func (l Layout) Path(rel ...string) string {
	return filepath.Join(append([]string{l.Root}, rel...)...)
}

// Rel returns path relative to the root, or path unchanged when it is not
// below it.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// RegistryPath is the absolute location of the relation registry.
func (l Layout) RegistryPath() string {
	return l.Path(l.Registry)
}

// RouterPath is the absolute location of the router file.
func (l Layout) RouterPath() string {
	return l.Path(l.Router)
}

// EnvPath is the absolute location of the dotenv file.
func (l Layout) EnvPath() string {
	return l.Path(EnvFile)
}

// ControllerFile returns app/controllers/<segment>_controller.rb.
func (l Layout) ControllerFile(segment string) string {
	return l.Path(ControllersDir, segment+"_controller.rb")
}

// ModelFile returns app/models/<segment>.rb.
func (l Layout) ModelFile(segment string) string {
	return l.Path(ModelsDir, segment+".rb")
}

// MigrationFile returns db/migrations/<unix>_create_<segment>.rb.
func (l Layout) MigrationFile(unix int64, segment string) string {
	return l.Path(MigrationsDir, fmt.Sprintf("%s_create_%s.rb", strconv.FormatInt(unix, 10), segment))
}

// ViewFile returns app/views/<token>_<action>.haml.
func (l Layout) ViewFile(token, action string) string {
	return l.Path(ViewsDir, token+"_"+action+".haml")
}
