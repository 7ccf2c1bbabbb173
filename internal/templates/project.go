package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed all:project
var projectFS embed.FS

const projectRoot = "project"

// Directories created even when no file lands in them
var projectDirectories = []string{
	"public/stylesheets",
	"public/javascripts",
	"app/views",
	"db/migrations",
}

// NewProjectTemplate returns the Sinatra/Sequel/Haml application tree.
// Files ending in .tmpl are rendered with a TemplateContext and written
// without the suffix; everything under bin/ is executable.
func NewProjectTemplate() (*Template, error) {
	tmpl := &Template{
		Name:        "sinatra",
		Description: "Sinatra application with Sequel models and Haml views",
		Directories: projectDirectories,
	}

	err := fs.WalkDir(projectFS, projectRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := projectFS.ReadFile(p)
		if err != nil {
			return err
		}

		target := strings.TrimPrefix(p, projectRoot+"/")
		file := &TemplateFile{
			TargetPath: strings.TrimSuffix(target, templateExt),
			Content:    string(data),
			Template:   strings.HasSuffix(target, templateExt),
			Executable: path.Dir(target) == "bin",
		}
		tmpl.Files = append(tmpl.Files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load project template: %w", err)
	}

	return tmpl, nil
}
