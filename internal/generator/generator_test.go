package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomrplummer/blue-eyes/internal/project"
	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
	"github.com/tomrplummer/blue-eyes/internal/templates"
)

var fixedNow = func() time.Time { return time.Unix(1700000100, 0) }

func newProject(t *testing.T) project.Layout {
	t.Helper()
	layout := project.New(t.TempDir())
	require.NoError(t, os.WriteFile(layout.RouterPath(), []byte(configRu), 0644))
	return layout
}

func newGenerator(layout project.Layout, opts Options) *Generator {
	opts.Now = fixedNow
	return New(layout, templates.NewEngine(nil), opts)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestGenerateController(t *testing.T) {
	layout := newProject(t)
	spec := mustSpec(t, "post", resource.Controller, resource.Options{Alias: "articles"})

	result, err := newGenerator(layout, Options{}).Generate(spec)
	require.NoError(t, err)
	assert.Equal(t, Done, result.Stage)
	assert.True(t, result.RouterChanged)
	assert.Equal(t, registry.Added, result.RegistryChange)

	controller := readFile(t, layout.ControllerFile("posts"))
	assert.Contains(t, controller, "class PostsController < ApplicationController")
	assert.Contains(t, controller, `get "/articles" do`)

	router := readFile(t, layout.RouterPath())
	assert.Contains(t, router, "use PostsController\nrun ApplicationController")

	r, err := registry.Load(layout.RegistryPath())
	require.NoError(t, err)
	assert.Equal(t, []registry.Entry{{Name: "posts", Alias: "articles"}}, r.Entries())
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	layout := newProject(t)
	spec := mustSpec(t, "post", resource.Controller, resource.Options{})

	_, err := newGenerator(layout, Options{}).Generate(spec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(layout.ControllerFile("posts"), []byte("# edited"), 0644))

	_, err = newGenerator(layout, Options{}).Generate(spec)
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, "# edited", readFile(t, layout.ControllerFile("posts")))

	result, err := newGenerator(layout, Options{Overwrite: true}).Generate(spec)
	require.NoError(t, err)
	assert.False(t, result.RouterChanged)
	assert.Equal(t, registry.Unchanged, result.RegistryChange)
	assert.Equal(t, Overwrite, result.Artifacts[0].Action)
	assert.Contains(t, readFile(t, layout.ControllerFile("posts")), "class PostsController")
	assert.Equal(t, 1, strings.Count(readFile(t, layout.RouterPath()), "use PostsController"))
}

func TestGenerateDryRun(t *testing.T) {
	layout := newProject(t)
	spec := mustSpec(t, "post", resource.Scaffold, resource.Options{Fields: []string{"string:title"}})

	result, err := newGenerator(layout, Options{DryRun: true}).Generate(spec)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, Rendered, result.Stage)
	assert.Equal(t, registry.Added, result.RegistryChange)
	assert.Len(t, result.Artifacts, 8)

	assert.Equal(t, []string{"config.ru"}, listFiles(t, layout.Root), "dry run writes nothing")
	assert.Equal(t, configRu, readFile(t, layout.RouterPath()))
}

func TestGenerateScaffold(t *testing.T) {
	layout := newProject(t)
	spec := mustSpec(t, "category", resource.Scaffold, resource.Options{Fields: []string{"string:title", "integer:count"}})

	_, err := newGenerator(layout, Options{}).Generate(spec)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"config.ru",
		"helpers/paths_config.toml",
		"app/models/categories.rb",
		"app/controllers/categories_controller.rb",
		"db/migrations/1700000100_create_categories.rb",
		"app/views/categories_index.haml",
		"app/views/categories_show.haml",
		"app/views/categories_new.haml",
		"app/views/categories_edit.haml",
	}, listFiles(t, layout.Root))

	migration := readFile(t, layout.MigrationFile(1700000100, "categories"))
	assert.Contains(t, migration, "create_table(:categories)")
	assert.Contains(t, migration, "column :count, :integer")
}

func TestGenerateAPIBelongsTo(t *testing.T) {
	layout := newProject(t)
	_, err := registry.NewStore(layout.RegistryPath()).Upsert(registry.Entry{Name: "posts", Alias: "articles"})
	require.NoError(t, err)

	spec := mustSpec(t, "comment", resource.Api, resource.Options{Fields: []string{"text:body"}, BelongsTo: "post"})
	_, err = newGenerator(layout, Options{}).Generate(spec)
	require.NoError(t, err)

	controller := readFile(t, layout.ControllerFile("comments"))
	assert.Contains(t, controller, `get "/api/articles/:post_id/comments" do`)

	migration := readFile(t, layout.MigrationFile(1700000100, "comments"))
	assert.Contains(t, migration, "foreign_key :post_id, :posts")

	r, err := registry.Load(layout.RegistryPath())
	require.NoError(t, err)
	assert.Equal(t, []registry.Entry{
		{Name: "posts", Alias: "articles"},
		{Name: "comments", BelongsTo: "posts"},
	}, r.Entries())
}

func TestGenerateModelAndMigrationSkipRouter(t *testing.T) {
	layout := newProject(t)

	result, err := newGenerator(layout, Options{}).Generate(mustSpec(t, "post", resource.Model, resource.Options{}))
	require.NoError(t, err)
	assert.Nil(t, result.Entry)

	_, err = newGenerator(layout, Options{}).Generate(mustSpec(t, "post", resource.Migration, resource.Options{Fields: []string{"string:title"}}))
	require.NoError(t, err)

	assert.Equal(t, configRu, readFile(t, layout.RouterPath()))
	assert.ElementsMatch(t, []string{
		"config.ru",
		"app/models/posts.rb",
		"db/migrations/1700000100_create_posts.rb",
	}, listFiles(t, layout.Root))
}

func TestGenerateFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name   string
		spec   func(t *testing.T) *resource.Spec
		router string
		want   error
	}{
		{
			name: "missing relation",
			spec: func(t *testing.T) *resource.Spec {
				return mustSpec(t, "comment", resource.Scaffold, resource.Options{Fields: []string{"text:body"}, BelongsTo: "post"})
			},
			router: configRu,
			want:   ErrMissingRelation,
		},
		{
			name: "no fields",
			spec: func(t *testing.T) *resource.Spec {
				return mustSpec(t, "post", resource.Api, resource.Options{})
			},
			router: configRu,
			want:   ErrNoFieldsProvided,
		},
		{
			name: "no marker",
			spec: func(t *testing.T) *resource.Spec {
				return mustSpec(t, "post", resource.Controller, resource.Options{})
			},
			router: "use HomeController\n",
			want:   ErrMarkerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := project.New(t.TempDir())
			require.NoError(t, os.WriteFile(layout.RouterPath(), []byte(tt.router), 0644))

			_, err := newGenerator(layout, Options{}).Generate(tt.spec(t))
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, []string{"config.ru"}, listFiles(t, layout.Root))
			assert.Equal(t, tt.router, readFile(t, layout.RouterPath()))
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "registry updated", RegistryUpdated.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
}
