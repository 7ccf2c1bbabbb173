package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
)

type fakeLoader struct {
	registry *registry.Registry
	err      error
	calls    int
}

func (f *fakeLoader) Load() (*registry.Registry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.registry == nil {
		return registry.New(), nil
	}
	return f.registry, nil
}

func loaderWith(t *testing.T, entries ...registry.Entry) *fakeLoader {
	t.Helper()
	r := registry.New()
	for _, e := range entries {
		_, err := r.Upsert(e)
		require.NoError(t, err)
	}
	return &fakeLoader{registry: r}
}

func mustSpec(t *testing.T, name string, kind resource.Kind, opts resource.Options) *resource.Spec {
	t.Helper()
	spec, err := resource.New(name, kind, opts)
	require.NoError(t, err)
	return spec
}

func TestControllerContextWithoutRelation(t *testing.T) {
	loader := &fakeLoader{}
	ctx, err := NewBuilder(loader).ControllerContext(mustSpec(t, "post", resource.Controller, resource.Options{}))
	require.NoError(t, err)

	assert.Equal(t, RenderContext{
		"template_token":         "posts",
		"variable":               "post",
		"variable_plural":        "posts",
		"class_name":             "Posts",
		"model_name":             "Post",
		"alias_or_name":          "posts",
		"fields":                 []resource.Field(nil),
		"has_fields":             false,
		"belongs_to_model":       "Post",
		"belongs_to_foreign_key": "post_id",
		"belongs_to_path":        "posts",
		"belongs_to_variable":    "post",
		"has_belongs_to":         false,
	}, ctx)
	assert.Equal(t, 0, loader.calls, "the registry is only read for belongs-to relations")
}

func TestControllerContextAlias(t *testing.T) {
	ctx, err := NewBuilder(nil).ControllerContext(mustSpec(t, "BlogPost", resource.Controller, resource.Options{Alias: "Article"}))
	require.NoError(t, err)

	assert.Equal(t, "articles", ctx["alias_or_name"])
	assert.Equal(t, "BlogPosts", ctx["class_name"])
	assert.Equal(t, "BlogPost", ctx["model_name"])
	assert.Equal(t, "blog_posts", ctx["template_token"])
}

func TestControllerContextResolvesRegistryAlias(t *testing.T) {
	loader := loaderWith(t, registry.Entry{Name: "comment", Alias: "notes"})
	spec := mustSpec(t, "reply", resource.Controller, resource.Options{BelongsTo: "comment"})

	ctx, err := NewBuilder(loader).ControllerContext(spec)
	require.NoError(t, err)

	assert.Equal(t, "notes", ctx["belongs_to_path"])
	assert.Equal(t, "Comment", ctx["belongs_to_model"])
	assert.Equal(t, "comment_id", ctx["belongs_to_foreign_key"])
	assert.Equal(t, "comment", ctx["belongs_to_variable"])
	assert.Equal(t, true, ctx["has_belongs_to"])
}

func TestControllerContextUnaliasedParent(t *testing.T) {
	loader := loaderWith(t, registry.Entry{Name: "posts"})
	ctx, err := NewBuilder(loader).ControllerContext(mustSpec(t, "comment", resource.Controller, resource.Options{BelongsTo: "Post"}))
	require.NoError(t, err)
	assert.Equal(t, "posts", ctx["belongs_to_path"])
}

func TestControllerContextMissingRelation(t *testing.T) {
	loader := loaderWith(t, registry.Entry{Name: "users"})
	_, err := NewBuilder(loader).ControllerContext(mustSpec(t, "comment", resource.Controller, resource.Options{BelongsTo: "post"}))
	assert.ErrorIs(t, err, ErrMissingRelation)
}

func TestControllerContextLoaderError(t *testing.T) {
	loader := &fakeLoader{err: registry.ErrParse}
	_, err := NewBuilder(loader).ControllerContext(mustSpec(t, "comment", resource.Controller, resource.Options{BelongsTo: "post"}))
	assert.ErrorIs(t, err, registry.ErrParse)
}

func TestBuilderLoadsRegistryOnce(t *testing.T) {
	loader := loaderWith(t, registry.Entry{Name: "posts"})
	b := NewBuilder(loader)
	spec := mustSpec(t, "comment", resource.Scaffold, resource.Options{BelongsTo: "post", Fields: []string{"text:body"}})

	_, err := b.ControllerContext(spec)
	require.NoError(t, err)
	_, err = b.ModelContext(spec)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)
}

func TestMigrationContext(t *testing.T) {
	spec := mustSpec(t, "category", resource.Migration, resource.Options{Fields: []string{"string:title", "integer:count"}})

	ctx, err := NewBuilder(nil).MigrationContext(spec)
	require.NoError(t, err)

	assert.Equal(t, "categories", ctx["table_name"])
	assert.Equal(t, []resource.Field{
		{SQLType: "string", FieldName: "title"},
		{SQLType: "integer", FieldName: "count"},
	}, ctx["fields"])
	assert.Equal(t, false, ctx["has_belongs_to"])
	assert.Equal(t, "", ctx["belongs_to_foreign_key"])
}

func TestMigrationContextBelongsTo(t *testing.T) {
	spec := mustSpec(t, "comment", resource.Migration, resource.Options{Fields: []string{"text:body"}, BelongsTo: "post"})

	ctx, err := NewBuilder(nil).MigrationContext(spec)
	require.NoError(t, err)
	assert.Equal(t, "post_id", ctx["belongs_to_foreign_key"])
	assert.Equal(t, "posts", ctx["belongs_to_table"])
	assert.Equal(t, true, ctx["has_belongs_to"])
}

func TestMigrationContextRequiresFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		wantErr bool
	}{
		{"no flag", nil, true},
		{"empty flag", []string{""}, true},
		{"one field", []string{"string:title"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := mustSpec(t, "post", resource.Migration, resource.Options{Fields: tt.fields})
			_, err := NewBuilder(nil).MigrationContext(spec)
			assert.Equal(t, tt.wantErr, errors.Is(err, ErrNoFieldsProvided))
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestPathEntry(t *testing.T) {
	entry := NewPathEntry(mustSpec(t, "Comment", resource.Controller, resource.Options{Alias: "note", BelongsTo: "post"}))

	assert.Equal(t, PathEntry{Name: "comments", Alias: "notes", BelongsTo: "posts"}, entry)
	assert.Equal(t, RenderContext{
		"name":           "comments",
		"alias":          "notes",
		"has_alias":      true,
		"belongs_to":     "posts",
		"has_belongs_to": true,
	}, entry.Context())
	assert.Equal(t, registry.Entry{Name: "comments", Alias: "notes", BelongsTo: "posts"}, entry.Entry())

	plain := NewPathEntry(mustSpec(t, "post", resource.Controller, resource.Options{}))
	assert.Equal(t, false, plain.Context()["has_alias"])
	assert.Equal(t, "", plain.Context()["belongs_to"])
}
