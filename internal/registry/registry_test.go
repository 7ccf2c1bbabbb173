package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helpers", "paths_config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "paths_config.toml"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "posts", r.Resolve("posts"))
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not toml", "[[resources]\nname = "},
		{"resources not an array", "resources = \"posts\"\n"},
		{"record without name", "[[resources]]\nas = \"notes\"\n"},
		{"alias not a string", "[[resources]]\nname = \"posts\"\nas = 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeRegistry(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestLookupAndResolve(t *testing.T) {
	path := writeRegistry(t, `
[[resources]]
name = "comment"
as = "notes"

[[resources]]
name = "posts"
`)
	r, err := Load(path)
	require.NoError(t, err)

	alias, ok := r.Lookup("comments")
	require.True(t, ok)
	assert.Equal(t, "notes", alias)

	alias, ok = r.Lookup("Comment")
	require.True(t, ok)
	assert.Equal(t, "notes", alias)

	alias, ok = r.Lookup("post")
	require.True(t, ok)
	assert.Equal(t, "posts", alias, "a record without an alias resolves to its own name")

	_, ok = r.Lookup("users")
	assert.False(t, ok)
	assert.Equal(t, "users", r.Resolve("users"))
	assert.Equal(t, "notes", r.Resolve("comments"))
}

func TestDuplicateRecordsLastWins(t *testing.T) {
	path := writeRegistry(t, `
[[resources]]
name = "posts"
as = "articles"

[[resources]]
name = "posts"
as = "stories"
`)
	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "stories", r.Resolve("posts"))

	change, err := r.Upsert(Entry{Name: "posts", Alias: "stories"})
	require.NoError(t, err)
	assert.Equal(t, Updated, change)
	assert.Equal(t, []Entry{{Name: "posts", Alias: "stories"}}, r.Entries())
}

func TestUpsert(t *testing.T) {
	r := New()

	change, err := r.Upsert(Entry{Name: "posts"})
	require.NoError(t, err)
	assert.Equal(t, Added, change)

	change, err = r.Upsert(Entry{Name: "comments", Alias: "notes", BelongsTo: "posts"})
	require.NoError(t, err)
	assert.Equal(t, Added, change)

	change, err = r.Upsert(Entry{Name: "posts"})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, change)

	change, err = r.Upsert(Entry{Name: "posts", Alias: "articles"})
	require.NoError(t, err)
	assert.Equal(t, Updated, change)

	assert.Equal(t, []Entry{
		{Name: "posts", Alias: "articles"},
		{Name: "comments", Alias: "notes", BelongsTo: "posts"},
	}, r.Entries(), "upsert keeps one record per name and never reorders")

	_, err = r.Upsert(Entry{Name: "--"})
	assert.Error(t, err)
}

func TestUpsertClearsAlias(t *testing.T) {
	r := New()
	_, err := r.Upsert(Entry{Name: "posts", Alias: "articles"})
	require.NoError(t, err)

	change, err := r.Upsert(Entry{Name: "posts"})
	require.NoError(t, err)
	assert.Equal(t, Updated, change)
	assert.Equal(t, "posts", r.Resolve("posts"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helpers", "paths_config.toml")

	store := NewStore(path)
	change, err := store.Upsert(Entry{Name: "comments", Alias: "notes"})
	require.NoError(t, err)
	assert.Equal(t, Added, change)

	r, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "notes", r.Resolve("comments"))

	change, err = store.Upsert(Entry{Name: "comments", Alias: "notes"})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, change)

	r, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestSavePreservesUnknownKeysAndOrder(t *testing.T) {
	path := writeRegistry(t, `
version = 2

[[resources]]
name = "users"
plugin = "auth"

[[resources]]
name = "posts"
`)
	store := NewStore(path)
	_, err := store.Upsert(Entry{Name: "comments", BelongsTo: "posts"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "version = 2")
	assert.Contains(t, content, "plugin")
	assert.Contains(t, content, "auth")

	users := strings.Index(content, "users")
	posts := strings.Index(content, "posts")
	comments := strings.Index(content, "comments")
	require.True(t, users >= 0 && posts >= 0 && comments >= 0, content)
	assert.True(t, users < posts && posts < comments, "records must stay in append order:\n%s", content)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "users"},
		{Name: "posts"},
		{Name: "comments", BelongsTo: "posts"},
	}, r.Entries())
}

func TestSaveEmptyRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths_config.toml")
	require.NoError(t, New().Save(path))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}
