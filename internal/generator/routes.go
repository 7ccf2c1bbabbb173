package generator

import (
	"github.com/tomrplummer/blue-eyes/internal/inflect"
	"github.com/tomrplummer/blue-eyes/internal/registry"
)

// RoutePrefix returns the URL prefix a generated controller mounts e at,
// e.g. "/articles/:post_id/comments" for a nested resource.
func RoutePrefix(r *registry.Registry, e registry.Entry) string {
	prefix := "/" + e.EffectiveAlias()
	if e.BelongsTo == "" {
		return prefix
	}
	name, path := e.BelongsTo, e.BelongsTo
	if parent, ok := r.Get(e.BelongsTo); ok {
		name, path = parent.Name, parent.EffectiveAlias()
	}
	parent := inflect.Derive(path, inflect.BelongsToPath)
	key := inflect.Derive(name, inflect.BelongsToForeignKey)
	return "/" + parent + "/:" + key + prefix
}
