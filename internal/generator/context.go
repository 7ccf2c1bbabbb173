package generator

import (
	"fmt"

	"github.com/tomrplummer/blue-eyes/internal/inflect"
	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
)

// RenderContext is the data handed to an artifact template.
type RenderContext map[string]any

// RelationLoader provides the relation registry. registry.Store satisfies it.
type RelationLoader interface {
	Load() (*registry.Registry, error)
}

// Builder assembles render contexts for one resource spec.
type Builder struct {
	loader   RelationLoader
	registry *registry.Registry
}

// NewBuilder creates a Builder. The registry is read at most once, and only
// when a spec declares a belongs-to relation.
func NewBuilder(loader RelationLoader) *Builder {
	return &Builder{loader: loader}
}

func (b *Builder) relations() (*registry.Registry, error) {
	if b.registry != nil {
		return b.registry, nil
	}
	if b.loader == nil {
		b.registry = registry.New()
		return b.registry, nil
	}

	r, err := b.loader.Load()
	if err != nil {
		return nil, err
	}
	b.registry = r
	return r, nil
}

// ControllerContext builds the context shared by controller, model and view
// templates.
func (b *Builder) ControllerContext(spec *resource.Spec) (RenderContext, error) {
	name := spec.Name

	aliasOrName := inflect.Derive(name, inflect.PathSegment)
	if spec.HasAlias() {
		aliasOrName = inflect.Derive(spec.Alias, inflect.Alias)
	}

	ctx := RenderContext{
		"template_token":  inflect.Derive(name, inflect.TemplateToken),
		"variable":        inflect.Derive(name, inflect.Variable),
		"variable_plural": inflect.Derive(name, inflect.VariablePlural),
		"class_name":      inflect.Derive(name, inflect.Class),
		"model_name":      inflect.Derive(name, inflect.Model),
		"alias_or_name":   aliasOrName,
		"fields":          spec.Fields,
		"has_fields":      len(spec.Fields) > 0,
	}

	parent := name
	parentPath := inflect.Derive(name, inflect.BelongsToPath)
	if spec.HasBelongsTo() {
		parent = spec.BelongsTo

		relations, err := b.relations()
		if err != nil {
			return nil, fmt.Errorf("failed to load relation registry: %w", err)
		}
		alias, ok := relations.Lookup(inflect.Derive(parent, inflect.BelongsToPath))
		if !ok {
			return nil, fmt.Errorf("%w: %q (generate a controller for it first)", ErrMissingRelation, parent)
		}
		parentPath = inflect.Derive(alias, inflect.BelongsToPath)
	}

	ctx["belongs_to_model"] = inflect.Derive(parent, inflect.BelongsToModel)
	ctx["belongs_to_foreign_key"] = inflect.Derive(parent, inflect.BelongsToForeignKey)
	ctx["belongs_to_path"] = parentPath
	ctx["belongs_to_variable"] = inflect.Derive(parent, inflect.Variable)
	ctx["has_belongs_to"] = spec.HasBelongsTo()

	return ctx, nil
}

// ModelContext builds the model template context.
func (b *Builder) ModelContext(spec *resource.Spec) (RenderContext, error) {
	return b.ControllerContext(spec)
}

// MigrationContext builds the migration template context. It fails with
// ErrNoFieldsProvided when no --fields were given.
func (b *Builder) MigrationContext(spec *resource.Spec) (RenderContext, error) {
	if spec.Fields == nil {
		return nil, fmt.Errorf("%w: a migration for %q needs --fields \"type:name ...\"", ErrNoFieldsProvided, spec.Name)
	}

	ctx := RenderContext{
		"table_name":             inflect.Derive(spec.Name, inflect.PathSegment),
		"fields":                 spec.Fields,
		"belongs_to_foreign_key": "",
		"belongs_to_table":       "",
		"has_belongs_to":         spec.HasBelongsTo(),
	}
	if spec.HasBelongsTo() {
		ctx["belongs_to_foreign_key"] = inflect.Derive(spec.BelongsTo, inflect.BelongsToForeignKey)
		ctx["belongs_to_table"] = inflect.Derive(spec.BelongsTo, inflect.PathSegment)
	}

	return ctx, nil
}

// PathEntry is the relation registry record a controller-bearing generation
// produces.
type PathEntry struct {
	Name      string
	Alias     string
	BelongsTo string
}

// NewPathEntry derives the registry record for spec.
func NewPathEntry(spec *resource.Spec) PathEntry {
	e := PathEntry{Name: inflect.Derive(spec.Name, inflect.PathSegment)}
	if spec.HasAlias() {
		e.Alias = inflect.Derive(spec.Alias, inflect.PathSegment)
	}
	if spec.HasBelongsTo() {
		e.BelongsTo = inflect.Derive(spec.BelongsTo, inflect.PathSegment)
	}
	return e
}

// Context returns the entry as template data.
func (e PathEntry) Context() RenderContext {
	return RenderContext{
		"name":           e.Name,
		"alias":          e.Alias,
		"has_alias":      e.Alias != "",
		"belongs_to":     e.BelongsTo,
		"has_belongs_to": e.BelongsTo != "",
	}
}

// Entry converts to a registry record.
func (e PathEntry) Entry() registry.Entry {
	return registry.Entry{Name: e.Name, Alias: e.Alias, BelongsTo: e.BelongsTo}
}
