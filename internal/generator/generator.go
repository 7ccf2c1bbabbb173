// Package generator turns a resource spec into rendered artifacts, writes
// them into the application and keeps the router and relation registry in
// step.
package generator

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tomrplummer/blue-eyes/internal/inflect"
	"github.com/tomrplummer/blue-eyes/internal/project"
	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
	"github.com/tomrplummer/blue-eyes/internal/templates"
)

// Stage is the point a generation run has reached.
type Stage int

const (
	Parsed Stage = iota
	ContextBuilt
	Rendered
	Written
	RegistryUpdated
	Done
)

func (s Stage) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case ContextBuilt:
		return "context built"
	case Rendered:
		return "rendered"
	case Written:
		return "written"
	case RegistryUpdated:
		return "registry updated"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Renderer renders an artifact template. templates.Engine satisfies it.
type Renderer interface {
	Render(id string, ctx map[string]any) (string, error)
}

// Options control a Generator.
type Options struct {
	Overwrite bool
	DryRun    bool
	Marker    string
	Now       func() time.Time
	Logger    *zap.Logger
}

// Generator runs the generation pipeline inside one application.
type Generator struct {
	layout   project.Layout
	renderer Renderer
	store    *registry.Store
	opts     Options
	logger   *zap.Logger
}

// New creates a Generator for the application at layout.
func New(layout project.Layout, renderer Renderer, opts Options) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		layout:   layout,
		renderer: renderer,
		store:    registry.NewStore(layout.RegistryPath()),
		opts:     opts,
		logger:   logger,
	}
}

// Result describes what a run did, or would do under DryRun.
type Result struct {
	Stage          Stage
	Artifacts      []*Artifact
	RouterLine     string
	RouterChanged  bool
	Entry          *PathEntry
	RegistryChange registry.Change
	DryRun         bool
}

type job struct {
	template string
	path     string
	ctx      RenderContext
}

// Generate runs spec through the pipeline. Every context is built and every
// artifact rendered before anything is written.
func (g *Generator) Generate(spec *resource.Spec) (*Result, error) {
	result := &Result{Stage: Parsed, DryRun: g.opts.DryRun}
	log := g.logger.With(zap.String("resource", spec.Name), zap.Stringer("kind", spec.Kind))

	jobs, className, err := g.plan(spec, NewBuilder(g.store))
	if err != nil {
		return result, err
	}
	result.Stage = ContextBuilt
	log.Debug("contexts built", zap.Int("artifacts", len(jobs)))

	artifacts := make([]*Artifact, 0, len(jobs)+1)
	for _, j := range jobs {
		out, err := g.renderer.Render(j.template, j.ctx)
		if err != nil {
			return result, err
		}
		artifacts = append(artifacts, &Artifact{Template: j.template, Path: j.path, Content: []byte(out)})
	}

	writer := NewWriter(g.opts.Overwrite, log)
	if err := writer.Check(artifacts); err != nil {
		return result, err
	}

	if className != "" {
		router := Router{Path: g.layout.RouterPath(), Marker: g.opts.Marker}
		content, changed, err := router.Plan(className)
		if err != nil {
			return result, err
		}
		result.RouterLine = UseLine(className)
		result.RouterChanged = changed

		action := Skip
		if changed {
			action = Update
		}
		artifacts = append(artifacts, &Artifact{Path: router.Path, Content: content, Action: action})

		entry := NewPathEntry(spec)
		result.Entry = &entry
	}
	result.Artifacts = artifacts
	result.Stage = Rendered
	log.Debug("artifacts rendered")

	if g.opts.DryRun {
		if result.Entry != nil {
			r, err := g.store.Load()
			if err != nil {
				return result, err
			}
			if result.RegistryChange, err = r.Upsert(result.Entry.Entry()); err != nil {
				return result, err
			}
		}
		return result, nil
	}

	if err := writer.WriteAll(artifacts); err != nil {
		return result, err
	}
	result.Stage = Written

	if result.Entry != nil {
		change, err := g.store.Upsert(result.Entry.Entry())
		if err != nil {
			return result, fmt.Errorf("files were written but the relation registry was not updated: %w", err)
		}
		result.RegistryChange = change
		result.Stage = RegistryUpdated
		log.Debug("relation registry updated", zap.Stringer("change", change))
	}

	result.Stage = Done
	return result, nil
}

// plan builds every context for spec. className is set for kinds that
// register a controller.
func (g *Generator) plan(spec *resource.Spec, b *Builder) ([]job, string, error) {
	segment := inflect.Derive(spec.Name, inflect.PathSegment)

	switch spec.Kind {
	case resource.Controller:
		ctx, err := b.ControllerContext(spec)
		if err != nil {
			return nil, "", err
		}
		return []job{
			g.controllerJob(spec, segment, ctx, templates.Controller, templates.ControllerBelongsTo),
		}, ctx["class_name"].(string), nil

	case resource.Model:
		ctx, err := b.ModelContext(spec)
		if err != nil {
			return nil, "", err
		}
		return []job{{templates.Model, g.layout.ModelFile(segment), ctx}}, "", nil

	case resource.Migration:
		ctx, err := b.MigrationContext(spec)
		if err != nil {
			return nil, "", err
		}
		return []job{g.migrationJob(segment, ctx)}, "", nil

	case resource.Api:
		ctx, mctx, err := g.resourceContexts(spec, b)
		if err != nil {
			return nil, "", err
		}
		return []job{
			{templates.Model, g.layout.ModelFile(segment), ctx},
			g.migrationJob(segment, mctx),
			g.controllerJob(spec, segment, ctx, templates.APIController, templates.APIControllerNested),
		}, ctx["class_name"].(string), nil

	case resource.Scaffold:
		ctx, mctx, err := g.resourceContexts(spec, b)
		if err != nil {
			return nil, "", err
		}
		token := ctx["template_token"].(string)
		return []job{
			{templates.Model, g.layout.ModelFile(segment), ctx},
			g.migrationJob(segment, mctx),
			g.controllerJob(spec, segment, ctx, templates.Controller, templates.ControllerBelongsTo),
			{templates.ViewIndex, g.layout.ViewFile(token, "index"), ctx},
			{templates.ViewShow, g.layout.ViewFile(token, "show"), ctx},
			{templates.ViewNew, g.layout.ViewFile(token, "new"), ctx},
			{templates.ViewEdit, g.layout.ViewFile(token, "edit"), ctx},
		}, ctx["class_name"].(string), nil

	default:
		return nil, "", fmt.Errorf("%w: unknown artifact kind %s", resource.ErrParse, spec.Kind)
	}
}

func (g *Generator) resourceContexts(spec *resource.Spec, b *Builder) (RenderContext, RenderContext, error) {
	ctx, err := b.ControllerContext(spec)
	if err != nil {
		return nil, nil, err
	}
	mctx, err := b.MigrationContext(spec)
	if err != nil {
		return nil, nil, err
	}
	return ctx, mctx, nil
}

func (g *Generator) controllerJob(spec *resource.Spec, segment string, ctx RenderContext, flat, nested string) job {
	id := flat
	if spec.HasBelongsTo() {
		id = nested
	}
	return job{id, g.layout.ControllerFile(segment), ctx}
}

func (g *Generator) migrationJob(segment string, ctx RenderContext) job {
	return job{templates.Migration, g.layout.MigrationFile(g.opts.Now().Unix(), segment), ctx}
}
