// Package bootstrap creates new blue-eyes applications: it materializes the
// project tree, writes the environment file and, unless skipped, installs
// gems, runs the first migration and fetches the Tailwind CSS binary.
package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tomrplummer/blue-eyes/internal/project"
	"github.com/tomrplummer/blue-eyes/internal/shell"
	"github.com/tomrplummer/blue-eyes/internal/templates"
	"github.com/tomrplummer/blue-eyes/internal/utils"
)

var (
	// ErrInvalidName is returned for project names that cannot be used as
	// a directory and database name
	ErrInvalidName = errors.New("invalid project name")

	// ErrProjectExists is returned when the target directory already exists
	ErrProjectExists = errors.New("project directory already exists")
)

var validProjectName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Gems every application depends on, in Gemfile order
var Gems = []string{
	"sinatra",
	"sinatra-contrib",
	"sinatra-flash",
	"sequel",
	"rackup",
	"puma",
	"haml",
	"activesupport",
	"bcrypt",
	"jwt",
	"dotenv",
	"toml-rb",
	"foreman",
}

// Database selects the adapter gem and connection URL of a new application
type Database string

const (
	SQLite   Database = "sqlite"
	Postgres Database = "postgres"
)

// ParseDatabase accepts the --db flag value
func ParseDatabase(name string) (Database, error) {
	switch name {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unsupported database %q (use sqlite or postgres)", name)
	}
}

// Gem returns the adapter gem
func (d Database) Gem() string {
	if d == Postgres {
		return "pg"
	}
	return "sqlite3"
}

// URL returns the development database URL for project name
func (d Database) URL(name string) string {
	if d == Postgres {
		return "postgres://localhost/" + name
	}
	return "sqlite://" + name + ".db"
}

// ValidateName checks a project name
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrInvalidName)
	}
	if !validProjectName.MatchString(name) {
		return fmt.Errorf("%w: %q may only contain letters, numbers, hyphens, and underscores", ErrInvalidName, name)
	}
	return nil
}

// Options configure a new application
type Options struct {
	Name        string
	Dir         string // parent directory, the working directory when empty
	Database    Database
	SkipInstall bool

	// TailwindVersion is the release tag of the standalone CLI
	TailwindVersion string
	HTTPClient      *http.Client
	GOOS, GOARCH    string

	Stdout, Stderr io.Writer
	Logger         *zap.Logger
}

// Step is one unit of work reported to the user
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Project creates one application
type Project struct {
	opts    Options
	root    string
	engine  *templates.Engine
	bundler shell.Bundler
	logger  *zap.Logger
}

// New validates opts and prepares the project rooted at Dir/Name.
func New(opts Options) (*Project, error) {
	if err := ValidateName(opts.Name); err != nil {
		return nil, err
	}
	if opts.Database == "" {
		opts.Database = SQLite
	}
	if opts.TailwindVersion == "" {
		opts.TailwindVersion = DefaultTailwindVersion
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.GOARCH == "" {
		opts.GOARCH = runtime.GOARCH
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(filepath.Join(dir, opts.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}

	runner := &shell.Runner{Dir: root, Stdout: opts.Stdout, Stderr: opts.Stderr, Logger: opts.Logger}
	return &Project{
		opts:    opts,
		root:    root,
		engine:  templates.NewEngine(nil),
		bundler: shell.Bundler{Runner: runner},
		logger:  opts.Logger.With(zap.String("project", opts.Name)),
	}, nil
}

// Root returns the absolute application directory
func (p *Project) Root() string {
	return p.root
}

// DatabaseURL returns the URL written to .env
func (p *Project) DatabaseURL() string {
	return p.opts.Database.URL(p.opts.Name)
}

// Steps lists the work Run performs, in order
func (p *Project) Steps() []Step {
	steps := []Step{
		{Name: "Creating application files", Run: p.materialize},
		{Name: "Writing " + project.EnvFile, Run: p.writeEnv},
	}
	if p.opts.SkipInstall {
		return steps
	}
	return append(steps,
		Step{Name: "Installing gems", Run: p.installGems},
		Step{Name: "Running migrations", Run: p.migrate},
		Step{Name: "Downloading Tailwind CSS " + p.opts.TailwindVersion, Run: p.downloadTailwind},
	)
}

// Run executes every step, stopping at the first failure
func (p *Project) Run(ctx context.Context) error {
	for _, step := range p.Steps() {
		if err := step.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) materialize(ctx context.Context) error {
	if _, err := os.Stat(p.root); err == nil {
		return fmt.Errorf("%w: %s", ErrProjectExists, p.root)
	}

	tmpl, err := templates.NewProjectTemplate()
	if err != nil {
		return err
	}

	gems := append(append([]string(nil), Gems...), p.opts.Database.Gem())
	tctx := &templates.TemplateContext{
		ProjectName: p.opts.Name,
		Variables: map[string]interface{}{
			"gems":     gems,
			"database": string(p.opts.Database),
		},
		Timestamp: time.Now(),
	}

	written, err := p.engine.Execute(tmpl, tctx, p.root)
	if err != nil {
		return fmt.Errorf("failed to create project files: %w", err)
	}
	p.logger.Debug("project files written", zap.Int("count", len(written)))
	return nil
}

func (p *Project) writeEnv(ctx context.Context) error {
	jwtSecret, err := secret(32, base64.StdEncoding.EncodeToString)
	if err != nil {
		return err
	}
	sessionSecret, err := secret(64, hex.EncodeToString)
	if err != nil {
		return err
	}

	path := filepath.Join(p.root, project.EnvFile)
	env := map[string]string{
		"DATABASE_URL":   p.DatabaseURL(),
		"JWT_SECRET":     jwtSecret,
		"SESSION_SECRET": sessionSecret,
	}
	data, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", project.EnvFile, err)
	}
	// The temp file starts at 0600; the secrets are never group-readable.
	return utils.WriteFileAtomic(path, []byte(data+"\n"), 0600)
}

func (p *Project) installGems(ctx context.Context) error {
	_, err := p.bundler.Install(ctx)
	return err
}

func (p *Project) migrate(ctx context.Context) error {
	_, err := p.bundler.Migrate(ctx, project.MigrationsDir, p.DatabaseURL())
	return err
}

func (p *Project) downloadTailwind(ctx context.Context) error {
	url, err := TailwindURL(p.opts.TailwindVersion, p.opts.GOOS, p.opts.GOARCH)
	if err != nil {
		return err
	}
	dest := filepath.Join(p.root, TailwindBinary)
	p.logger.Debug("downloading tailwind", zap.String("url", url))
	return Download(ctx, p.opts.HTTPClient, url, dest)
}

func secret(n int, encode func([]byte) string) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return encode(buf), nil
}
