package shell

import "context"

// Bundler runs Ruby tooling through bundler inside an application.
type Bundler struct {
	Runner *Runner
}

// Install runs `bundle install`.
func (b Bundler) Install(ctx context.Context) (*Output, error) {
	return b.Runner.Run(ctx, "bundle", "install")
}

// Exec runs a gem executable with `bundle exec`.
func (b Bundler) Exec(ctx context.Context, name string, args ...string) (*Output, error) {
	return b.Runner.Run(ctx, "bundle", append([]string{"exec", name}, args...)...)
}

// Migrate applies db/migrations with Sequel's migrator.
func (b Bundler) Migrate(ctx context.Context, migrationsDir, databaseURL string) (*Output, error) {
	return b.Exec(ctx, "sequel", "-m", migrationsDir, databaseURL)
}
