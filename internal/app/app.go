// Package app provides the application context for warden-ctl.
// It allows dependency injection for testing.
package app

import (
	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/config"
	"github.com/firefly-engineering/warden-ctl/internal/container"
	"github.com/firefly-engineering/warden-ctl/internal/warden"
)

// ProviderFactory builds the connection provider for a daemon socket
type ProviderFactory func(cfg *config.ClientConfig, socketPath string) container.ConnectionProvider

// App holds the application dependencies
type App struct {
	// Config is the loaded client configuration
	Config *config.ClientConfig

	// Paths holds the state directories
	Paths *config.Paths

	// Audit records container lifecycle events
	Audit *audit.Logger

	// NewProvider creates connection providers
	NewProvider ProviderFactory
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets the client configuration
func WithConfig(cfg *config.ClientConfig) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithProviderFactory sets how connection providers are made
func WithProviderFactory(f ProviderFactory) Option {
	return func(a *App) {
		a.NewProvider = f
	}
}

// WithStateDir overrides the configured state directory
func WithStateDir(dir string) Option {
	return func(a *App) {
		a.Paths = config.NewPaths(dir)
	}
}

// DefaultProviderFactory connects to the daemon with real warden clients
// dialing within the configured connect timeout.
func DefaultProviderFactory(cfg *config.ClientConfig, socketPath string) container.ConnectionProvider {
	return warden.NewProvider(socketPath,
		warden.WithClientOptions(warden.WithConnectTimeout(cfg.ConnectTimeout.Duration)))
}

// New creates a new App with the given options.
// Without WithConfig the default client configuration is used.
func New(opts ...Option) *App {
	app := &App{
		NewProvider: DefaultProviderFactory,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.Config == nil {
		app.Config = config.DefaultClientConfig()
	}
	if app.Paths == nil {
		app.Paths = config.NewPaths(app.Config.StateDir)
	}
	app.Audit = audit.NewLogger(app.Paths.StateDir)

	return app
}

// NewContainer returns an unbound container talking to socketPath. An
// empty socketPath means the configured one.
func (a *App) NewContainer(socketPath string) *container.Container {
	if socketPath == "" {
		socketPath = a.Config.SocketPath
	}
	return container.New(a.NewProvider(a.Config, socketPath), container.OptionsFromConfig(a.Config))
}

// OpenContainer returns a container bound to an existing handle.
func (a *App) OpenContainer(socketPath, handle string) *container.Container {
	c := a.NewContainer(socketPath)
	c.SetHandle(handle)
	return c
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
