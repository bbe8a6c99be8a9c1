// Package app provides the application context for warden-ctl.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config      *config.ClientConfig // Client configuration
//	    Paths       *config.Paths        // State directories
//	    Audit       *audit.Logger        // Lifecycle event log
//	    NewProvider ProviderFactory      // Connection provider constructor
//	}
//
// # Creating an App
//
//	// Production usage
//	a := app.New(app.WithConfig(cfg))
//
//	// Testing with a mock daemon connection
//	a := app.New(
//	    app.WithStateDir(t.TempDir()),
//	    app.WithProviderFactory(func(*config.ClientConfig, string) container.ConnectionProvider {
//	        return container.NewMockProvider()
//	    }),
//	)
//
// Commands reach the daemon through NewContainer and OpenContainer.
package app
