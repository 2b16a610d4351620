// Package bootstrap wires configuration, storage, the AI and threat
// intelligence services and the HTTP API into a runnable App.
//
// Startup order is config, logger, data directory checks, storage (SQLite or
// memory, blob store, optional Redis), services, then the API server.
//
//	app, err := bootstrap.NewApp(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Start(ctx); err != nil {
//	    app.Shutdown()
//	    log.Fatal(err)
//	}
//	app.WaitForShutdown()
//	app.Shutdown()
package bootstrap
