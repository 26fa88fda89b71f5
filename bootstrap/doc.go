// Package bootstrap runs a jobgraph process: it validates the config, builds
// the logger, starts registered components in order, runs lifecycle hooks
// and shuts everything down on SIGINT, SIGTERM or context cancellation.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(persistence.NewComponent(cfg.Persistence, app.Logger, nil))
//	err = app.Run(ctx)
//
// RunTask is the variant for one-shot commands that need started components
// but finish on their own.
package bootstrap
