package cli

import (
	"context"

	"student-records/internal/config"
	"student-records/internal/ledger"
	"student-records/internal/reconcile"
	"student-records/internal/remote"
	"student-records/internal/store"
	"student-records/internal/submit"
)

// App is the wired set of components one command works with.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Reconciler *reconcile.Reconciler
	Submitter  *submit.Submitter

	cache *store.SQLiteCache
}

// OpenApp opens the cache, loads the store and wires the ledger reader and
// the submitter. No network call is made here.
func OpenApp(ctx context.Context, cfg *config.Config) (*App, error) {
	cache, err := store.OpenSQLite(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	st := store.Open(ctx, cache)

	client := ledger.New(cfg.Ledger.RPCURL)
	reader := remote.NewReader(client, ledger.ModuleQuery{
		Package: cfg.Ledger.PackageID,
		Module:  cfg.Ledger.Module,
	}, cfg.Ledger.EventLimit)

	// no signer or no address means no wallet session
	session := &submit.Session{Address: cfg.Session.Address}
	if cfg.Ledger.SignerURL != "" && cfg.Session.Address != "" {
		session.Executor = ledger.NewSignerExecutor(cfg.Ledger.SignerURL, cfg.Session.Address)
	}

	return &App{
		Config:     cfg,
		Store:      st,
		Reconciler: reconcile.New(reader, st, cfg.Reconcile.RefreshMode),
		Submitter:  submit.New(session, contractFrom(cfg.Ledger), st),
		cache:      cache,
	}, nil
}

func contractFrom(l config.LedgerConfig) ledger.Contract {
	return ledger.Contract{
		PackageID:   l.PackageID,
		Module:      l.Module,
		GradeModule: l.GradeModule,
		AdminCap:    l.AdminCap,
		Registry:    l.Registry,
	}
}

func (a *App) Close() error {
	return a.cache.Close()
}

// open wires the App for a command and runs the startup merge when --sync
// was given.
func (o *RootOptions) open(ctx context.Context) (*App, error) {
	app, err := OpenApp(ctx, o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	if o.Sync {
		if _, err := app.Reconciler.Sync(ctx); err != nil {
			app.Close()
			return nil, WrapExitError(ExitCommandError, "startup sync failed", err)
		}
	}
	return app, nil
}
