// Package cmd implements the CLI application to manage the portfolio ledger.
package cmd

import (
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/internal/config"
	"github.com/mlarrea/folio/internal/db"
	"github.com/mlarrea/folio/internal/logger"
	"github.com/mlarrea/folio/internal/marketdata"
	"github.com/mlarrea/folio/internal/store"
)

// Register the subcommands.
// A main package calls Register(), and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&deleteCmd{}, "transactions")

	c.Register(&snapshotCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&refreshCmd{}, "market data")
	c.Register(&refreshdCmd{}, "market data")

	c.Register(&declareCmd{}, "settings")
	c.Register(&currencyCmd{}, "settings")
}

// as a CLI application it is short lived, so global flags are fine.

var configFile = flag.String("config", "folio.yaml", "Path to the configuration file")
var envOnly = flag.Bool("env-only", false, "Ignore the config file, read configuration from FOLIO_* env vars only")

// app bundles everything a command needs.
type app struct {
	System *folio.AccountingSystem
	Store  *store.Store
	Config config.Config
	close  func()
}

func (a *app) Close() {
	if a.close != nil {
		a.close()
	}
}

// openApp wires the accounting system from the configuration.
func openApp() (*app, error) {
	cfg, err := config.Load(*configFile, *envOnly)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	st := store.New(database.Gorm)
	source := marketdata.New(cfg.Market, log)
	resolver := &folio.CurrencyResolver{Prefs: st, Securities: st, Source: source}
	system := folio.NewAccountingSystem(st, st, source, resolver, log, cfg.Portfolio.BaseCurrency)

	return &app{
		System: system,
		Store:  st,
		Config: cfg,
		close: func() {
			db.Close(database)
			log.Sync()
		},
	}, nil
}
