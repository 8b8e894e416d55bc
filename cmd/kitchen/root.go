package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"kitchencalc/internal/config"
	"kitchencalc/internal/convert"
	"kitchencalc/internal/history"
	"kitchencalc/internal/session"
	"kitchencalc/internal/storage"
)

// app holds what every subcommand shares; filled in PersistentPreRunE.
type app struct {
	configPath string
	dbPath     string
	ephemeral  bool

	cfg       config.Config
	kv        storage.KV
	closeKV   func() error
	ledger    *history.Ledger
	session   *session.Session
	catalog   *convert.Catalog
	overrides *convert.OverrideStore
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "kitchen",
		Short:         "Kitchen calculator, unit converter and countdown timer",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.toml (default $XDG_CONFIG_HOME/kitchencalc/config.toml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to the sqlite database (overrides "+config.EnvDBPath+")")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep everything in memory")

	root.AddCommand(
		newEvalCmd(a),
		newHistoryCmd(a),
		newTimerCmd(a),
		newConvertCmd(),
		newPartsCmd(),
		newScaleCmd(),
		newIngredientCmd(a),
		newTUICmd(a),
		newServeCmd(a),
		newTokenCmd(a),
	)
	closeAfterRun(root, a)
	return root
}

// closeAfterRun wraps every RunE so the store is flushed and closed even
// when the command fails; PersistentPostRunE only runs on success.
func closeAfterRun(cmd *cobra.Command, a *app) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}()
			return run(cmd, args)
		}
	}
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, a)
	}
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg

	if a.ephemeral {
		a.kv = storage.NewMemory()
		a.closeKV = func() error { return nil }
	} else {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		a.kv = db
		a.closeKV = db.Close
	}

	a.ledger = history.NewLedger(a.kv)
	a.ledger.Load(ctx)
	a.session = session.New(a.ledger)

	a.catalog, err = convert.LoadCatalog()
	if err != nil {
		return err
	}
	a.overrides = convert.NewOverrideStore(a.kv)
	return nil
}

// close ждет фоновые сохранения и закрывает базу
func (a *app) close() error {
	if a.ledger != nil {
		a.ledger.Flush()
	}
	if a.overrides != nil {
		a.overrides.Flush()
	}
	if a.closeKV == nil {
		return nil
	}
	err := a.closeKV()
	a.closeKV = nil
	if err != nil {
		log.Printf("Ошибка закрытия базы данных: %v", err)
	}
	return err
}
