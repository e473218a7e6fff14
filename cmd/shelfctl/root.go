package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/shelfkeeper-server/internal/config"
	"github.com/shelfkeeper/shelfkeeper-server/internal/di/providers"
	"github.com/shelfkeeper/shelfkeeper-server/internal/logger"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

// globalFlags are forwarded to config.Load so the tool reads the same
// configuration sources as the server.
type globalFlags struct {
	envFile  string
	driver   string
	dataPath string
	verbose  bool
}

func (g *globalFlags) configArgs() []string {
	args := []string{"-env-file=" + g.envFile}
	if g.driver != "" {
		args = append(args, "-store-driver="+g.driver)
	}
	if g.dataPath != "" {
		args = append(args, "-data-path="+g.dataPath)
	}
	return args
}

// app holds the services a command works with.
type app struct {
	store   store.Store
	catalog *service.CatalogService
	library *service.LibraryService
	query   *service.QueryService
	logger  *logger.Logger
}

func (a *app) Close() error {
	return a.store.Close()
}

func (g *globalFlags) open() (*app, error) {
	cfg, err := config.Load(g.configArgs())
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.Config{Writer: os.Stderr, Level: level, Environment: cfg.App.Environment})

	st, err := providers.OpenStore(cfg.Store, log)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	users := service.NewUserService(st, v, log.Component("users"))
	library := service.NewLibraryService(st, users, v, log.Component("library"))

	return &app{
		store:   st,
		catalog: service.NewCatalogService(st, v, log.Component("catalog")),
		library: library,
		query:   service.NewQueryService(st, library),
		logger:  log,
	}, nil
}

// withApp opens the store for the duration of fn.
func (g *globalFlags) withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := g.open()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Operate on a Shelfkeeper data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", ".env", "Path to .env file")
	pf.StringVar(&g.driver, "store-driver", "", "Store driver (sqlite, badger)")
	pf.StringVar(&g.dataPath, "data-path", "", "Directory for persistent data")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(
		newSeedCmd(g),
		newBooksCmd(g),
		newLibraryCmd(g),
		newHashTokenCmd(),
	)

	return root
}
