package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/cafedb/internal/config"
	"github.com/saltyorg/cafedb/internal/database"
	"github.com/saltyorg/cafedb/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultDBPath = "cafe_database.db"

// CLI flags
var (
	dbPath     string
	configPath string
	logFile    string
	verbosity  int
	strict     bool
)

// settings is loaded before any subcommand runs
var settings *config.Loader

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cafedb",
		Short: "cafedb - cafe and order records in a SQLite file",
		Long: `cafedb keeps cafes and their orders in a single SQLite database file.
Run without a subcommand to execute the demo.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runDemo,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&dbPath, "db", "d", defaultDBPath, "SQLite database path (or set DB_PATH env var)")
	flags.StringVarP(&configPath, "config", "c", "", "Optional YAML config file")
	flags.StringVar(&logFile, "log-file", "", `Log file path (default: next to the database, "-" disables)`)
	flags.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	flags.BoolVar(&strict, "strict", false, "Return database errors instead of logging and continuing")

	rootCmd.AddCommand(
		newDemoCmd(),
		newInitCmd(),
		newListCmd(),
		newAddCafeCmd(),
		newAddOrderCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newVacuumCmd(),
		newServeCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "cafedb %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	return rootCmd
}

// setup loads settings, resolves the database path and configures logging
func setup(cmd *cobra.Command, args []string) error {
	fileSettings, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	settings = config.NewLoader(fileSettings)

	// Flag beats DB_PATH beats config file
	if !cmd.Flags().Changed("db") {
		if envDB := os.Getenv("DB_PATH"); envDB != "" {
			dbPath = envDB
		} else {
			dbPath = settings.String("database.path", defaultDBPath)
		}
	}

	if logFile == "" {
		logFile = settings.String("log.file", logging.FilePathForDB(dbPath))
	}
	logging.Apply(logging.LevelForVerbosity(verbosity), settings, logFile, cmd.ErrOrStderr())

	return nil
}

// openDB opens the configured database and makes sure both tables exist
func openDB() (*database.DB, error) {
	mode := database.ErrorModeLog
	if strict || settings.Bool("database.strict", false) {
		mode = database.ErrorModeStrict
	}

	db, err := database.Open(database.Config{
		Path:          dbPath,
		BusyTimeoutMs: settings.Int("database.busy_timeout_ms", database.DefaultBusyTimeoutMs),
		Mode:          mode,
	})
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug().Str("database", dbPath).Str("error_mode", mode.String()).Msg("Database ready")
	return db, nil
}
