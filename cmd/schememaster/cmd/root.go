// Package cmd implements the schememaster CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openfolio/schememaster/pkg/logging"
	"github.com/openfolio/schememaster/pkg/matcher"
	"github.com/openfolio/schememaster/pkg/pipeline"
	"github.com/openfolio/schememaster/pkg/store"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "schememaster",
	Short: "Mutual fund scheme master reconciliation",
	Long: `Schememaster reconciles mutual fund scheme data from the registrar
feeds (CAMS, KFin) against the industry association catalog and publishes
a single verified scheme master.

Feed files are ingested as batches, matched by ISIN and name, verified
through a review workflow, and merged into query-ready master rows.`,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.schememaster.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().String("store", "", "store directory (default ./data)")

	if err := viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store")); err != nil {
		panic(fmt.Sprintf("Failed to bind store flag: %v", err))
	}
	viper.SetDefault("store.path", "./data")
	viper.SetDefault("match.threshold", matcher.DefaultThreshold)
	viper.SetDefault("match.auto_accept", matcher.DefaultAutoAccept)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".schememaster")
	}

	// Load .env files before viper env binding; .env.local overrides .env.
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Overload(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}

	viper.SetEnvPrefix("SCHEMEMASTER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// configureLogging sets up the logging system based on flags and environment.
func configureLogging() {
	level := "info"
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "warn"
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = envLevel
	}

	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "auto"
	}

	logging.Configure(level, format)
}

// openStore opens the file-backed store from configuration.
func openStore() (store.Store, error) {
	return store.New(viper.GetString("store.path"))
}

// newPipeline builds a pipeline over the configured store with the
// configured matching bounds.
func newPipeline() (*pipeline.Pipeline, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}

	m := matcher.New(
		matcher.WithThreshold(viper.GetFloat64("match.threshold")),
		matcher.WithAutoAccept(viper.GetFloat64("match.auto_accept")),
		matcher.WithLogger(logging.Default()),
	)
	return pipeline.New(s, pipeline.WithMatcher(m), pipeline.WithLogger(logging.Default())), nil
}
