package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/setavenger/ztransparent/internal/config"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

var (
	Version = "0.0.0"

	// Global flags
	datadir    string
	configFile string
	dbPath     string

	// txids command flags
	startHeight uint32
	endHeight   uint32

	exportDir   string
	benchBlocks int
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&datadir,
		"datadir",
		config.DefaultBaseDirectory,
		"Set the base directory. Default directory is ~/.ztransparent",
	)
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Path to config file (default: datadir/ztransparent.toml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPath,
		"db",
		"",
		"Path to the database directory (default: datadir/data/<engine>)",
	)

	txidsCmd.Flags().Uint32Var(&startHeight, "start-height", 0, "First height to list transactions for")
	txidsCmd.Flags().Uint32Var(&endHeight, "end-height", uint32(zcash.MaxHeight), "Last height to list transactions for")

	exportCmd.Flags().StringVar(&exportDir, "out", "", "Directory to write CSV files to (default: datadir/data-export)")
	benchCmd.Flags().IntVar(&benchBlocks, "blocks", 200, "Number of blocks to generate")
}

var rootCmd = &cobra.Command{
	Use:   "zstate",
	Short: "Finalized transparent state explorer",
	Long: `zstate opens the finalized transparent address state of a Zcash node
and answers balance, utxo and transaction queries from it.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set directories and initialize config
		config.BaseDirectory = datadir
		config.SetDirectories()

		logging.L.Info().Msgf("base directory %s", config.BaseDirectory)

		// Load config
		if configFile == "" {
			configFile = path.Join(config.BaseDirectory, config.ConfigFileName)
		}
		if err := config.LoadConfigs(configFile); err != nil {
			return err
		}

		// Set database path if not provided
		if dbPath == "" {
			dbPath = config.EngineDBPath()
		}
		return nil
	},
}

func main() {
	// Add subcommands
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(utxosCmd)
	rootCmd.AddCommand(txidsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(benchCmd)

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
